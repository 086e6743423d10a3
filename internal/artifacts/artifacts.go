// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifacts persists intermediate pipeline outputs under the papers
// directory so every step can be inspected after a run. Writes are best
// effort: a failed write is logged and the pipeline moves on, since the
// artifacts mirror state the workflow already holds in memory.
package artifacts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// Layout under <dir>/<paperID>/:
//
//	step1_ingest/processed.tex
//	step2_summary/iteration_<n>.md
//	step2_critique/iteration_<n>.md
//	step3_mechanism/mechanism.xml
//	step4_open_problems/proposal_<n>/proposals/proposal_iteration_<i>.md
//	step4_open_problems/proposal_<n>/critiques/iteration_<i>/<source>.md
//	step4_open_problems/proposal_<n>/mechanism_updated.xml
//	step4_open_problems/proposal_<n>/final_report.md
//	step4_open_problems/proposal_<n>/quality_assessment.md
//	step4_open_problems/proposal_<n>/state.yaml
//	state.yaml
const (
	ingestDir       = "step1_ingest"
	summaryDir      = "step2_summary"
	critiqueDir     = "step2_critique"
	mechanismDir    = "step3_mechanism"
	openProblemsDir = "step4_open_problems"
)

var iterationFilePattern = regexp.MustCompile(`^iteration_(\d+)\.md$`)

// Store writes and reads pipeline artifacts for papers under Dir.
type Store struct {
	Dir    string
	Logger *slog.Logger
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Store) write(relPath, content string) {
	path := filepath.Join(s.Dir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger().Warn("creating artifact directory failed", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		s.logger().Warn("writing artifact failed", "path", path, "error", err)
	}
}

// WriteCleanTeX saves the cleaned LaTeX produced by ingestion.
func (s *Store) WriteCleanTeX(paperID, tex string) {
	s.write(filepath.Join(paperID, ingestDir, "processed.tex"), tex)
}

// WriteSummary saves one summary revision.
func (s *Store) WriteSummary(paperID string, iteration int, summary string) {
	s.write(filepath.Join(paperID, summaryDir, iterationFile(iteration)), summary)
}

// WriteCritique saves one critique of the summary.
func (s *Store) WriteCritique(paperID string, iteration int, critique string) {
	s.write(filepath.Join(paperID, critiqueDir, iterationFile(iteration)), critique)
}

// WriteMechanism saves the extracted mechanism XML.
func (s *Store) WriteMechanism(paperID, xml string) {
	s.write(filepath.Join(paperID, mechanismDir, "mechanism.xml"), xml)
}

// WriteProposal saves one proposal draft.
func (s *Store) WriteProposal(paperID string, proposalNum, iteration int, text string) {
	s.write(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"proposals", fmt.Sprintf("proposal_iteration_%d.md", iteration)), text)
}

// WriteProposalCritique saves one critic's rendered take on a proposal.
func (s *Store) WriteProposalCritique(paperID string, proposalNum, iteration int, source, md string) {
	s.write(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"critiques", fmt.Sprintf("iteration_%d", iteration), source+".md"), md)
}

// WriteUpdatedMechanism saves the mechanism XML extended with a proposal's
// conjectures.
func (s *Store) WriteUpdatedMechanism(paperID string, proposalNum int, xml string) {
	s.write(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"mechanism_updated.xml"), xml)
}

// WriteFinalReport saves the closing report for one proposal. Reports live
// under the proposal directory so concurrent proposals never share a path.
func (s *Store) WriteFinalReport(paperID string, proposalNum int, report string) {
	s.write(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"final_report.md"), report)
}

// WriteQualityAssessment saves the rendered judge verdict for one proposal.
func (s *Store) WriteQualityAssessment(paperID string, proposalNum int, md string) {
	s.write(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"quality_assessment.md"), md)
}

// WriteState snapshots the processing state as YAML at the paper root.
func (s *Store) WriteState(paperID string, state any) {
	s.writeYAML(filepath.Join(paperID, "state.yaml"), state)
}

// WriteProposalState snapshots a finished proposal's state under its
// proposal directory.
func (s *Store) WriteProposalState(paperID string, proposalNum int, state any) {
	s.writeYAML(filepath.Join(paperID, openProblemsDir, proposalDir(proposalNum),
		"state.yaml"), state)
}

func (s *Store) writeYAML(relPath string, v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		s.logger().Warn("marshaling state snapshot failed", "path", relPath, "error", err)
		return
	}
	s.write(relPath, string(data))
}

// LatestSummary returns the highest-numbered summary iteration, so a
// proposal run can start from a finished first phase.
func (s *Store) LatestSummary(paperID string) (string, error) {
	dir := filepath.Join(s.Dir, paperID, summaryDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	best := -1
	var bestName string
	for _, e := range entries {
		m := iterationFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n > best {
			best = n
			bestName = e.Name()
		}
	}
	if best < 0 {
		return "", fmt.Errorf("no summary iterations under %s", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, bestName))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Mechanism returns the saved mechanism XML for a paper.
func (s *Store) Mechanism(paperID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, paperID, mechanismDir, "mechanism.xml"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListPapers returns the paper IDs that have any artifacts.
func (s *Store) ListPapers() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func iterationFile(n int) string {
	return fmt.Sprintf("iteration_%d.md", n)
}

func proposalDir(n int) string {
	return fmt.Sprintf("proposal_%d", n)
}
