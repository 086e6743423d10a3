// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phase1 implements the paper-processing pipeline: ingest an arXiv
// paper, draft a rigorous summary, loop it through a critic with optional
// human review, and extract the blackboard mechanism graph from the approved
// summary.
package phase1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/internal/ingest"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/mechxml"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Workflow wires the pipeline nodes to their collaborators. All fields except
// Logger and Observer must be set.
type Workflow struct {
	Client llm.Client
	HTTP   *http.Client
	Store  *artifacts.Store
	Cfg    types.PipelineConfig
	Logger *slog.Logger

	// Observer, when set, receives node lifecycle events for progress display.
	Observer func(graph.NodeEvent)
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Workflow) ingestNode(ctx context.Context, s *types.Phase1State) error {
	s.Status = types.StatusIngesting

	id, err := ingest.NormalizeArxivID(s.PaperID)
	if err != nil {
		return err
	}
	s.PaperID = id

	tex, err := ingest.Run(ctx, w.HTTP, id, ingest.Options{
		PapersDir:  w.Cfg.Papers.Dir,
		UserAgent:  w.Cfg.HTTP.UserAgent,
		MaxRetries: w.Cfg.AI.MaxRetries,
	})
	if err != nil {
		return err
	}

	s.TeX = tex
	w.Store.WriteCleanTeX(id, tex)
	w.logger().Info("paper ingested", "paper", id, "tex_bytes", len(tex))
	return nil
}

func (w *Workflow) summarizeNode(ctx context.Context, s *types.Phase1State) error {
	s.Status = types.StatusSummarizing
	s.Iteration = 1

	out, err := w.Client.Invoke(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(summarizerSystem),
			llm.User(fmt.Sprintf(summarizerUser, s.TeX)),
		},
	})
	if err != nil {
		return err
	}

	s.Summary = out
	w.Store.WriteSummary(s.PaperID, s.Iteration, out)
	return nil
}

func (w *Workflow) criticNode(ctx context.Context, s *types.Phase1State) error {
	s.Status = types.StatusCritiquing

	out, err := w.Client.Invoke(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(criticSystem),
			llm.User(fmt.Sprintf(criticUser, s.TeX, s.Summary)),
		},
	})
	if err != nil {
		return err
	}

	s.Critique = out
	s.CriticStatus = parseCriticStatus(out)
	w.Store.WriteCritique(s.PaperID, s.Iteration, out)
	w.logger().Info("summary critiqued",
		"paper", s.PaperID, "iteration", s.Iteration, "status", s.CriticStatus)
	return nil
}

// gateNode is a deliberate no-op. The run interrupts after the critic, the
// caller records a Decision on the state, and resuming executes this node so
// that the routing below it sees the updated state.
func (w *Workflow) gateNode(ctx context.Context, s *types.Phase1State) error {
	return nil
}

func (w *Workflow) reviseNode(ctx context.Context, s *types.Phase1State) error {
	s.Status = types.StatusRevising
	s.Iteration++
	s.Decision = ""

	out, err := w.Client.Invoke(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(revisionSystem),
			llm.User(fmt.Sprintf(revisionUser, s.TeX, s.Summary, s.Critique)),
		},
	})
	if err != nil {
		return err
	}

	s.Summary = out
	w.Store.WriteSummary(s.PaperID, s.Iteration, out)
	return nil
}

func (w *Workflow) mechanismNode(ctx context.Context, s *types.Phase1State) error {
	s.Status = types.StatusExtracting

	out, err := w.Client.Invoke(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(mechanismSystem),
			llm.User(fmt.Sprintf(mechanismUser, s.Summary)),
		},
	})
	if err != nil {
		return err
	}

	xmlText := stripFences(out)
	records, err := mechxml.ParseRecords(xmlText)
	if err != nil {
		return fmt.Errorf("mechanism graph is unparseable: %w", err)
	}

	s.Mechanism = xmlText
	w.Store.WriteMechanism(s.PaperID, xmlText)
	w.logger().Info("mechanism extracted", "paper", s.PaperID, "records", len(records))
	s.Status = types.StatusDone
	w.Store.WriteState(s.PaperID, s)
	return nil
}

// statusPattern tolerates the markdown emphasis variants models produce
// around the status line.
var statusPattern = regexp.MustCompile(`(?i)STATUS[:*\s]*\b(PASS|NEEDS_REVISION)\b`)

// parseCriticStatus reads the critic's verdict from its markdown output. The
// last status line wins; a critique with no status line needs revision.
func parseCriticStatus(critique string) types.CriticStatus {
	matches := statusPattern.FindAllStringSubmatch(critique, -1)
	if len(matches) == 0 {
		return types.CriticNeedsRevision
	}
	if strings.EqualFold(matches[len(matches)-1][1], "PASS") {
		return types.CriticPass
	}
	return types.CriticNeedsRevision
}

var xmlFencePattern = regexp.MustCompile("(?s)```(?:xml)?\\s*(.*?)\\s*```")

// stripFences removes a markdown code fence wrapping the model's XML output,
// if present.
func stripFences(text string) string {
	if m := xmlFencePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}
