// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phase2

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/coerce"
	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/mechxml"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Critic source names, used in critique records and artifact paths.
const (
	sourceSanity      = "sanity_checker"
	sourceExample     = "example_tester"
	sourceReverse     = "reverse_reasoner"
	sourceObstruction = "obstruction_analyzer"
)

// Brainstorm temperatures. Initial drafting explores; revision converges.
const (
	initialTemperature  = 0.9
	revisionTemperature = 0.5
	updaterTemperature  = 0.3
)

// Workflow wires the pipeline nodes to their collaborators. All fields except
// Logger and Observer must be set.
type Workflow struct {
	Coercer *coerce.Coercer
	Client  llm.Client
	Store   *artifacts.Store
	Cfg     types.PipelineConfig
	Logger  *slog.Logger

	// Observer, when set, receives node lifecycle events for progress display.
	Observer func(graph.NodeEvent)
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Workflow) contextNode(ctx context.Context, s *types.Phase2State) error {
	s.Iteration = 0
	if s.MaxIterations == 0 {
		s.MaxIterations = w.Cfg.Phase2.MaxIterations
	}
	s.ResetCritiques()
	w.logger().Info("phase2 context initialized",
		"paper", s.PaperID, "summary_bytes", len(s.Summary), "mechanism_bytes", len(s.Mechanism))
	return nil
}

func (w *Workflow) agendaNode(ctx context.Context, s *types.Phase2State) error {
	res, err := coerce.Invoke[types.AgendaResult](ctx, w.Coercer, agendaSchema, []llm.Message{
		llm.System(agendaSystem),
		llm.User(fmt.Sprintf(agendaUser, s.Summary, s.Mechanism)),
	}, 0)
	if err != nil {
		return err
	}
	s.Agenda = res.ResearchDirections
	w.logger().Info("agenda created", "paper", s.PaperID, "directions", len(s.Agenda))
	return nil
}

func (w *Workflow) brainstormNode(ctx context.Context, s *types.Phase2State) error {
	s.Iteration++

	var res types.ProposalResult
	var err error
	if s.CurrentProposal != "" && s.Feedback != nil {
		fb := s.Feedback
		res, err = coerce.Invoke[types.ProposalResult](ctx, w.Coercer, proposalSchema, []llm.Message{
			llm.System(brainstormerSystem),
			llm.User(fmt.Sprintf(brainstormerRevisionUser,
				s.CurrentProposal,
				strings.Join(fb.CriticalIssues, "\n"),
				strings.Join(fb.RequiredFixes, "\n"),
				strings.Join(fb.MinorIssues, "\n"),
				strings.Join(fb.Strengths, "\n"),
				s.Summary, s.Mechanism,
				s.Iteration, s.MaxIterations)),
		}, revisionTemperature)
	} else {
		res, err = coerce.Invoke[types.ProposalResult](ctx, w.Coercer, proposalSchema, []llm.Message{
			llm.System(brainstormerSystem),
			llm.User(fmt.Sprintf(brainstormerUser,
				s.Summary, s.Mechanism,
				focusedAgenda(s),
				"None - this is the first iteration.",
				s.Iteration, s.MaxIterations)),
		}, initialTemperature)
	}
	if err != nil {
		return err
	}

	s.CurrentProposal = renderProposal(res)
	s.ResetCritiques()
	w.Store.WriteProposal(s.PaperID, s.ProposalNum, s.Iteration, s.CurrentProposal)
	w.logger().Info("proposal drafted",
		"paper", s.PaperID, "proposal", s.ProposalNum, "iteration", s.Iteration, "title", res.Title)
	return nil
}

// criticNode builds one of the four parallel critique nodes. They differ only
// in perspective prompt and source label.
func (w *Workflow) criticNode(source, userPrompt string) graph.NodeFunc[*types.Phase2State] {
	return func(ctx context.Context, s *types.Phase2State) error {
		res, err := coerce.Invoke[types.CritiqueResult](ctx, w.Coercer, critiqueSchema, []llm.Message{
			llm.System(criticSystem),
			llm.User(fmt.Sprintf(userPrompt, s.CurrentProposal, s.Summary, s.Mechanism)),
		}, 0)
		if err != nil {
			return err
		}

		s.AppendCritique(types.Critique{
			Source:      source,
			Issues:      res.Issues,
			Strengths:   res.Strengths,
			Suggestions: res.Suggestions,
			Severity:    res.Severity,
		})
		w.Store.WriteProposalCritique(s.PaperID, s.ProposalNum, s.Iteration, source,
			renderCritique(source, s.Iteration, res))
		return nil
	}
}

func (w *Workflow) consolidateNode(ctx context.Context, s *types.Phase2State) error {
	crits := s.Critiques()
	find := func(source string) string {
		for _, c := range crits {
			if c.Source == source {
				return formatCritique(c)
			}
		}
		return "No critique available"
	}

	res, err := coerce.Invoke[types.ConsolidatedFeedback](ctx, w.Coercer, consolidationSchema, []llm.Message{
		llm.System(basePrompt),
		llm.User(fmt.Sprintf(consolidatorUser,
			find(sourceSanity), find(sourceExample), find(sourceReverse), find(sourceObstruction))),
	}, 0)
	if err != nil {
		return err
	}

	s.Feedback = &res
	w.logger().Info("feedback consolidated",
		"paper", s.PaperID, "critical", len(res.CriticalIssues), "minor", len(res.MinorIssues))
	return nil
}

func (w *Workflow) decideNode(ctx context.Context, s *types.Phase2State) error {
	if s.Iteration >= s.MaxIterations {
		s.IsDone = true
		s.DoneReason = fmt.Sprintf("Maximum iterations (%d) reached.", s.MaxIterations)
		w.logger().Info("iteration budget spent", "paper", s.PaperID, "iteration", s.Iteration)
		return nil
	}

	assessment := "No feedback available"
	if s.Feedback != nil && s.Feedback.OverallAssessment != "" {
		assessment = s.Feedback.OverallAssessment
	}

	res, err := coerce.Invoke[types.DoneDecisionResult](ctx, w.Coercer, doneSchema, []llm.Message{
		llm.System(basePrompt),
		llm.User(fmt.Sprintf(doneDecisionUser, s.CurrentProposal, assessment, s.Iteration, s.MaxIterations)),
	}, 0)
	if err != nil {
		return err
	}

	s.IsDone = res.IsDone
	s.DoneReason = res.Reasoning
	w.logger().Info("done decision",
		"paper", s.PaperID, "iteration", s.Iteration, "is_done", res.IsDone,
		"clarity", res.ClarityMet, "feasibility", res.FeasibilityMet, "novelty", res.NoveltyMet)
	return nil
}

func (w *Workflow) reportNode(ctx context.Context, s *types.Phase2State) error {
	res, err := coerce.Invoke[types.ReportResult](ctx, w.Coercer, reportSchema, []llm.Message{
		llm.System(basePrompt),
		llm.User(fmt.Sprintf(reportUser, s.CurrentProposal, s.Summary, s.Mechanism, s.Iteration)),
	}, 0)
	if err != nil {
		return err
	}

	s.FinalReport = renderReport(res)
	w.Store.WriteFinalReport(s.PaperID, s.ProposalNum, s.FinalReport)
	return nil
}

func (w *Workflow) judgeNode(ctx context.Context, s *types.Phase2State) error {
	res, err := coerce.Invoke[types.QualityAssessment](ctx, w.Coercer, judgeSchema, []llm.Message{
		llm.System(judgeSystem),
		llm.User(fmt.Sprintf(judgeUser, s.FinalReport, s.Summary, s.Mechanism)),
	}, 0)
	if err != nil {
		return err
	}
	s.Assessment = &res
	w.logger().Info("report judged", "paper", s.PaperID,
		"clarity", res.ClarityScore, "feasibility", res.FeasibilityScore,
		"novelty", res.NoveltyScore, "rigor", res.RigorScore, "overall", res.OverallScore)
	return nil
}

// scoreNode is pure arithmetic over the judge's criterion scores.
func (w *Workflow) scoreNode(ctx context.Context, s *types.Phase2State) error {
	a := s.Assessment
	if a == nil {
		return fmt.Errorf("scoring before judgment for paper %s", s.PaperID)
	}

	score := float64(a.ClarityScore+a.FeasibilityScore+a.NoveltyScore+a.RigorScore) / 4 * 10
	s.QualityScore = score
	s.QualityCategory = scoreCategory(score)

	w.Store.WriteQualityAssessment(s.PaperID, s.ProposalNum, renderAssessment(a, score, s.QualityCategory))
	w.logger().Info("quality scored",
		"paper", s.PaperID, "score", score, "category", s.QualityCategory)
	return nil
}

func (w *Workflow) updateMechanismNode(ctx context.Context, s *types.Phase2State) error {
	sections := parseReportSections(s.FinalReport)

	out, err := w.Client.Invoke(ctx, llm.Request{
		Temperature: updaterTemperature,
		Messages: []llm.Message{
			llm.System(mechUpdaterSystem),
			llm.User(fmt.Sprintf(mechUpdaterUser,
				s.Mechanism,
				sections["problem_statement"],
				sections["proposed_approach"],
				sections["expected_challenges"],
				sections["potential_impact"],
				s.CurrentDirection)),
		},
	})
	if err != nil {
		return err
	}

	updated := stripFences(out)
	if _, parseErr := mechxml.ParseRecords(updated); parseErr != nil {
		w.logger().Warn("updated mechanism does not parse, keeping it anyway",
			"paper", s.PaperID, "error", parseErr)
	}

	s.UpdatedMechanism = updated
	w.Store.WriteUpdatedMechanism(s.PaperID, s.ProposalNum, updated)
	w.Store.WriteProposalState(s.PaperID, s.ProposalNum, s)
	return nil
}

// focusedAgenda renders the agenda for the brainstormer, pinning the current
// direction when one is assigned.
func focusedAgenda(s *types.Phase2State) string {
	if s.CurrentDirection == "" {
		return strings.Join(s.Agenda, "\n")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**FOCUS DIRECTION (you MUST base your proposal on this direction):**\n%s\n\nOther directions for context:\n", s.CurrentDirection)
	for _, d := range s.Agenda {
		if d != s.CurrentDirection {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderProposal(p types.ProposalResult) string {
	return fmt.Sprintf(`# %s

## Problem Statement
%s

## Motivation
%s

## Approach Sketch
%s

## Connections to Existing Work
%s

## Potential Impact
%s
`, p.Title, p.ProblemStatement, p.Motivation, p.ApproachSketch, p.Connections, p.PotentialImpact)
}

// critiqueTitles maps critic sources to artifact headings.
var critiqueTitles = map[string]string{
	sourceSanity:      "Sanity Checker",
	sourceExample:     "Example Tester",
	sourceReverse:     "Reverse Reasoner",
	sourceObstruction: "Obstruction Analyzer",
}

func renderCritique(source string, iteration int, c types.CritiqueResult) string {
	return fmt.Sprintf(`# %s Critique (Iteration %d)

## Summary
%s

## Severity: %s

## Issues Found
%s

## Strengths Identified
%s

## Suggestions
%s
`, critiqueTitles[source], iteration, c.Summary, c.Severity,
		bulleted(c.Issues), bulleted(c.Strengths), bulleted(c.Suggestions))
}

func bulleted(items []string) string {
	if len(items) == 0 {
		return "- None"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- " + item)
	}
	return b.String()
}

// formatCritique renders one critique for the consolidation prompt.
func formatCritique(c types.Critique) string {
	return fmt.Sprintf("**Issues:** %s\n**Strengths:** %s\n**Suggestions:** %s",
		joinOr(c.Issues, "None identified"),
		joinOr(c.Strengths, "None identified"),
		joinOr(c.Suggestions, "None"))
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func renderReport(r types.ReportResult) string {
	return fmt.Sprintf(`# Final Research Report

## Problem Statement
%s

## Proposed Approach
%s

## Expected Challenges
%s

## Potential Impact
%s
`, r.ProblemStatement, r.ProposedApproach, r.ExpectedChallenges, r.PotentialImpact)
}

func scoreCategory(score float64) types.Verdict {
	switch {
	case score >= 85:
		return types.VerdictExcellent
	case score >= 70:
		return types.VerdictGood
	case score >= 55:
		return types.VerdictAcceptable
	case score >= 40:
		return types.VerdictNeedsWork
	default:
		return types.VerdictPoor
	}
}

func renderAssessment(a *types.QualityAssessment, score float64, category types.Verdict) string {
	return fmt.Sprintf(`# Quality Assessment

## Scores
- **Clarity:** %d/10
- **Feasibility:** %d/10
- **Novelty:** %d/10
- **Rigor:** %d/10
- **Overall:** %d/10

## Final Score: %.1f/100 (%s)

## Verdict: %s

## Justification
%s
`, a.ClarityScore, a.FeasibilityScore, a.NoveltyScore, a.RigorScore, a.OverallScore,
		score, strings.ToUpper(string(category)), strings.ToUpper(string(a.Verdict)), a.Justification)
}

var headerPattern = regexp.MustCompile(`^#{1,2}\s+(.+)$`)

// parseReportSections splits a markdown report into sections keyed by
// lowercased, underscored header text.
func parseReportSections(report string) map[string]string {
	sections := map[string]string{}
	var key string
	var lines []string
	flush := func() {
		if key != "" {
			sections[key] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	for _, line := range strings.Split(report, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "_")
			lines = nil
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return sections
}

var xmlFencePattern = regexp.MustCompile("(?s)```(?:xml)?\\s*(.*?)\\s*```")

func stripFences(text string) string {
	if m := xmlFencePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.TrimSpace(text)
}
