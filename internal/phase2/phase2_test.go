// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phase2

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/coerce"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// stubModel answers every pipeline prompt with a fixed, schema-valid reply,
// routed by distinctive phrases in the user message.
type stubModel struct {
	mu        sync.Mutex
	doneReply string
	doneCalls int
}

const mechanismXML = `<blackboard><context><theorem id="thm:main" title="Main bound"><content>$x \le 2$</content></theorem></context><frontier></frontier></blackboard>`

func (m *stubModel) Invoke(_ context.Context, req llm.Request) (string, error) {
	user := req.Messages[len(req.Messages)-1].Content
	switch {
	case strings.Contains(user, "identifying promising research directions"):
		return `{"research_directions":["Direction A","Direction B","Direction C"],"rationale":"promising gaps"}`, nil
	case strings.Contains(user, "generating a research proposal"),
		strings.Contains(user, "revising a research proposal"):
		return `{"title":"A sharp bound","problem_statement":"Prove X for all n.","motivation":"Closes a gap.","approach_sketch":"Induct on n.","connections":"Builds on thm:main.","potential_impact":"Settles the conjecture."}`, nil
	case strings.Contains(user, "Sanity Checker reviewing"),
		strings.Contains(user, "Example Tester evaluating"),
		strings.Contains(user, "Reverse Reasoner stress-testing"),
		strings.Contains(user, "Obstruction Analyzer identifying"):
		return `{"issues":["too vague"],"strengths":["grounded"],"suggestions":["state quantifiers"],"severity":"moderate","summary":"workable draft"}`, nil
	case strings.Contains(user, "consolidating feedback"):
		return `{"critical_issues":["vague statement"],"minor_issues":[],"strengths":["grounded"],"required_fixes":["add quantifiers"],"overall_assessment":"needs one more pass"}`, nil
	case strings.Contains(user, "ready for final reporting"):
		m.mu.Lock()
		m.doneCalls++
		reply := m.doneReply
		m.mu.Unlock()
		return reply, nil
	case strings.Contains(user, "generating a polished final research report"):
		return `{"problem_statement":"Prove X for all n.","proposed_approach":"Induct on n.","expected_challenges":"The base case is subtle.","potential_impact":"Resolves the conjecture."}`, nil
	case strings.Contains(user, "final quality assessment"):
		return `{"clarity_score":9,"feasibility_score":8,"novelty_score":9,"rigor_score":8,"overall_score":9,"strengths":["precise"],"weaknesses":["narrow"],"justification":"well formulated","verdict":"excellent"}`, nil
	case strings.Contains(user, "updating a mechanism XML"):
		return "```xml\n" + `<blackboard><context><theorem id="thm:main" title="Main bound"><content>$x \le 2$</content></theorem></context><frontier><proposed_problem id="pp:sharp" title="Sharp bound" source_refs="thm:main"><statement>Prove X.</statement><approach>Induct.</approach><impact>Settles it.</impact></proposed_problem></frontier></blackboard>` + "\n```", nil
	}
	return "", fmt.Errorf("unexpected prompt: %.80s", user)
}

func (m *stubModel) doneCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doneCalls
}

const doneTrue = `{"is_done":true,"clarity_met":true,"feasibility_met":true,"novelty_met":true,"reasoning":"All criteria met.","recommendation":"Proceed to reporting."}`

const doneFalse = `{"is_done":false,"clarity_met":true,"feasibility_met":true,"novelty_met":false,"reasoning":"Novelty unproven.","recommendation":"Sharpen the conjecture."}`

func newWorkflow(t *testing.T, model llm.Client) (*Workflow, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := types.DefaultConfig()
	cfg.Papers.Dir = dir
	return &Workflow{
		Coercer: &coerce.Coercer{Client: model},
		Client:  model,
		Store:   &artifacts.Store{Dir: dir},
		Cfg:     cfg,
	}, dir
}

func TestRunWithDevelopsOneProposalPerDirection(t *testing.T) {
	model := &stubModel{doneReply: doneTrue}
	w, dir := newWorkflow(t, model)
	w.Cfg.Phase2.Directions = 2

	states, err := w.RunWith(context.Background(), "2301.07041", "a summary", mechanismXML)
	if err != nil {
		t.Fatalf("RunWith: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	for i, s := range states {
		if s.ProposalNum != i+1 {
			t.Errorf("state %d proposal num = %d", i, s.ProposalNum)
		}
		wantDir := []string{"Direction A", "Direction B"}[i]
		if s.CurrentDirection != wantDir {
			t.Errorf("state %d direction = %q, want %q", i, s.CurrentDirection, wantDir)
		}
		if s.Iteration != 1 {
			t.Errorf("state %d iteration = %d, want 1", i, s.Iteration)
		}
		if !s.IsDone {
			t.Errorf("state %d not done", i)
		}
		if s.QualityScore != 85 {
			t.Errorf("state %d score = %v, want 85", i, s.QualityScore)
		}
		if s.QualityCategory != types.VerdictExcellent {
			t.Errorf("state %d category = %q", i, s.QualityCategory)
		}
		if !strings.Contains(s.FinalReport, "## Problem Statement") {
			t.Errorf("state %d report missing sections: %q", i, s.FinalReport)
		}
		if !strings.Contains(s.UpdatedMechanism, "<proposed_problem") {
			t.Errorf("state %d updated mechanism missing proposed problem", i)
		}
		if strings.Contains(s.UpdatedMechanism, "```") {
			t.Errorf("state %d updated mechanism still fenced", i)
		}
	}

	for _, rel := range []string{
		filepath.Join("step4_open_problems", "proposal_1", "proposals", "proposal_iteration_1.md"),
		filepath.Join("step4_open_problems", "proposal_1", "critiques", "iteration_1", "sanity_checker.md"),
		filepath.Join("step4_open_problems", "proposal_1", "critiques", "iteration_1", "obstruction_analyzer.md"),
		filepath.Join("step4_open_problems", "proposal_1", "mechanism_updated.xml"),
		filepath.Join("step4_open_problems", "proposal_1", "final_report.md"),
		filepath.Join("step4_open_problems", "proposal_1", "quality_assessment.md"),
		filepath.Join("step4_open_problems", "proposal_2", "proposals", "proposal_iteration_1.md"),
		filepath.Join("step4_open_problems", "proposal_2", "final_report.md"),
		filepath.Join("step4_open_problems", "proposal_2", "quality_assessment.md"),
	} {
		if _, err := os.Stat(filepath.Join(dir, "2301.07041", rel)); err != nil {
			t.Errorf("missing artifact %s: %v", rel, err)
		}
	}
}

func TestLoopStopsAtIterationBudget(t *testing.T) {
	model := &stubModel{doneReply: doneFalse}
	w, dir := newWorkflow(t, model)
	w.Cfg.Phase2.MaxIterations = 2
	w.Cfg.Phase2.Directions = 1

	states, err := w.RunWith(context.Background(), "2301.07041", "a summary", mechanismXML)
	if err != nil {
		t.Fatalf("RunWith: %v", err)
	}
	s := states[0]

	if s.Iteration != 2 {
		t.Errorf("iteration = %d, want 2", s.Iteration)
	}
	if !s.IsDone {
		t.Error("run should be forced done at the budget")
	}
	if s.DoneReason != "Maximum iterations (2) reached." {
		t.Errorf("done reason = %q", s.DoneReason)
	}
	// The budget check short-circuits the final decision, so the model is
	// consulted only on the first round.
	if got := model.doneCallCount(); got != 1 {
		t.Errorf("done-decision model calls = %d, want 1", got)
	}

	for _, rel := range []string{
		filepath.Join("step4_open_problems", "proposal_1", "proposals", "proposal_iteration_1.md"),
		filepath.Join("step4_open_problems", "proposal_1", "proposals", "proposal_iteration_2.md"),
		filepath.Join("step4_open_problems", "proposal_1", "critiques", "iteration_2", "reverse_reasoner.md"),
	} {
		if _, err := os.Stat(filepath.Join(dir, "2301.07041", rel)); err != nil {
			t.Errorf("missing artifact %s: %v", rel, err)
		}
	}
}

func TestLoopHonorsBudgetBeyondDefaultCeiling(t *testing.T) {
	// Thirty rounds cost well over a hundred supersteps; the run must end
	// at the configured cap, not at an engine limit.
	model := &stubModel{doneReply: doneFalse}
	w, _ := newWorkflow(t, model)
	w.Cfg.Phase2.MaxIterations = 30
	w.Cfg.Phase2.Directions = 1

	states, err := w.RunWith(context.Background(), "2301.07041", "a summary", mechanismXML)
	if err != nil {
		t.Fatalf("RunWith: %v", err)
	}
	s := states[0]
	if s.Iteration != 30 {
		t.Errorf("iteration = %d, want 30", s.Iteration)
	}
	if s.DoneReason != "Maximum iterations (30) reached." {
		t.Errorf("done reason = %q", s.DoneReason)
	}
}

func TestAllFourCritiquesAccumulate(t *testing.T) {
	model := &stubModel{doneReply: doneTrue}
	w, _ := newWorkflow(t, model)
	w.Cfg.Phase2.Directions = 1

	states, err := w.RunWith(context.Background(), "2301.07041", "a summary", mechanismXML)
	if err != nil {
		t.Fatalf("RunWith: %v", err)
	}

	crits := states[0].Critiques()
	if len(crits) != 4 {
		t.Fatalf("got %d critiques, want 4", len(crits))
	}
	sources := make([]string, len(crits))
	for i, c := range crits {
		sources[i] = c.Source
	}
	sort.Strings(sources)
	want := []string{sourceExample, sourceObstruction, sourceReverse, sourceSanity}
	sort.Strings(want)
	for i := range want {
		if sources[i] != want[i] {
			t.Fatalf("critique sources = %v", sources)
		}
	}
}

// captureModel records the last user prompt and returns a fixed reply.
type captureModel struct {
	mu    sync.Mutex
	last  string
	reply string
}

func (m *captureModel) Invoke(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = req.Messages[len(req.Messages)-1].Content
	return m.reply, nil
}

func TestConsolidateMarksMissingCritics(t *testing.T) {
	model := &captureModel{reply: `{"critical_issues":[],"minor_issues":[],"strengths":[],"required_fixes":[],"overall_assessment":"fine"}`}
	w, _ := newWorkflow(t, model)

	s := &types.Phase2State{PaperID: "2301.07041"}
	s.AppendCritique(types.Critique{Source: sourceSanity, Issues: []string{"too vague"}})

	if err := w.consolidateNode(context.Background(), s); err != nil {
		t.Fatalf("consolidateNode: %v", err)
	}
	if s.Feedback == nil {
		t.Fatal("feedback not set")
	}

	if n := strings.Count(model.last, "No critique available"); n != 3 {
		t.Errorf("missing-critic placeholder count = %d, want 3", n)
	}
	if !strings.Contains(model.last, "**Issues:** too vague") {
		t.Errorf("present critique not formatted into prompt:\n%s", model.last)
	}
	if !strings.Contains(model.last, "**Strengths:** None identified") {
		t.Error("empty strengths should render as None identified")
	}
}

func TestScoreCategoryBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  types.Verdict
	}{
		{85, types.VerdictExcellent},
		{84.9, types.VerdictGood},
		{70, types.VerdictGood},
		{69.9, types.VerdictAcceptable},
		{55, types.VerdictAcceptable},
		{54.9, types.VerdictNeedsWork},
		{40, types.VerdictNeedsWork},
		{39.9, types.VerdictPoor},
		{0, types.VerdictPoor},
	}
	for _, tt := range tests {
		if got := scoreCategory(tt.score); got != tt.want {
			t.Errorf("scoreCategory(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreNodeRequiresJudgment(t *testing.T) {
	w, _ := newWorkflow(t, &stubModel{})
	s := &types.Phase2State{PaperID: "2301.07041"}
	if err := w.scoreNode(context.Background(), s); err == nil {
		t.Fatal("expected error when scoring without an assessment")
	}
}

func TestParseReportSections(t *testing.T) {
	report := `# Final Research Report

## Problem Statement
Prove X.
For all n.

## Proposed Approach
Induct.

## Expected Challenges
Base case.

## Potential Impact
Big.
`
	sections := parseReportSections(report)

	if got := sections["problem_statement"]; got != "Prove X.\nFor all n." {
		t.Errorf("problem_statement = %q", got)
	}
	if got := sections["proposed_approach"]; got != "Induct." {
		t.Errorf("proposed_approach = %q", got)
	}
	if got := sections["expected_challenges"]; got != "Base case." {
		t.Errorf("expected_challenges = %q", got)
	}
	if got := sections["potential_impact"]; got != "Big." {
		t.Errorf("potential_impact = %q", got)
	}
}

func TestFocusedAgenda(t *testing.T) {
	s := &types.Phase2State{Agenda: []string{"A", "B", "C"}}

	if got := focusedAgenda(s); got != "A\nB\nC" {
		t.Errorf("unfocused agenda = %q", got)
	}

	s.CurrentDirection = "B"
	got := focusedAgenda(s)
	if !strings.Contains(got, "FOCUS DIRECTION") || !strings.Contains(got, "B") {
		t.Errorf("focused agenda missing focus block: %q", got)
	}
	if !strings.Contains(got, "- A") || !strings.Contains(got, "- C") {
		t.Errorf("focused agenda missing context directions: %q", got)
	}
	if strings.Contains(got, "- B") {
		t.Errorf("focus direction duplicated in context list: %q", got)
	}
}

func TestRenderCritiqueEmptyLists(t *testing.T) {
	md := renderCritique(sourceSanity, 2, types.CritiqueResult{
		Severity: types.SeverityMinor,
		Summary:  "fine",
	})
	if !strings.Contains(md, "# Sanity Checker Critique (Iteration 2)") {
		t.Errorf("missing title: %q", md)
	}
	if strings.Count(md, "- None") != 3 {
		t.Errorf("empty sections should render as None:\n%s", md)
	}
}
