// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Severity grades the issues found by a critic agent.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Verdict is the judge's categorical rating of a proposal.
type Verdict string

const (
	VerdictExcellent  Verdict = "excellent"
	VerdictGood       Verdict = "good"
	VerdictAcceptable Verdict = "acceptable"
	VerdictNeedsWork  Verdict = "needs_work"
	VerdictPoor       Verdict = "poor"
)

// AgendaResult is the structured output of the agenda creator.
type AgendaResult struct {
	// ResearchDirections lists 3-5 high-level directions to explore.
	ResearchDirections []string `json:"research_directions" yaml:"research_directions"`

	// Rationale explains why these directions are promising.
	Rationale string `json:"rationale" yaml:"rationale"`
}

// ProposalResult is the structured output of the brainstormer.
type ProposalResult struct {
	Title            string `json:"title" yaml:"title"`
	ProblemStatement string `json:"problem_statement" yaml:"problem_statement"`
	Motivation       string `json:"motivation" yaml:"motivation"`
	ApproachSketch   string `json:"approach_sketch" yaml:"approach_sketch"`
	Connections      string `json:"connections" yaml:"connections"`
	PotentialImpact  string `json:"potential_impact" yaml:"potential_impact"`
}

// CritiqueResult is the structured output of one critic agent.
type CritiqueResult struct {
	Issues      []string `json:"issues" yaml:"issues"`
	Strengths   []string `json:"strengths" yaml:"strengths"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Summary     string   `json:"summary" yaml:"summary"`
}

// Critique is one critic's assessment as accumulated in pipeline state.
// Source identifies which of the four critic agents produced it.
type Critique struct {
	Source      string   `json:"source" yaml:"source"`
	Issues      []string `json:"issues" yaml:"issues"`
	Strengths   []string `json:"strengths" yaml:"strengths"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
	Severity    Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// ConsolidatedFeedback merges the critiques from all critic agents.
type ConsolidatedFeedback struct {
	// CriticalIssues must be fixed before the proposal is acceptable.
	CriticalIssues []string `json:"critical_issues" yaml:"critical_issues"`

	// MinorIssues would be nice to fix but are not blockers.
	MinorIssues []string `json:"minor_issues" yaml:"minor_issues"`

	// Strengths lists what works well across critiques.
	Strengths []string `json:"strengths" yaml:"strengths"`

	// RequiredFixes is the prioritized list of changes needed.
	RequiredFixes []string `json:"required_fixes" yaml:"required_fixes"`

	// OverallAssessment summarizes proposal quality and readiness.
	OverallAssessment string `json:"overall_assessment" yaml:"overall_assessment"`
}

// DoneDecisionResult is the structured output of the done-decision node.
type DoneDecisionResult struct {
	IsDone         bool   `json:"is_done" yaml:"is_done"`
	ClarityMet     bool   `json:"clarity_met" yaml:"clarity_met"`
	FeasibilityMet bool   `json:"feasibility_met" yaml:"feasibility_met"`
	NoveltyMet     bool   `json:"novelty_met" yaml:"novelty_met"`
	Reasoning      string `json:"reasoning" yaml:"reasoning"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// ReportResult is the structured output of the report generator.
type ReportResult struct {
	ProblemStatement   string `json:"problem_statement" yaml:"problem_statement"`
	ProposedApproach   string `json:"proposed_approach" yaml:"proposed_approach"`
	ExpectedChallenges string `json:"expected_challenges" yaml:"expected_challenges"`
	PotentialImpact    string `json:"potential_impact" yaml:"potential_impact"`
}

// QualityAssessment is the judge's scoring of the final report.
// All criterion scores are on a 1-10 scale.
type QualityAssessment struct {
	ClarityScore     int      `json:"clarity_score" yaml:"clarity_score"`
	FeasibilityScore int      `json:"feasibility_score" yaml:"feasibility_score"`
	NoveltyScore     int      `json:"novelty_score" yaml:"novelty_score"`
	RigorScore       int      `json:"rigor_score" yaml:"rigor_score"`
	OverallScore     int      `json:"overall_score" yaml:"overall_score"`
	Strengths        []string `json:"strengths" yaml:"strengths"`
	Weaknesses       []string `json:"weaknesses" yaml:"weaknesses"`
	Justification    string   `json:"justification" yaml:"justification"`
	Verdict          Verdict  `json:"verdict" yaml:"verdict"`
}
