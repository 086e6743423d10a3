// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phase2 implements the open-problem formulation pipeline: an agenda
// of research directions, an iterative brainstorm/critique loop with four
// parallel critics, and a final report with an independent quality judgment.
package phase2

import "github.com/ZJashi/math-conjecturer/internal/coerce"

// Descriptor tables for every structured record the pipeline coerces out of
// model output. Field names must match the json tags on the corresponding
// pkg/types structs.

var agendaSchema = coerce.Schema{
	Name:        "agenda_result",
	Description: "High-level research directions derived from the paper.",
	Fields: []coerce.Field{
		{Name: "research_directions", Kind: coerce.StringList,
			Description: "3-5 distinct research directions, each a concise title plus a one-paragraph description, ordered by promise."},
		{Name: "rationale", Kind: coerce.String,
			Description: "Why these directions are the most promising ones."},
	},
}

var proposalSchema = coerce.Schema{
	Name:        "proposal_result",
	Description: "One concrete research proposal.",
	Fields: []coerce.Field{
		{Name: "title", Kind: coerce.String,
			Description: "Concise descriptive title, 10-15 words."},
		{Name: "problem_statement", Kind: coerce.String,
			Description: "Precise formal statement of the problem or conjecture, with all assumptions and definitions."},
		{Name: "motivation", Kind: coerce.String,
			Description: "Why the problem is interesting and what solving it would reveal."},
		{Name: "approach_sketch", Kind: coerce.String,
			Description: "High-level attack strategy, promising tools, and intermediate goals."},
		{Name: "connections", Kind: coerce.String,
			Description: "Which results and mechanisms from the source material the proposal builds on."},
		{Name: "potential_impact", Kind: coerce.String,
			Description: "Expected consequences for the field if the problem is resolved."},
	},
}

var critiqueSchema = coerce.Schema{
	Name:        "critique_result",
	Description: "One critic's structured assessment of a proposal.",
	Fields: []coerce.Field{
		{Name: "issues", Kind: coerce.StringList,
			Description: "Problems found, most serious first."},
		{Name: "strengths", Kind: coerce.StringList,
			Description: "What the proposal does well."},
		{Name: "suggestions", Kind: coerce.StringList,
			Description: "Specific, actionable improvements."},
		{Name: "severity", Kind: coerce.Enum,
			Choices:     []string{"moderate", "critical", "minor"},
			Description: "Severity of the worst issue found."},
		{Name: "summary", Kind: coerce.String,
			Description: "One-paragraph overall assessment from this critic's perspective."},
	},
}

var consolidationSchema = coerce.Schema{
	Name:        "consolidated_feedback",
	Description: "Unified feedback merged from all critics.",
	Fields: []coerce.Field{
		{Name: "critical_issues", Kind: coerce.StringList,
			Description: "Blocking issues that must be fixed before approval."},
		{Name: "minor_issues", Kind: coerce.StringList,
			Description: "Non-blocking issues worth fixing."},
		{Name: "strengths", Kind: coerce.StringList,
			Description: "Strengths to preserve in revision."},
		{Name: "required_fixes", Kind: coerce.StringList,
			Description: "Prioritized, implementable actions."},
		{Name: "overall_assessment", Kind: coerce.String,
			Description: "Summary of proposal quality and readiness."},
	},
}

var doneSchema = coerce.Schema{
	Name:        "done_decision",
	Description: "Binary decision on whether the proposal is ready for reporting.",
	Fields: []coerce.Field{
		{Name: "is_done", Kind: coerce.Bool,
			Description: "True when the proposal meets all quality criteria."},
		{Name: "clarity_met", Kind: coerce.Bool,
			Description: "Whether the clarity criterion passes."},
		{Name: "feasibility_met", Kind: coerce.Bool,
			Description: "Whether the feasibility criterion passes."},
		{Name: "novelty_met", Kind: coerce.Bool,
			Description: "Whether the novelty criterion passes."},
		{Name: "reasoning", Kind: coerce.String,
			Description: "2-3 sentences justifying the decision."},
		{Name: "recommendation", Kind: coerce.String,
			Description: "What to improve if continuing, or what makes the proposal ready."},
	},
}

var reportSchema = coerce.Schema{
	Name:        "report_result",
	Description: "The final four-section research report.",
	Fields: []coerce.Field{
		{Name: "problem_statement", Kind: coerce.String,
			Description: "Formal, rigorous statement of the problem including assumptions, definitions, and notation."},
		{Name: "proposed_approach", Kind: coerce.String,
			Description: "Detailed approach: strategy, technical components, key steps, and starting points."},
		{Name: "expected_challenges", Kind: coerce.String,
			Description: "Known obstacles, technical difficulties, and strategies for addressing them."},
		{Name: "potential_impact", Kind: coerce.String,
			Description: "What a solution would enable or reveal, and connections to other areas."},
	},
}

var judgeSchema = coerce.Schema{
	Name:        "quality_assessment",
	Description: "Independent quality evaluation of the final report.",
	Fields: []coerce.Field{
		{Name: "clarity_score", Kind: coerce.Int, Min: 1, Max: 10,
			Description: "Precision and completeness of the problem formulation."},
		{Name: "feasibility_score", Kind: coerce.Int, Min: 1, Max: 10,
			Description: "Viability of the proposed approach with known or near-term techniques."},
		{Name: "novelty_score", Kind: coerce.Int, Min: 1, Max: 10,
			Description: "Genuine originality beyond incremental extension of known work."},
		{Name: "rigor_score", Kind: coerce.Int, Min: 1, Max: 10,
			Description: "Mathematical soundness and depth of the analysis."},
		{Name: "overall_score", Kind: coerce.Int, Min: 1, Max: 10,
			Description: "Holistic quality, not necessarily the average of the criteria."},
		{Name: "strengths", Kind: coerce.StringList,
			Description: "Specific strengths, citing sections of the report."},
		{Name: "weaknesses", Kind: coerce.StringList,
			Description: "Specific weaknesses, citing sections of the report."},
		{Name: "justification", Kind: coerce.String,
			Description: "Evidence-based justification for every score."},
		{Name: "verdict", Kind: coerce.Enum,
			Choices:     []string{"acceptable", "excellent", "good", "needs_work", "poor"},
			Description: "Categorical rating of the report."},
	},
}
