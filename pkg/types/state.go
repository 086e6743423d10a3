// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sync"

// CriticStatus is the two-valued verdict of the phase-1 summary critic.
type CriticStatus string

const (
	CriticPass          CriticStatus = "PASS"
	CriticNeedsRevision CriticStatus = "NEEDS_REVISION"
)

// Decision is the caller's continuation choice at the phase-1 critic gate.
type Decision string

const (
	DecisionRevise  Decision = "revise"
	DecisionProceed Decision = "proceed"
)

// Phase1Status names the stage a phase-1 run is currently in.
type Phase1Status string

const (
	StatusIngesting   Phase1Status = "ingesting"
	StatusSummarizing Phase1Status = "summarizing"
	StatusCritiquing  Phase1Status = "critiquing"
	StatusRevising    Phase1Status = "revising"
	StatusExtracting  Phase1Status = "extracting-mechanism"
	StatusDone        Phase1Status = "done"
)

// Phase1State is the shared context threaded through the paper-processing
// pipeline. It is owned by a single in-flight run.
type Phase1State struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// TeX is the cleaned LaTeX source produced by ingestion.
	TeX string `json:"-" yaml:"-"`

	Summary      string       `json:"summary" yaml:"summary"`
	Critique     string       `json:"critique" yaml:"critique"`
	CriticStatus CriticStatus `json:"critic_status" yaml:"critic_status"`

	// Iteration counts critique rounds, starting at 1. Monotonically
	// non-decreasing within a run.
	Iteration    int `json:"iteration" yaml:"iteration"`
	MaxRevisions int `json:"max_revisions" yaml:"max_revisions"`

	// Decision is set by the caller before resuming from the critic gate.
	Decision Decision `json:"decision,omitempty" yaml:"decision,omitempty"`

	// Mechanism is the extracted mechanism graph as XML text.
	Mechanism string `json:"mechanism" yaml:"mechanism"`

	Status Phase1Status `json:"status" yaml:"status"`
}

// Phase2State is the shared context threaded through the open-problem
// formulation pipeline. The critique list is the only field mutated from
// parallel branches; all appends go through AppendCritique.
type Phase2State struct {
	PaperID   string `json:"paper_id" yaml:"paper_id"`
	Summary   string `json:"-" yaml:"-"`
	Mechanism string `json:"-" yaml:"-"`

	// Agenda is the ordered list of candidate research directions.
	Agenda []string `json:"agenda" yaml:"agenda"`

	// CurrentDirection is the direction this proposal develops. Empty means
	// the brainstormer picks freely from the agenda.
	CurrentDirection string `json:"current_direction,omitempty" yaml:"current_direction,omitempty"`

	// ProposalNum distinguishes proposals in multi-direction mode (1-based).
	ProposalNum int `json:"proposal_num" yaml:"proposal_num"`

	CurrentProposal string `json:"current_proposal" yaml:"current_proposal"`

	// Iteration counts brainstorm rounds, starting at 1. Monotonically
	// non-decreasing within a run.
	Iteration     int `json:"iteration" yaml:"iteration"`
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	Feedback *ConsolidatedFeedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`

	IsDone     bool   `json:"is_done" yaml:"is_done"`
	DoneReason string `json:"done_reason" yaml:"done_reason"`

	FinalReport      string `json:"final_report" yaml:"final_report"`
	UpdatedMechanism string `json:"-" yaml:"-"`

	Assessment      *QualityAssessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	QualityScore    float64            `json:"quality_score" yaml:"quality_score"`
	QualityCategory Verdict            `json:"quality_category" yaml:"quality_category"`

	mu        sync.Mutex
	critiques []Critique
}

// AppendCritique records one critic's output. Safe for concurrent use by the
// parallel critic branches; entries accumulate rather than overwrite.
func (s *Phase2State) AppendCritique(c Critique) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.critiques = append(s.critiques, c)
}

// Critiques returns a copy of the accumulated critique list.
func (s *Phase2State) Critiques() []Critique {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Critique, len(s.critiques))
	copy(out, s.critiques)
	return out
}

// ResetCritiques clears the critique list at the start of a brainstorm round.
func (s *Phase2State) ResetCritiques() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.critiques = nil
}
