// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phase1

import (
	"context"

	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Node names, used in checkpoints and progress events.
const (
	nodeIngest    = "ingest"
	nodeSummarize = "summarize"
	nodeCritic    = "critic"
	nodeGate      = "gate"
	nodeRevise    = "revise"
	nodeMechanism = "mechanism"
)

func (w *Workflow) compile() (*graph.Runnable[*types.Phase1State], error) {
	g := graph.New[*types.Phase1State]()

	g.AddNode(nodeIngest, "downloading and cleaning paper source", w.ingestNode)
	g.AddNode(nodeSummarize, "writing initial summary", w.summarizeNode)
	g.AddNode(nodeCritic, "critiquing summary", w.criticNode)
	g.AddNode(nodeGate, "applying review decision", w.gateNode)
	g.AddNode(nodeRevise, "revising summary", w.reviseNode)
	g.AddNode(nodeMechanism, "extracting mechanism graph", w.mechanismNode)

	g.SetEntryPoint(nodeIngest)
	g.AddEdge(nodeIngest, nodeSummarize)
	g.AddEdge(nodeSummarize, nodeCritic)
	g.AddEdge(nodeCritic, nodeGate)
	g.AddConditionalEdge(nodeGate, routeAfterGate)
	g.AddEdge(nodeRevise, nodeCritic)
	g.AddEdge(nodeMechanism, graph.End)
	g.InterruptAfter(nodeCritic)

	// A revision round costs three supersteps. The interrupt resets the
	// counter every round anyway, but size the ceiling from the budget so
	// the graph stays valid if the gate is ever removed.
	g.SetMaxSupersteps(3*w.Cfg.Phase1.MaxRevisions + 12)

	r, err := g.Compile()
	if err != nil {
		return nil, err
	}
	r.Observer = w.Observer
	return r, nil
}

// routeAfterGate decides whether the summary goes back for revision or
// forward to mechanism extraction. The revision budget is a hard cap
// regardless of the critic's verdict.
func routeAfterGate(s *types.Phase1State) string {
	if s.CriticStatus == types.CriticPass ||
		s.Decision == types.DecisionProceed ||
		s.Iteration >= s.MaxRevisions {
		return nodeMechanism
	}
	return nodeRevise
}

// Start runs the pipeline up to the first critic verdict. A non-nil
// checkpoint means the run is paused at the review gate: set state.Decision
// and call Resume. A nil checkpoint means the run finished.
func (w *Workflow) Start(ctx context.Context, paperID string) (*types.Phase1State, *graph.Checkpoint, error) {
	r, err := w.compile()
	if err != nil {
		return nil, nil, err
	}

	s := &types.Phase1State{
		PaperID:      paperID,
		MaxRevisions: w.Cfg.Phase1.MaxRevisions,
	}
	cp, err := r.Invoke(ctx, s)
	return s, cp, err
}

// Resume continues a paused run after the caller has recorded a Decision.
// It returns the next checkpoint, or nil when the run finished.
func (w *Workflow) Resume(ctx context.Context, s *types.Phase1State, cp *graph.Checkpoint) (*graph.Checkpoint, error) {
	r, err := w.compile()
	if err != nil {
		return nil, err
	}
	return r.Resume(ctx, s, cp)
}

// Run drives the pipeline to completion without pausing for review: the
// summary is revised until the critic passes it or the revision budget is
// spent.
func (w *Workflow) Run(ctx context.Context, paperID string) (*types.Phase1State, error) {
	s, cp, err := w.Start(ctx, paperID)
	if err != nil {
		return s, err
	}
	for cp != nil {
		cp, err = w.Resume(ctx, s, cp)
		if err != nil {
			return s, err
		}
	}
	return s, nil
}
