// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phase2

import (
	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Node names, used in progress events.
const (
	nodeContext     = "context"
	nodeAgenda      = "agenda"
	nodeBrainstorm  = "brainstorm"
	nodeConsolidate = "consolidate"
	nodeDecide      = "decide"
	nodeReport      = "report"
	nodeJudge       = "judge"
	nodeScore       = "score"
	nodeUpdate      = "update_mechanism"
)

var criticSources = []string{sourceSanity, sourceExample, sourceReverse, sourceObstruction}

// compileAgenda builds the short preparation graph run once per paper.
func (w *Workflow) compileAgenda() (*graph.Runnable[*types.Phase2State], error) {
	g := graph.New[*types.Phase2State]()
	g.AddNode(nodeContext, "initializing research context", w.contextNode)
	g.AddNode(nodeAgenda, "identifying research directions", w.agendaNode)
	g.SetEntryPoint(nodeContext)
	g.AddEdge(nodeContext, nodeAgenda)
	g.AddEdge(nodeAgenda, graph.End)

	r, err := g.Compile()
	if err != nil {
		return nil, err
	}
	r.Observer = w.Observer
	return r, nil
}

// compileProposal builds the per-direction loop graph: brainstorm fans out to
// the four critics, their critiques join at the consolidator, and the done
// decision loops back or exits to reporting.
func (w *Workflow) compileProposal() (*graph.Runnable[*types.Phase2State], error) {
	g := graph.New[*types.Phase2State]()

	g.AddNode(nodeBrainstorm, "drafting proposal", w.brainstormNode)
	g.AddNode(sourceSanity, "checking logical consistency", w.criticNode(sourceSanity, sanityCheckerUser))
	g.AddNode(sourceExample, "testing concrete instances", w.criticNode(sourceExample, exampleTesterUser))
	g.AddNode(sourceReverse, "stress-testing claims", w.criticNode(sourceReverse, reverseReasonerUser))
	g.AddNode(sourceObstruction, "analyzing barriers", w.criticNode(sourceObstruction, obstructionAnalyzerUser))
	g.AddNode(nodeConsolidate, "consolidating feedback", w.consolidateNode)
	g.AddNode(nodeDecide, "evaluating readiness", w.decideNode)
	g.AddNode(nodeReport, "writing final report", w.reportNode)
	g.AddNode(nodeJudge, "judging report quality", w.judgeNode)
	g.AddNode(nodeScore, "computing quality score", w.scoreNode)
	g.AddNode(nodeUpdate, "tracing proposal into mechanism", w.updateMechanismNode)

	g.SetEntryPoint(nodeBrainstorm)
	for _, src := range criticSources {
		g.AddEdge(nodeBrainstorm, src)
	}
	g.AddJoinEdge(criticSources, nodeConsolidate)
	g.AddEdge(nodeConsolidate, nodeDecide)
	g.AddConditionalEdge(nodeDecide, routeAfterDecision)
	g.AddEdge(nodeReport, nodeJudge)
	g.AddEdge(nodeJudge, nodeScore)
	g.AddEdge(nodeScore, nodeUpdate)
	g.AddEdge(nodeUpdate, graph.End)

	// A critique round costs four supersteps. Size the ceiling from the
	// iteration budget so large budgets terminate at the cap rather than
	// at the engine default.
	iterations := w.Cfg.Phase2.MaxIterations
	if iterations < 1 {
		iterations = 1
	}
	g.SetMaxSupersteps(4*iterations + 12)

	r, err := g.Compile()
	if err != nil {
		return nil, err
	}
	r.Observer = w.Observer
	return r, nil
}

func routeAfterDecision(s *types.Phase2State) string {
	if s.IsDone {
		return nodeReport
	}
	return nodeBrainstorm
}
