// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phase2

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Run formulates open problems for a processed paper. The agenda is created
// once; each of the configured number of directions is then developed into an
// independent proposal, in parallel. Inputs come from the paper's stored
// summary and mechanism.
func (w *Workflow) Run(ctx context.Context, paperID string) ([]*types.Phase2State, error) {
	summary, err := w.Store.LatestSummary(paperID)
	if err != nil {
		return nil, fmt.Errorf("loading summary for %s: %w", paperID, err)
	}
	mechanism, err := w.Store.Mechanism(paperID)
	if err != nil {
		return nil, fmt.Errorf("loading mechanism for %s: %w", paperID, err)
	}
	return w.RunWith(ctx, paperID, summary, mechanism)
}

// RunWith is Run with the phase-1 outputs supplied directly, for callers that
// hold them in memory.
func (w *Workflow) RunWith(ctx context.Context, paperID, summary, mechanism string) ([]*types.Phase2State, error) {
	agendaGraph, err := w.compileAgenda()
	if err != nil {
		return nil, err
	}
	proposalGraph, err := w.compileProposal()
	if err != nil {
		return nil, err
	}

	base := &types.Phase2State{
		PaperID:       paperID,
		Summary:       summary,
		Mechanism:     mechanism,
		MaxIterations: w.Cfg.Phase2.MaxIterations,
	}
	if _, err := agendaGraph.Invoke(ctx, base); err != nil {
		return nil, err
	}
	if len(base.Agenda) == 0 {
		return nil, fmt.Errorf("agenda for %s is empty", paperID)
	}

	n := w.Cfg.Phase2.Directions
	if n <= 0 {
		n = 1
	}
	if n > len(base.Agenda) {
		n = len(base.Agenda)
	}

	states := make([]*types.Phase2State, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		s := &types.Phase2State{
			PaperID:          paperID,
			Summary:          summary,
			Mechanism:        mechanism,
			Agenda:           base.Agenda,
			CurrentDirection: base.Agenda[i],
			ProposalNum:      i + 1,
			MaxIterations:    base.MaxIterations,
		}
		states[i] = s
		eg.Go(func() error {
			_, err := proposalGraph.Invoke(egCtx, s)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return states, err
	}
	return states, nil
}
