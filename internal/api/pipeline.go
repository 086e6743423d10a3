// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/coerce"
	"github.com/ZJashi/math-conjecturer/internal/events"
	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/phase1"
	"github.com/ZJashi/math-conjecturer/internal/phase2"
	"github.com/ZJashi/math-conjecturer/internal/runstore"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// Pipeline executes one recorded run to completion. Implementations report
// the proposals the run developed; process runs report none.
type Pipeline interface {
	Execute(ctx context.Context, run runstore.Run, directions int) ([]runstore.ProposalRecord, error)
}

// Runner executes runs against the real workflows, publishing node progress
// to the event bus under the run's id.
type Runner struct {
	Client    llm.Client
	HTTP      *http.Client
	Artifacts *artifacts.Store
	Cfg       types.PipelineConfig
	Bus       *events.Bus
	Logger    *slog.Logger
}

// Execute dispatches on the run kind. A positive directions overrides the
// configured proposal count for propose runs and is ignored otherwise.
func (r *Runner) Execute(ctx context.Context, run runstore.Run, directions int) ([]runstore.ProposalRecord, error) {
	switch run.Kind {
	case runstore.KindProcess:
		w := &phase1.Workflow{
			Client:   r.Client,
			HTTP:     r.HTTP,
			Store:    r.Artifacts,
			Cfg:      r.Cfg,
			Logger:   r.Logger,
			Observer: r.observer(run.ID),
		}
		_, err := w.Run(ctx, run.PaperID)
		return nil, err

	case runstore.KindPropose:
		cfg := r.Cfg
		if directions > 0 {
			cfg.Phase2.Directions = directions
		}
		w := &phase2.Workflow{
			Coercer:  &coerce.Coercer{Client: r.Client, Logger: r.Logger},
			Client:   r.Client,
			Store:    r.Artifacts,
			Cfg:      cfg,
			Logger:   r.Logger,
			Observer: r.observer(run.ID),
		}
		states, err := w.Run(ctx, run.PaperID)
		records := make([]runstore.ProposalRecord, 0, len(states))
		for _, s := range states {
			records = append(records, runstore.ProposalRecord{
				ProposalNum:     s.ProposalNum,
				Direction:       s.CurrentDirection,
				Iterations:      s.Iteration,
				QualityScore:    s.QualityScore,
				QualityCategory: s.QualityCategory,
			})
		}
		return records, err

	default:
		return nil, fmt.Errorf("unknown run kind %q", run.Kind)
	}
}

// observer bridges workflow node events onto the bus. Node errors are not
// published here; the run-level failure event carries them.
func (r *Runner) observer(runID string) func(graph.NodeEvent) {
	if r.Bus == nil {
		return nil
	}
	return func(ev graph.NodeEvent) {
		kind := events.KindNodeStart
		switch ev.Phase {
		case "complete":
			kind = events.KindNodeComplete
		case "error":
			return
		}
		r.Bus.Publish(events.Event{
			RunID:   runID,
			Kind:    kind,
			Step:    ev.Node,
			Message: ev.Message,
		})
	}
}
