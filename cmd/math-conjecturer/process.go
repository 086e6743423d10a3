// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/graph"
	"github.com/ZJashi/math-conjecturer/internal/ingest"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/phase1"
	"github.com/ZJashi/math-conjecturer/internal/runstore"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <arxiv-id>",
	Short: "Summarize a paper and extract its mechanism graph",
	Long: `Process downloads the paper's TeX source, writes a critiqued summary,
and distills the paper's theorems into a mechanism graph stored under
the papers directory.

After each critic verdict the command pauses for review: revise the
summary once more, proceed to mechanism extraction, or quit. With
--auto the summary is revised until the critic passes it or the
revision budget is spent.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("auto", false, "resolve critic verdicts without prompting")
	processCmd.Flags().Int("max-revisions", 0, "override the summary revision budget")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-revisions"); v > 0 {
		cfg.Phase1.MaxRevisions = v
	}
	auto, _ := cmd.Flags().GetBool("auto")

	paperID, err := ingest.NormalizeArxivID(args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	w := &phase1.Workflow{
		Client:   llm.NewOpenRouter(cfg.AI, cfg.HTTP),
		HTTP:     &http.Client{Timeout: cfg.HTTP.Timeout},
		Store:    &artifacts.Store{Dir: cfg.Papers.Dir, Logger: logger},
		Cfg:      cfg,
		Logger:   logger,
		Observer: consoleObserver(logger),
	}

	runs, err := runstore.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer runs.Close()

	ctx := cmd.Context()
	rec, err := runs.Create(ctx, paperID, runstore.KindProcess)
	if err != nil {
		return err
	}

	var state *types.Phase1State
	if auto {
		state, err = w.Run(ctx, paperID)
	} else {
		state, err = runInteractive(ctx, w, paperID)
	}
	if ferr := runs.Finish(ctx, rec.ID, err); ferr != nil {
		logger.Warn("recording run outcome failed", "run_id", rec.ID, "error", ferr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Processed %s in %d iteration(s); artifacts under %s\n",
		state.PaperID, state.Iteration, cfg.Papers.Dir+"/"+state.PaperID)
	return nil
}

// runInteractive pauses at every critic verdict and asks the caller how to
// continue. Quitting leaves the run recorded as failed.
func runInteractive(ctx context.Context, w *phase1.Workflow, paperID string) (*types.Phase1State, error) {
	state, cp, err := w.Start(ctx, paperID)
	if err != nil {
		return state, err
	}

	reader := bufio.NewReader(os.Stdin)
	for cp != nil {
		fmt.Printf("\nCritic verdict (iteration %d/%d): %s\n", state.Iteration, state.MaxRevisions, state.CriticStatus)
		if state.Critique != "" {
			fmt.Println("\n" + state.Critique)
		}

		switch promptDecision(reader, state) {
		case types.DecisionRevise:
			state.Decision = types.DecisionRevise
		case types.DecisionProceed:
			state.Decision = types.DecisionProceed
		default:
			return state, fmt.Errorf("aborted at review gate")
		}

		cp, err = w.Resume(ctx, state, cp)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// promptDecision reads one of revise, proceed, or quit. A passing verdict
// or an exhausted budget proceeds without asking; routing ignores the
// decision in those cases anyway.
func promptDecision(reader *bufio.Reader, state *types.Phase1State) types.Decision {
	if state.CriticStatus == types.CriticPass || state.Iteration >= state.MaxRevisions {
		return types.DecisionProceed
	}

	for {
		fmt.Print("[r]evise, [p]roceed to mechanism extraction, [q]uit: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return ""
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "revise":
			return types.DecisionRevise
		case "p", "proceed":
			return types.DecisionProceed
		case "q", "quit":
			return ""
		}
	}
}

// consoleObserver logs node progress for CLI runs.
func consoleObserver(logger *slog.Logger) func(graph.NodeEvent) {
	return func(ev graph.NodeEvent) {
		switch ev.Phase {
		case "start":
			if ev.Message != "" {
				logger.Info(ev.Message, "node", ev.Node)
			}
		case "error":
			logger.Error("node failed", "node", ev.Node, "error", ev.Err)
		}
	}
}
