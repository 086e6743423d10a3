// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZJashi/math-conjecturer/internal/artifacts"
	"github.com/ZJashi/math-conjecturer/internal/coerce"
	"github.com/ZJashi/math-conjecturer/internal/ingest"
	"github.com/ZJashi/math-conjecturer/internal/llm"
	"github.com/ZJashi/math-conjecturer/internal/phase2"
	"github.com/ZJashi/math-conjecturer/internal/runstore"
)

var proposeCmd = &cobra.Command{
	Use:   "propose <arxiv-id>",
	Short: "Develop research proposals from a processed paper",
	Long: `Propose reads the stored summary and mechanism graph of a processed
paper, drafts a research agenda, and develops each selected direction
into a proposal through brainstorming and four parallel critics. Each
finished proposal is reported, judged, scored, and recorded in the run
index.

The paper must have been processed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runPropose,
}

func init() {
	proposeCmd.Flags().Int("directions", 0, "number of agenda directions to develop (default from config)")
	proposeCmd.Flags().Int("max-iterations", 0, "override the critique loop budget per proposal")

	rootCmd.AddCommand(proposeCmd)
}

func runPropose(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("directions"); v > 0 {
		cfg.Phase2.Directions = v
	}
	if v, _ := cmd.Flags().GetInt("max-iterations"); v > 0 {
		cfg.Phase2.MaxIterations = v
	}

	paperID, err := ingest.NormalizeArxivID(args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	client := llm.NewOpenRouter(cfg.AI, cfg.HTTP)
	w := &phase2.Workflow{
		Coercer:  &coerce.Coercer{Client: client, Logger: logger},
		Client:   client,
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
	rec, err := runs.Create(ctx, paperID, runstore.KindPropose)
	if err != nil {
		return err
	}

	states, runErr := w.Run(ctx, paperID)
	for _, s := range states {
		p := runstore.ProposalRecord{
			ProposalNum:     s.ProposalNum,
			Direction:       s.CurrentDirection,
			Iterations:      s.Iteration,
			QualityScore:    s.QualityScore,
			QualityCategory: s.QualityCategory,
		}
		if perr := runs.RecordProposal(ctx, rec.ID, p); perr != nil {
			logger.Warn("recording proposal failed", "run_id", rec.ID, "error", perr)
		}
	}
	if ferr := runs.Finish(ctx, rec.ID, runErr); ferr != nil {
		logger.Warn("recording run outcome failed", "run_id", rec.ID, "error", ferr)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Developed %d proposal(s) for %s:\n", len(states), paperID)
	for _, s := range states {
		fmt.Printf("  %d. %s\n     %.1f/100 (%s) after %d iteration(s)\n",
			s.ProposalNum, truncate(s.CurrentDirection, 100),
			s.QualityScore, strings.ToUpper(string(s.QualityCategory)), s.Iteration)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
