// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZJashi/math-conjecturer/internal/runstore"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded pipeline runs",
	Long: `Runs lists every recorded pipeline run, most recent first. With a run
id it shows that run's details, including the proposals a propose run
developed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	runs, err := runstore.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer runs.Close()

	ctx := cmd.Context()
	if len(args) == 1 {
		return printRunDetail(cmd, runs, args[0])
	}

	all, err := runs.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPAPER\tSTATUS\tSTARTED\tDURATION")
	for _, r := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.PaperID, r.Status,
			r.StartedAt.Local().Format(time.DateTime), runDuration(r))
	}
	return w.Flush()
}

func runDuration(r runstore.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func printRunDetail(cmd *cobra.Command, runs *runstore.Store, id string) error {
	ctx := cmd.Context()
	r, err := runs.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", r.ID)
	fmt.Printf("  paper:    %s\n", r.PaperID)
	fmt.Printf("  kind:     %s\n", r.Kind)
	fmt.Printf("  status:   %s\n", r.Status)
	fmt.Printf("  started:  %s\n", r.StartedAt.Local().Format(time.DateTime))
	if r.FinishedAt != nil {
		fmt.Printf("  finished: %s (%s)\n", r.FinishedAt.Local().Format(time.DateTime), runDuration(r))
	}
	if r.Error != "" {
		fmt.Printf("  error:    %s\n", r.Error)
	}

	proposals, err := runs.Proposals(ctx, id)
	if err != nil {
		return err
	}
	if len(proposals) == 0 {
		return nil
	}

	fmt.Println("  proposals:")
	for _, p := range proposals {
		fmt.Printf("    %d. %s\n       %.1f/100 (%s) after %d iteration(s)\n",
			p.ProposalNum, truncate(p.Direction, 90),
			p.QualityScore, p.QualityCategory, p.Iterations)
	}
	return nil
}
