package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "List recorded detekt runs, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		d, cleanup, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := d.GetHistory(path, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No lint runs found.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-6s %-40s %-10s %-4s %-8s %-8s %s\n",
			"ID", "PATH", "FORMAT", "EXIT", "FINDINGS", "DURATION", "TIME")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 100))
		for _, r := range runs {
			exit := strconv.Itoa(r.ExitCode)
			if r.TimedOut {
				exit = "T/O"
			}
			fmt.Fprintf(w, "%-6d %-40s %-10s %-4s %-8d %-8s %s\n",
				r.ID, r.Path, r.Format, exit, r.FindingCount,
				fmt.Sprintf("%dms", r.DurationMs), r.Timestamp)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the findings recorded for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}

		d, cleanup, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := d.GetRun(id)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no lint run with id %d", id)
		}
		findings, err := d.GetRunFindings(id)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run:       %d\n", run.ID)
		fmt.Fprintf(w, "Path:      %s\n", run.Path)
		fmt.Fprintf(w, "Format:    %s\n", run.Format)
		fmt.Fprintf(w, "Exit code: %d\n", run.ExitCode)
		fmt.Fprintf(w, "Duration:  %dms\n", run.DurationMs)
		fmt.Fprintf(w, "Time:      %s\n", run.Timestamp)
		fmt.Fprintf(w, "Findings:  %d\n", len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "  %s:%d:%d [%s] %s: %s\n", f.Path, f.Line, f.Column, f.Severity, f.RuleID, f.Message)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
}
