package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/results"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect finished sessions",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent session results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.ResultRepo().List(context.Background(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-24s  %-10s  %-8s  %-6s  %s\n",
			"Session", "Finished", "Topic", "Status", "Answered", "Time", "Reason")
		fmt.Println(strings.Repeat("─", 124))
		for _, r := range recs {
			topic := r.Topic
			if len(topic) > 24 {
				topic = topic[:24]
			}
			fmt.Printf("%-36s  %-19s  %-24s  %-10s  %3d/%-4d  %-6s  %s\n",
				r.SessionID,
				r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
				topic,
				r.Status,
				r.AnsweredCount, r.QuestionCount,
				(time.Duration(r.ElapsedSeconds) * time.Second).String(),
				r.Reason,
			)
		}
		return nil
	},
}

var resultsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export session results to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		recs, err := s.ResultRepo().List(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		if err := results.ExportXLSX(f, recs); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Printf("Exported %d result(s) to %s\n", len(recs), args[0])
		return nil
	},
}

func init() {
	resultsListCmd.Flags().Int("limit", 20, "Maximum number of results to show")
	resultsExportCmd.Flags().Int("limit", 0, "Maximum number of results to export (0 = all)")
	resultsExportCmd.Flags().Duration("since", 0, "Only export sessions finished within this window")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsExportCmd)
}
