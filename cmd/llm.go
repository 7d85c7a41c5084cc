package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, PurposePrefix: purpose, FailedOnly: failed}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tTOKENS\tMS\tOK")
		var tokens, failures int
		for _, e := range events {
			ok := "yes"
			if !e.Success {
				ok = "no"
				failures++
			}
			tokens += e.InputTokens + e.OutputTokens
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
				e.ID, e.Timestamp.Local().Format("01-02 15:04:05"), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d calls, %d failed, %d tokens\n", len(events), failures, tokens)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no LLM call with ID %d", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		fmt.Printf("%s  %s/%s  %s\n", e.Timestamp.Local().Format(time.DateTime), e.Provider, e.Model, e.Purpose)
		fmt.Printf("%d in / %d out tokens, %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
		if e.ErrorMessage != "" {
			fmt.Printf("error: %s\n", e.ErrorMessage)
		}
		printSection("request", e.RequestBody)
		printSection("response", e.ResponseBody)
		return nil
	},
}

func printSection(name, body string) {
	fmt.Printf("\n--- %s %s\n", name, strings.Repeat("-", max(56-len(name), 0)))
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Purpose prefix, e.g. question-gen:advanced")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd)
}
