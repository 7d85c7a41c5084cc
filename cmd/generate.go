package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate questions for a topic without starting a session",
	Long: `Run the generation pipeline and print the result.

Without --tier the full session set is composed (every tier, deduplicated
and padded from the bank). With --tier a single tier call is made. Useful
for evaluating provider output and prompt changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("tier", "", "Generate one tier only: beginner, intermediate or advanced")
	generateCmd.Flags().Int("count", 4, "Questions to generate with --tier")
	generateCmd.Flags().Bool("json", false, "Print JSON instead of text")
}

type generated struct {
	Topic     string                 `json:"topic"`
	Degraded  bool                   `json:"degraded"`
	Questions []questiongen.Question `json:"questions"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tierVal, _ := cmd.Flags().GetString("tier")
	count, _ := cmd.Flags().GetInt("count")
	asJSON, _ := cmd.Flags().GetBool("json")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := buildEngine(ctx, cfg, st, nil, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	out := generated{Topic: args[0]}
	if tierVal == "" {
		composed, err := eng.composer.Compose(ctx, args[0], uuid.NewString())
		if err != nil {
			return fmt.Errorf("compose: %w", err)
		}
		out.Questions = composed.Questions
		out.Degraded = composed.Degraded
	} else {
		tier, err := questiongen.ParseTier(tierVal)
		if err != nil {
			return err
		}
		batch, err := eng.pipeline.Generate(ctx, questiongen.GenerateInput{
			Topic: args[0],
			Tier:  tier,
			Count: count,
			Nonce: uuid.NewString(),
		})
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		out.Questions = batch.Questions
		out.Degraded = batch.Degraded
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Topic: %s (%d questions", out.Topic, len(out.Questions))
	if out.Degraded {
		fmt.Print(", includes bank questions")
	}
	fmt.Println(")")
	fmt.Println()
	for i, q := range out.Questions {
		fmt.Printf("── %d. [%s, %s] ──\n", i+1, q.Tier, q.Source)
		fmt.Println(q.Text)
		for _, l := range questiongen.Labels() {
			mark := " "
			if l == q.Correct {
				mark = "*"
			}
			fmt.Printf(" %s %s) %s\n", mark, l, q.Options[l])
		}
		fmt.Println()
	}
	return nil
}
