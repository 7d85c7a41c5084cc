package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questionbank"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect the fallback question bank",
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a bank file (default: the configured bank)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bc := cfg.Bank
		if len(args) > 0 {
			bc.Path = args[0]
		}
		bank, err := loadBank(bc)
		if err != nil {
			var verr *questionbank.ValidationError
			if errors.As(err, &verr) {
				for _, issue := range verr.Issues {
					fmt.Printf("✗ %s: %s\n", issue.Field, issue.Message)
				}
				return fmt.Errorf("%d issue(s) found", len(verr.Issues))
			}
			return err
		}

		fmt.Printf("✓ bank %s is valid\n", bank.Version())
		for _, tier := range questiongen.Tiers() {
			fmt.Printf("  %-13s %d questions\n", tier, bank.Count(tier))
		}
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bank questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		tierVal, _ := cmd.Flags().GetString("tier")

		bank, err := loadBank(cfg.Bank)
		if err != nil {
			return err
		}

		tiers := questiongen.Tiers()
		if tierVal != "" {
			t, err := questiongen.ParseTier(tierVal)
			if err != nil {
				return err
			}
			tiers = []questiongen.Tier{t}
		}

		fmt.Printf("Bank %s\n", bank.Version())
		for _, tier := range tiers {
			keys := bank.Keys(tier)
			qs, err := bank.Take(tier, len(keys), nil)
			if err != nil {
				return fmt.Errorf("read %s questions: %w", tier, err)
			}
			fmt.Println()
			fmt.Printf("%s (%d)\n", tier, len(qs))
			fmt.Println(strings.Repeat("─", 72))
			for i, q := range qs {
				text := q.Text
				if len(text) > 56 {
					text = text[:53] + "..."
				}
				fmt.Printf("%-12s  %s  [%s]\n", keys[i], text, q.Correct)
			}
		}
		return nil
	},
}

func init() {
	bankListCmd.Flags().String("tier", "", "Only list this tier")

	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankListCmd)
}
