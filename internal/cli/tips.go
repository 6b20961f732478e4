package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abhishek8211/energyiq/internal/ai"
	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/tips"
)

// errNoHistory signals that a command needing a saved calculation found none.
var errNoHistory = errors.New("no saved calculations; run 'energyiq chat' first")

// NewTipsCmd creates the tips command.
func NewTipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Energy-saving tips",
		Long:  "Prints general energy-saving tips, or tips personalized to your latest calculation with --ai.",
		RunE:  runTips,
	}
	cmd.Flags().Bool("ai", false, "personalize tips for the latest saved calculation (falls back to rule-based tips without an API key)")
	return cmd
}

func runTips(cmd *cobra.Command, _ []string) error {
	useAI, _ := cmd.Flags().GetBool("ai")
	out := cmd.OutOrStdout()

	if !useAI {
		for _, t := range tips.Static() {
			fmt.Fprintf(out, "%s %s\n   %s\n", t.Icon, t.Title, t.Description)
		}
		return nil
	}

	result, err := latestResult()
	if err != nil {
		return err
	}

	client, _ := ai.NewClientFromEnv()
	resp := ai.NewService(client).Tips(cmd.Context(), result)

	fmt.Fprintf(out, "Tips for your latest calculation (%.2f kWh/mo, %s%.2f/mo):\n\n",
		result.TotalMonthlyKwh, result.Currency, result.TotalMonthlyCost)
	for _, t := range resp.Tips {
		fmt.Fprintf(out, "%s %s\n   %s\n", t.Icon, t.Title, t.Description)
		if t.Savings != "" {
			fmt.Fprintf(out, "   Potential savings: %s\n", t.Savings)
		}
	}
	if resp.EstimatedSavings != "" {
		fmt.Fprintf(out, "\nEstimated total savings: %s\n", resp.EstimatedSavings)
	}
	if resp.Source != ai.SourceAI {
		fmt.Fprintln(out, "(rule-based tips; set GEMINI_API_KEY for AI-personalized ones)")
	}
	return nil
}

// latestResult returns the most recent saved calculation.
func latestResult() (calc.Result, error) {
	store, err := openHistoryStore()
	if err != nil {
		return calc.Result{}, err
	}
	entries, err := store.List()
	if err != nil {
		return calc.Result{}, err
	}
	if len(entries) == 0 {
		return calc.Result{}, errNoHistory
	}
	return entries[0], nil
}
