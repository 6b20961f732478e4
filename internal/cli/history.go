package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Abhishek8211/energyiq/internal/config"
	"github.com/Abhishek8211/energyiq/internal/history"
)

// NewHistoryCmd creates the history command group.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved calculations",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryRemoveCmd(), newHistoryClearCmd())
	return cmd
}

func openHistoryStore() (history.Store, error) {
	cfg := config.Global()
	return history.NewFileStore(cfg.History.Path, cfg.History.MaxEntries)
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved calculations, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistoryStore()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No saved calculations yet. Run 'energyiq chat' to create one.")
				return nil
			}

			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()
			for i, e := range entries {
				p.Fprintf(out, "%2d. %s  %s  %d device(s)  %.2f kWh/mo  %s%.2f/mo\n",
					i+1, e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"),
					len(e.Devices), e.TotalMonthlyKwh, e.Currency, e.TotalMonthlyCost)
			}
			return nil
		},
	}
}

func newHistoryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one saved calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryStore()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return fmt.Errorf("failed to remove %s: %w", args[0], err)
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all saved calculations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistoryStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			cmd.Println("History cleared.")
			return nil
		},
	}
}
