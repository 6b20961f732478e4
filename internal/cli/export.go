package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/export"
	"github.com/Abhishek8211/energyiq/internal/history"
)

// NewExportCmd creates the export command group.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved calculation",
	}
	cmd.PersistentFlags().String("out", "", "output file (default stdout)")
	cmd.PersistentFlags().String("id", "", "history entry id (default: latest)")
	cmd.AddCommand(
		newExportFormatCmd("csv", "Export as CSV", export.WriteCSV),
		newExportFormatCmd("report", "Export as a plain-text report", export.WriteReport),
	)
	return cmd
}

func newExportFormatCmd(format, short string, write func(io.Writer, calc.Result) error) *cobra.Command {
	return &cobra.Command{
		Use:   format,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := resultForExport(cmd)
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			if outPath == "" {
				return write(cmd.OutOrStdout(), result)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()

			if err := write(f, result); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", outPath)
			return nil
		},
	}
}

// resultForExport picks the history entry selected by --id, or the latest.
func resultForExport(cmd *cobra.Command) (calc.Result, error) {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		return latestResult()
	}

	store, err := openHistoryStore()
	if err != nil {
		return calc.Result{}, err
	}
	entries, err := store.List()
	if err != nil {
		return calc.Result{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return calc.Result{}, fmt.Errorf("no saved calculation with id %s: %w", id, history.ErrNotFound)
}
