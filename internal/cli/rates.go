package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Abhishek8211/energyiq/internal/rates"
)

// NewRatesCmd creates the rates command, printing the tariff table.
func NewRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the electricity rate table",
		RunE:  runRates,
	}
}

func runRates(cmd *cobra.Command, _ []string) error {
	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()

	region := ""
	for _, e := range rates.All() {
		if e.Region != region {
			region = e.Region
			p.Fprintf(out, "\n%s\n", region)
		}
		p.Fprintf(out, "  %-16s %10v %-4s  ($%.3f/kWh)\n",
			e.Country, e.RatePerKwh, e.Currency, e.USDPerKwh)
	}
	p.Fprintf(out, "\nRates are residential averages in local currency per kWh.\n")
	return nil
}
