// Package export renders calculation results as CSV and as a plain-text
// report suitable for sharing or archiving.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/device"
)

// csvHeader is the fixed column set of the CSV export.
var csvHeader = []string{
	"device", "quantity", "wattage_w", "hours_per_day",
	"daily_kwh", "monthly_kwh", "monthly_cost", "share_pct",
}

// WriteCSV writes one row per device plus a TOTAL row.
func WriteCSV(w io.Writer, r calc.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, d := range r.Devices {
		row := []string{
			d.Device.TypeName,
			strconv.Itoa(d.Device.Quantity),
			strconv.Itoa(d.Device.Wattage),
			formatFloat(d.Device.HoursPerDay),
			formatFloat(d.DailyKwh),
			formatFloat(d.MonthlyKwh),
			formatFloat(d.MonthlyCost),
			formatFloat(d.Percentage),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	total := []string{
		"TOTAL", "", "", "",
		formatFloat(r.TotalDailyKwh),
		formatFloat(r.TotalMonthlyKwh),
		formatFloat(r.TotalMonthlyCost),
		"100",
	}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("failed to write csv total row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WriteReport writes a human-readable summary with a device table and
// a proportional share bar per device.
func WriteReport(w io.Writer, r calc.Result) error {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	b.WriteString("ENERGY CONSUMPTION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	p.Fprintf(&b, "Generated: %s\n", r.Timestamp.Format("2006-01-02 15:04 MST"))
	p.Fprintf(&b, "Country:   %s\n", r.Country)
	p.Fprintf(&b, "Rate:      %s%v per kWh\n\n", r.Currency, r.RatePerKwh)

	b.WriteString("DEVICES\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, d := range r.Devices {
		p.Fprintf(&b, "%-18s x%-3d %6dW  %s/day\n",
			d.Device.TypeName, d.Device.Quantity, d.Device.Wattage,
			device.FormatUsage(d.Device.HoursPerDay))
		p.Fprintf(&b, "  %s %.2f kWh/mo  %s%.2f/mo  (%.1f%%)\n",
			shareBar(d.Percentage), d.MonthlyKwh, r.Currency, d.MonthlyCost, d.Percentage)
	}

	b.WriteString(strings.Repeat("-", 60) + "\n")
	p.Fprintf(&b, "Daily usage:    %.2f kWh\n", r.TotalDailyKwh)
	p.Fprintf(&b, "Monthly usage:  %.2f kWh\n", r.TotalMonthlyKwh)
	p.Fprintf(&b, "Monthly cost:   %s%.2f\n", r.Currency, r.TotalMonthlyCost)

	_, err := io.WriteString(w, b.String())
	return err
}

// shareBar renders a 20-cell bar proportional to pct.
func shareBar(pct float64) string {
	const width = 20
	filled := int(pct/100*width + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatFloat trims trailing zeros so CSV values stay compact.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
