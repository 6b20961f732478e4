// Package calc turns a finalized device list into aggregated energy and
// cost figures.
//
// Compute is pure apart from id and timestamp assignment: identical
// inputs always yield identical numeric output. Devices are trusted to
// have passed the dialogue's validation; the calculator does not
// re-check field ranges.
package calc

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Abhishek8211/energyiq/internal/device"
	"github.com/Abhishek8211/energyiq/internal/parse"
)

// DaysInMonth is the averaging factor between daily and monthly figures.
const DaysInMonth = 30

// DeviceResult holds the derived figures for a single device.
type DeviceResult struct {
	Device device.Device `json:"device"`

	// DailyKwh and MonthlyKwh are rounded to two decimals for display.
	DailyKwh   float64 `json:"daily_kwh"`
	MonthlyKwh float64 `json:"monthly_kwh"`

	// MonthlyCost is the device's monthly cost in the tariff currency.
	MonthlyCost float64 `json:"monthly_cost"`

	// Percentage is the device's share of total monthly kWh, in [0,100].
	Percentage float64 `json:"percentage"`
}

// Result is one immutable snapshot of a completed calculation.
type Result struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Devices preserves the user's declaration order.
	Devices []DeviceResult `json:"devices"`

	TotalDailyKwh    float64 `json:"total_daily_kwh"`
	TotalMonthlyKwh  float64 `json:"total_monthly_kwh"`
	TotalMonthlyCost float64 `json:"total_monthly_cost"`

	RatePerKwh float64 `json:"rate_per_kwh"`
	Currency   string  `json:"currency"`
	Country    string  `json:"country"`
}

// Compute aggregates per-device and total energy/cost figures.
//
// Rounding policy: per-device display values are rounded independently,
// but every aggregate (totals, per-device cost, percentage share) is
// derived from the raw, unrounded monthly kWh and rounded only once at
// the end. Summing already-rounded values would compound rounding error
// across many devices.
//
// An empty device list yields a zero-total result, not an error.
func Compute(devices []device.Device, ratePerKwh float64, currency, country string) Result {
	rawDaily := make([]float64, len(devices))
	rawMonthly := make([]float64, len(devices))

	var sumDaily, sumMonthly float64
	for i, d := range devices {
		rawDaily[i] = float64(d.Wattage) * float64(d.Quantity) * d.HoursPerDay / 1000
		rawMonthly[i] = rawDaily[i] * DaysInMonth
		sumDaily += rawDaily[i]
		sumMonthly += rawMonthly[i]
	}

	results := make([]DeviceResult, len(devices))
	for i, d := range devices {
		pct := 0.0
		if sumMonthly > 0 {
			pct = parse.Round2(rawMonthly[i] / sumMonthly * 100)
		}
		results[i] = DeviceResult{
			Device:      d,
			DailyKwh:    parse.Round2(rawDaily[i]),
			MonthlyKwh:  parse.Round2(rawMonthly[i]),
			MonthlyCost: parse.Round2(rawMonthly[i] * ratePerKwh),
			Percentage:  pct,
		}
	}

	return Result{
		ID:               ulid.Make().String(),
		Timestamp:        time.Now().UTC(),
		Devices:          results,
		TotalDailyKwh:    parse.Round2(sumDaily),
		TotalMonthlyKwh:  parse.Round2(sumMonthly),
		TotalMonthlyCost: parse.Round2(sumMonthly * ratePerKwh),
		RatePerKwh:       ratePerKwh,
		Currency:         currency,
		Country:          country,
	}
}
