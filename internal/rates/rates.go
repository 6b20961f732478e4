// Package rates holds the static electricity tariff table.
//
// Rates are residential averages in local currency per kWh, sourced from
// GlobalPetrolPrices, IEA and Statista (2024). Lookup is by lowercase
// country name with a fixed fallback, so a failed or missing lookup can
// never block the dialogue.
package rates

import (
	"sort"
	"strings"
	"time"
)

// Tariff is the pricing context a calculation runs under.
type Tariff struct {
	Country    string  `json:"country"`
	RatePerKwh float64 `json:"rate_per_kwh"`
	Currency   string  `json:"currency"`
}

// Entry is one row of the full rate table, with the USD equivalent used
// for cross-country comparison.
type Entry struct {
	Tariff
	Region    string  `json:"region"`
	USDPerKwh float64 `json:"usd_per_kwh"`
}

// DefaultCountry is used when no country is given or the lookup misses.
const DefaultCountry = "india"

type row struct {
	country  string
	rate     float64
	currency string
	region   string
}

var table = map[string]row{
	// Asia
	"india":       {"India", 8.00, "₹", "Asia"},
	"japan":       {"Japan", 31.00, "¥", "Asia"},
	"china":       {"China", 0.54, "¥", "Asia"},
	"south korea": {"South Korea", 120.00, "₩", "Asia"},
	"singapore":   {"Singapore", 0.33, "S$", "Asia"},
	"indonesia":   {"Indonesia", 1444.00, "Rp", "Asia"},
	"malaysia":    {"Malaysia", 0.57, "RM", "Asia"},
	"thailand":    {"Thailand", 4.18, "฿", "Asia"},
	"vietnam":     {"Vietnam", 2870.00, "₫", "Asia"},
	"philippines": {"Philippines", 11.50, "₱", "Asia"},
	"pakistan":    {"Pakistan", 55.00, "₨", "Asia"},
	"bangladesh":  {"Bangladesh", 9.00, "৳", "Asia"},
	"sri lanka":   {"Sri Lanka", 50.00, "Rs", "Asia"},
	"nepal":       {"Nepal", 12.00, "Rs", "Asia"},

	// Middle East
	"uae":          {"UAE", 0.38, "AED", "Middle East"},
	"saudi arabia": {"Saudi Arabia", 0.18, "SAR", "Middle East"},
	"qatar":        {"Qatar", 0.08, "QAR", "Middle East"},
	"kuwait":       {"Kuwait", 0.007, "KWD", "Middle East"},
	"israel":       {"Israel", 0.58, "₪", "Middle East"},

	// Europe
	"united kingdom": {"United Kingdom", 0.34, "£", "Europe"},
	"germany":        {"Germany", 0.39, "€", "Europe"},
	"france":         {"France", 0.26, "€", "Europe"},
	"italy":          {"Italy", 0.32, "€", "Europe"},
	"spain":          {"Spain", 0.28, "€", "Europe"},
	"netherlands":    {"Netherlands", 0.40, "€", "Europe"},
	"belgium":        {"Belgium", 0.36, "€", "Europe"},
	"sweden":         {"Sweden", 1.80, "kr", "Europe"},
	"norway":         {"Norway", 1.50, "kr", "Europe"},
	"denmark":        {"Denmark", 2.90, "kr", "Europe"},
	"finland":        {"Finland", 0.18, "€", "Europe"},
	"switzerland":    {"Switzerland", 0.27, "CHF", "Europe"},
	"austria":        {"Austria", 0.30, "€", "Europe"},
	"portugal":       {"Portugal", 0.24, "€", "Europe"},
	"ireland":        {"Ireland", 0.35, "€", "Europe"},
	"poland":         {"Poland", 1.10, "zł", "Europe"},
	"greece":         {"Greece", 0.25, "€", "Europe"},
	"czech republic": {"Czech Republic", 6.50, "Kč", "Europe"},
	"hungary":        {"Hungary", 46.00, "Ft", "Europe"},
	"romania":        {"Romania", 1.30, "lei", "Europe"},
	"russia":         {"Russia", 5.40, "₽", "Europe"},
	"turkey":         {"Turkey", 4.70, "₺", "Europe"},
	"ukraine":        {"Ukraine", 2.64, "₴", "Europe"},

	// Americas
	"united states": {"United States", 0.16, "$", "Americas"},
	"canada":        {"Canada", 0.17, "C$", "Americas"},
	"mexico":        {"Mexico", 1.50, "MX$", "Americas"},
	"brazil":        {"Brazil", 0.78, "R$", "Americas"},
	"argentina":     {"Argentina", 75.00, "AR$", "Americas"},
	"colombia":      {"Colombia", 800.00, "COP", "Americas"},
	"chile":         {"Chile", 150.00, "CLP", "Americas"},
	"peru":          {"Peru", 0.72, "S/", "Americas"},

	// Africa
	"south africa": {"South Africa", 3.60, "R", "Africa"},
	"nigeria":      {"Nigeria", 68.00, "₦", "Africa"},
	"egypt":        {"Egypt", 2.50, "E£", "Africa"},
	"kenya":        {"Kenya", 25.00, "KSh", "Africa"},
	"ghana":        {"Ghana", 1.80, "GH₵", "Africa"},
	"ethiopia":     {"Ethiopia", 0.90, "ETB", "Africa"},

	// Oceania
	"australia":   {"Australia", 0.35, "A$", "Oceania"},
	"new zealand": {"New Zealand", 0.37, "NZ$", "Oceania"},
}

var aliases = map[string]string{
	"uk":                   "united kingdom",
	"usa":                  "united states",
	"us":                   "united states",
	"united arab emirates": "uae",
	"czech":                "czech republic",
}

// Approximate exchange rates to USD (2024), keyed by currency symbol.
var toUSD = map[string]float64{
	"₹": 1.0 / 83, "¥": 1.0 / 150, "₩": 1.0 / 1350, "S$": 0.74,
	"Rp": 1.0 / 15700, "RM": 0.21, "฿": 0.028, "₫": 1.0 / 25000,
	"₱": 0.018, "₨": 0.0036, "৳": 0.0083, "Rs": 0.003,
	"AED": 0.27, "SAR": 0.27, "QAR": 0.27, "KWD": 3.25, "₪": 0.27,
	"£": 1.27, "€": 1.08, "kr": 0.093, "CHF": 1.13, "zł": 0.25,
	"Kč": 0.043, "Ft": 0.0027, "lei": 0.22, "₽": 0.011, "₺": 0.031,
	"₴": 0.024, "$": 1.0, "C$": 0.74, "MX$": 0.058, "R$": 0.20,
	"AR$": 0.0011, "COP": 0.00025, "CLP": 0.0011, "S/": 0.27,
	"R": 0.054, "₦": 0.00065, "E£": 0.021, "KSh": 0.0077,
	"GH₵": 0.072, "ETB": 0.0087, "A$": 0.66, "NZ$": 0.61,
}

// Lookup returns the tariff for the given country name (case-insensitive,
// common aliases accepted). found is false when the table has no entry,
// in which case the default country's tariff is returned instead.
func Lookup(country string) (t Tariff, found bool) {
	key := strings.ToLower(strings.TrimSpace(country))
	if key == "" {
		key = DefaultCountry
	}
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}

	r, ok := table[key]
	if !ok {
		r = table[DefaultCountry]
	}
	return Tariff{Country: r.country, RatePerKwh: r.rate, Currency: r.currency}, ok
}

// Default returns the fallback tariff.
func Default() Tariff {
	t, _ := Lookup(DefaultCountry)
	return t
}

// All returns every table entry with USD equivalents, sorted by region
// then country name.
func All() []Entry {
	out := make([]Entry, 0, len(table))
	for _, r := range table {
		out = append(out, Entry{
			Tariff:    Tariff{Country: r.country, RatePerKwh: r.rate, Currency: r.currency},
			Region:    r.region,
			USDPerKwh: r.rate * toUSD[r.currency],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		return out[i].Country < out[j].Country
	})
	return out
}

// LastUpdated reports when the lookup was served; the table itself is
// static, so this is simply the current time (mirrors the HTTP contract).
func LastUpdated() time.Time {
	return time.Now().UTC()
}
