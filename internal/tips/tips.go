// Package tips provides energy-saving suggestions: a static pool for
// quick display, and rule-based personalized tips derived from a
// calculation result. The rule-based set doubles as the fallback when
// the AI backend is unavailable.
package tips

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/device"
)

// Tip is one energy-saving suggestion.
type Tip struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Savings     string `json:"savings,omitempty"`
}

// Response bundles a tip set with its provenance.
type Response struct {
	Tips             []Tip     `json:"tips"`
	EstimatedSavings string    `json:"estimated_savings,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`

	// Source is "ai" or "fallback"; the dialogue renders both the same way.
	Source string `json:"source"`
}

// Tip set sizes and savings heuristics shared with the AI prompt.
const (
	maxPersonalized = 6
	randomTipCount  = 4

	// totalSavingsShare is the heuristic share of the monthly bill a
	// household can typically save by following the tips.
	totalSavingsShare = 0.18
)

// Static returns the full static tip pool in a fixed order.
func Static() []Tip {
	out := make([]Tip, len(staticPool))
	copy(out, staticPool)
	return out
}

var staticPool = []Tip{
	{Icon: "💡", Title: "Switch to LED Bulbs", Description: "LED bulbs use up to 75% less energy than incandescent bulbs and last 25x longer."},
	{Icon: "❄️", Title: "Optimize AC Temperature", Description: "Set your AC to 24°C instead of 18°C. Each degree saves about 6% energy."},
	{Icon: "🔌", Title: "Unplug Idle Devices", Description: "Phantom loads from idle devices can account for 5-10% of your electricity bill."},
	{Icon: "🌀", Title: "Use Ceiling Fans", Description: "Ceiling fans use only 75W compared to AC's 1500W. Use fans when possible."},
	{Icon: "⭐", Title: "Buy Star-Rated Appliances", Description: "5-star rated appliances consume up to 45% less energy than non-rated ones."},
	{Icon: "☀️", Title: "Use Natural Light", Description: "Open curtains during the day to reduce the need for artificial lighting."},
	{Icon: "🧺", Title: "Full Load Washing", Description: "Run your washing machine only with full loads to maximize efficiency."},
	{Icon: "🔥", Title: "Reduce Water Heating", Description: "Water heaters are energy hogs. Reduce temperature to 50°C and limit usage."},
}

// ChooseRandomSubset samples n distinct tips from the static pool using
// the provided random source, preserving testability with a seeded rng.
// n is clamped to the pool size.
func ChooseRandomSubset(rng *rand.Rand, n int) []Tip {
	if n > len(staticPool) {
		n = len(staticPool)
	}
	if n < 0 {
		n = 0
	}
	perm := rng.Perm(len(staticPool))
	out := make([]Tip, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, staticPool[idx])
	}
	return out
}

// Random samples randomTipCount tips with a time-seeded source.
func Random() []Tip {
	return ChooseRandomSubset(rand.New(rand.NewSource(time.Now().UnixNano())), randomTipCount)
}

// Fallback generates rule-based personalized tips from a calculation
// result: one tip for the biggest consumer, an AC-specific tip when an
// AC is present, then general tips, capped at maxPersonalized.
func Fallback(result calc.Result) Response {
	cur := result.Currency
	out := make([]Tip, 0, maxPersonalized)

	sorted := make([]calc.DeviceResult, len(result.Devices))
	copy(sorted, result.Devices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MonthlyCost > sorted[j].MonthlyCost
	})

	if len(sorted) > 0 {
		top := sorted[0]
		saving := roundSaving(top.MonthlyCost * 0.2)
		out = append(out, Tip{
			Icon:  "⚡",
			Title: fmt.Sprintf("Optimize %s Usage", top.Device.TypeName),
			Description: fmt.Sprintf(
				"Your %s is your biggest energy consumer at %.2f kWh/mo. Reduce usage by 1-2 hours daily to save ~%s%d/mo.",
				top.Device.TypeName, top.MonthlyKwh, cur, saving),
			Savings: fmt.Sprintf("%s%d/mo", cur, saving),
		})
	}

	for _, d := range result.Devices {
		if d.Device.Type != device.AC {
			continue
		}
		saving := roundSaving(d.MonthlyCost * 0.25)
		out = append(out, Tip{
			Icon:  "❄️",
			Title: "Set AC to 24°C",
			Description: fmt.Sprintf(
				"Each degree above 18°C saves ~6%% energy. Setting to 24°C could save %s%d/mo.",
				cur, saving),
			Savings: fmt.Sprintf("%s%d/mo", cur, saving),
		})
		break
	}

	general := []struct {
		tip   Tip
		share float64
	}{
		{Tip{Icon: "💡", Title: "Switch to LED Bulbs", Description: "LED bulbs use 75% less energy than incandescent and last 25x longer. Switch all bulbs for immediate savings."}, 0.05},
		{Tip{Icon: "🔌", Title: "Eliminate Phantom Loads", Description: "Unplug chargers and devices when not in use. Phantom loads account for 5-10% of your electricity bill."}, 0.07},
		{Tip{Icon: "⭐", Title: "Upgrade to 5-Star Appliances", Description: "5-star rated appliances consume up to 45% less energy. Prioritize replacing your highest-consuming devices."}, 0.15},
		{Tip{Icon: "📊", Title: "Monitor & Schedule Usage", Description: "Track consumption patterns and shift heavy usage to off-peak hours. Smart plugs can automate this."}, 0.08},
	}
	for _, g := range general {
		t := g.tip
		t.Savings = fmt.Sprintf("%s%d/mo", cur, roundSaving(result.TotalMonthlyCost*g.share))
		out = append(out, t)
	}

	if len(out) > maxPersonalized {
		out = out[:maxPersonalized]
	}

	return Response{
		Tips:             out,
		EstimatedSavings: EstimatedSavings(result),
		GeneratedAt:      time.Now().UTC(),
		Source:           "fallback",
	}
}

// EstimatedSavings returns the heuristic total monthly savings figure
// for a result, e.g. "₹259/mo".
func EstimatedSavings(result calc.Result) string {
	return fmt.Sprintf("%s%d/mo", result.Currency, roundSaving(result.TotalMonthlyCost*totalSavingsShare))
}

func roundSaving(v float64) int {
	return int(math.Round(v))
}
