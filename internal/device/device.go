// Package device defines the closed set of household appliance types and
// the Device entry collected by the dialogue.
//
// Appliance types are a tagged enumeration with an associated-data table
// (default wattage, icon, usage hint) so an unknown type cannot slip
// through as a bare string.
package device

import (
	"fmt"
	"strings"
)

// Type identifies one appliance category.
type Type int

// The supported appliance categories, in prompt display order.
const (
	AC Type = iota
	Fan
	TV
	Refrigerator
	WashingMachine
	Microwave
	WaterHeater
	LightBulb
	Computer
	Iron
	HairDryer
	Dishwasher
	ElectricStove
	Router
	PhoneCharger

	typeCount
)

// Validation bounds for device fields.
const (
	MinQuantity = 1
	MaxQuantity = 100

	MinWattage = 1
	MaxWattage = 50000

	// MinHoursPerDay is one minute of daily use.
	MinHoursPerDay = 1.0 / 60.0
	MaxHoursPerDay = 24.0
)

// info is the associated data carried by each Type.
type info struct {
	name    string
	wattage int
	icon    string
	hint    string
}

var typeInfo = [typeCount]info{
	AC:             {"AC", 1500, "❄️", "Each degree above 18°C saves ~6% energy"},
	Fan:            {"Fan", 75, "🌀", "Uses 20x less power than an AC"},
	TV:             {"TV", 120, "📺", "LED TVs use about half the power of plasma"},
	Refrigerator:   {"Refrigerator", 200, "🧊", "Runs 24/7 — keep coils clean"},
	WashingMachine: {"Washing Machine", 500, "🧺", "Full loads only for best efficiency"},
	Microwave:      {"Microwave", 1200, "📡", "More efficient than an oven for reheating"},
	WaterHeater:    {"Water Heater", 3000, "🔥", "Lower the thermostat to 50°C"},
	LightBulb:      {"Light Bulb", 60, "💡", "LEDs use 75% less than incandescent"},
	Computer:       {"Computer", 300, "💻", "Sleep mode cuts idle draw dramatically"},
	Iron:           {"Iron", 1000, "👔", "Iron clothes in batches to save reheat energy"},
	HairDryer:      {"Hair Dryer", 1800, "💇", "Short bursts at lower heat save power"},
	Dishwasher:     {"Dishwasher", 1800, "🍽️", "Skip heated dry to save ~15%"},
	ElectricStove:  {"Electric Stove", 2000, "🍳", "Match pot size to burner size"},
	Router:         {"Router", 12, "📶", "Low draw, but runs around the clock"},
	PhoneCharger:   {"Phone Charger", 5, "🔌", "Unplug when done — phantom load adds up"},
}

// String returns the display name, e.g. "Washing Machine".
func (t Type) String() string {
	if t < 0 || t >= typeCount {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeInfo[t].name
}

// DefaultWattage returns the typical wattage for the appliance type,
// used when the user answers "auto" at the wattage step.
func (t Type) DefaultWattage() int {
	if t < 0 || t >= typeCount {
		return 100
	}
	return typeInfo[t].wattage
}

// Icon returns the emoji shown next to the type in prompts and reports.
func (t Type) Icon() string {
	if t < 0 || t >= typeCount {
		return "🔌"
	}
	return typeInfo[t].icon
}

// Hint returns a one-line usage hint for the type.
func (t Type) Hint() string {
	if t < 0 || t >= typeCount {
		return ""
	}
	return typeInfo[t].hint
}

// Types returns all appliance types in display order.
func Types() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// TypeNames returns the display names of all types in display order.
func TypeNames() []string {
	out := make([]string, typeCount)
	for i := range out {
		out[i] = Type(i).String()
	}
	return out
}

// ParseType matches input case-insensitively against the type names.
// Surrounding whitespace is ignored.
func ParseType(input string) (Type, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	for i := Type(0); i < typeCount; i++ {
		if strings.ToLower(typeInfo[i].name) == needle {
			return i, true
		}
	}
	return 0, false
}

// Device is one appliance entry declared by the user. Instances are
// created by the dialogue once every field has passed validation and are
// never mutated afterwards.
type Device struct {
	ID          string  `json:"id"`
	Type        Type    `json:"-"`
	TypeName    string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Wattage     int     `json:"wattage"`
	HoursPerDay float64 `json:"hours_per_day"`
}

// New builds a Device with its TypeName denormalized for serialization.
func New(id string, t Type, quantity, wattage int, hoursPerDay float64) Device {
	return Device{
		ID:          id,
		Type:        t,
		TypeName:    t.String(),
		Quantity:    quantity,
		Wattage:     wattage,
		HoursPerDay: hoursPerDay,
	}
}

// FormatUsage renders hours-per-day the way the chat displays it:
// "2h", "1h 30m", or "45m".
func FormatUsage(hoursPerDay float64) string {
	if hoursPerDay < 1 {
		return fmt.Sprintf("%dm", int(hoursPerDay*60+0.5))
	}
	whole := int(hoursPerDay)
	mins := int((hoursPerDay-float64(whole))*60 + 0.5)
	if mins == 0 {
		return fmt.Sprintf("%dh", whole)
	}
	return fmt.Sprintf("%dh %dm", whole, mins)
}
