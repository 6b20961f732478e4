package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/tips"
)

// askSystemPrompt frames free-form questions with the app's formulas so
// answers stay consistent with what the calculator shows.
const askSystemPrompt = `You are EnergyIQ, a smart AI assistant built into a Smart Energy Calculator app. You can answer any question the user asks.

About this app:
- Users add their electrical devices (type, quantity, wattage, hours of usage per day).
- The app calculates energy consumption using these formulas:
  * Daily kWh = (Wattage x Quantity x Hours per day) / 1000
  * Monthly kWh = Daily kWh x 30
  * Monthly Cost = Monthly kWh x Electricity Rate per kWh
  * Percentage share = (Device Monthly kWh / Total Monthly kWh) x 100
- The electricity rate is fetched based on the user's country (default: India at approx ₹8/kWh).

Rules:
- For electricity and energy questions, provide extra detail and practical tips.
- Keep answers concise (max 3-4 short paragraphs).
- Use simple language anyone can understand.
- If you mention numbers, include units where applicable.
- Do NOT use markdown formatting like ** or ## — use plain text only.`

// BuildAskPrompt combines the system prompt with the user's question.
func BuildAskPrompt(question string) string {
	return askSystemPrompt + "\n\nUser question: " + strings.TrimSpace(question)
}

// BuildTipsPrompt embeds the calculation breakdown in a strict-JSON
// instruction so the response can be parsed into tips.
func BuildTipsPrompt(result calc.Result) string {
	var devices strings.Builder
	for i, d := range result.Devices {
		fmt.Fprintf(&devices, "%d. %s — %dW × %gh/day → %.2f kWh/mo (%s%.2f/mo)\n",
			i+1, d.Device.TypeName, d.Device.Wattage, d.Device.HoursPerDay,
			d.MonthlyKwh, result.Currency, d.MonthlyCost)
	}

	return fmt.Sprintf(`You are an energy efficiency expert and sustainability advisor.

Based on the following household electricity usage data, provide personalized, practical, and cost-saving tips.

HOUSEHOLD DATA:
- Country: %s
- Total monthly consumption: %.2f kWh
- Total monthly cost: %s%.2f
- Currency: %s

DEVICE BREAKDOWN:
%s
INSTRUCTIONS:
1. Analyze the usage pattern and identify the biggest energy wasters.
2. Provide exactly 6 actionable energy-saving tips.
3. Each tip should directly relate to the user's actual devices and usage.
4. Include specific numbers (e.g., "save 15-20%%", "reduce by 2 kWh/day").
5. At the end, provide an estimated total monthly savings amount in %s.

RESPONSE FORMAT (strict JSON — no markdown, no code fences):
{
  "tips": [
    {
      "icon": "<single emoji>",
      "title": "<short title, 3-6 words>",
      "description": "<actionable tip, 1-2 sentences with specific numbers>",
      "savings": "<estimated savings for this tip, e.g. '%s150/mo'>"
    }
  ],
  "estimated_savings": "<total estimated monthly savings, e.g. '%s800/mo'>"
}

Respond with ONLY the JSON object. No additional text.`,
		result.Country, result.TotalMonthlyKwh, result.Currency, result.TotalMonthlyCost,
		result.Currency, devices.String(), result.Currency, result.Currency, result.Currency)
}

// codeFenceRe strips ```json ... ``` wrapping that models sometimes add
// despite the no-fences instruction.
var codeFenceRe = regexp.MustCompile("(?i)```(?:json)?\\s*")

// ErrUnusableTips is returned when the model's output cannot be parsed
// into a non-empty tip list.
var ErrUnusableTips = errors.New("unusable tips response")

type tipsPayload struct {
	Tips []struct {
		Icon        string `json:"icon"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Savings     string `json:"savings"`
	} `json:"tips"`
	EstimatedSavings string `json:"estimated_savings"`
}

// ParseTips decodes the model's strict-JSON tip response. Missing icons
// and titles get defaults; an empty tip list is unusable.
func ParseTips(raw string) ([]tips.Tip, string, error) {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))

	var payload tipsPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnusableTips, err)
	}
	if len(payload.Tips) == 0 {
		return nil, "", ErrUnusableTips
	}

	out := make([]tips.Tip, 0, len(payload.Tips))
	for _, t := range payload.Tips {
		tip := tips.Tip{
			Icon:        t.Icon,
			Title:       t.Title,
			Description: t.Description,
			Savings:     t.Savings,
		}
		if tip.Icon == "" {
			tip.Icon = "💡"
		}
		if tip.Title == "" {
			tip.Title = "Energy Tip"
		}
		out = append(out, tip)
	}
	return out, payload.EstimatedSavings, nil
}
