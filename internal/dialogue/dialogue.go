// Package dialogue implements the conversational state machine that
// collects device data one field at a time.
//
// Transition is an explicit (state, input) -> (state, messages) function
// over immutable State values, so every step is unit-testable without a
// UI harness. Validation failures re-emit the current step with a
// corrective message and never discard collected devices.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/device"
	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/logging"
	"github.com/Abhishek8211/energyiq/internal/parse"
	"github.com/Abhishek8211/energyiq/internal/rates"
	"github.com/Abhishek8211/energyiq/internal/tips"
)

// Step is one named state of the conversation.
type Step int

// Dialogue steps, in collection order. Tips and FreeAsk are sub-modes of
// Result: both keep the finished calculation available.
const (
	StepGreeting Step = iota
	StepAskDeviceCount
	StepAskDeviceType
	StepAskQuantity
	StepAskWattage
	StepAskHours
	StepCalculating
	StepResult
	StepTips
	StepFreeAsk
)

// String returns the step's wire name.
func (s Step) String() string {
	switch s {
	case StepGreeting:
		return "greeting"
	case StepAskDeviceCount:
		return "ask_device_count"
	case StepAskDeviceType:
		return "ask_device_type"
	case StepAskQuantity:
		return "ask_quantity"
	case StepAskWattage:
		return "ask_wattage"
	case StepAskHours:
		return "ask_hours"
	case StepCalculating:
		return "calculating"
	case StepResult:
		return "result"
	case StepTips:
		return "tips"
	case StepFreeAsk:
		return "free_ask"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Device count bounds for one conversation.
const (
	MinDeviceCount = 1
	MaxDeviceCount = 50
)

// Control keywords.
const (
	keywordUndo  = "undo"
	keywordReset = "reset"
	keywordTips  = "tips"
	keywordAuto  = "auto"
	keywordDflt  = "default"
)

// Role tags a chat message's author.
type Role string

// Message roles.
const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// Message is one chat bubble emitted in strict order, with optional
// quick-reply options the UI may render as buttons.
type Message struct {
	Role    Role
	Content string
	Options []string
}

// Draft is the partially-built device for the current collection round.
type Draft struct {
	Type     device.Type
	HasType  bool
	Quantity int
	Wattage  int
}

// State is the full conversation state. It is a value: Transition
// returns a new State and never mutates its argument's slices in place.
type State struct {
	Step        Step
	Tariff      rates.Tariff
	Devices     []device.Device
	Current     Draft
	TargetCount int
	DeviceIndex int

	// Result is set once the final device completes; it survives the
	// tips and free-ask sub-modes.
	Result *calc.Result

	// PendingQuestion carries a free-form question awaiting an
	// out-of-band AI answer. The UI consumes and clears it; the answer
	// is appended as a new message without re-entering the state machine.
	PendingQuestion string
}

// Controller drives transitions and owns the completion side effects:
// on the final device it computes the result, appends it to history and
// notifies the result consumer before returning, so no partial result
// is ever observable.
type Controller struct {
	store    history.Store
	onResult func(calc.Result)
	newID    func() string
}

// NewController creates a Controller. store may be nil (no persistence);
// onResult may be nil (no external consumer).
func NewController(store history.Store, onResult func(calc.Result)) *Controller {
	return &Controller{
		store:    store,
		onResult: onResult,
		newID:    func() string { return ulid.Make().String() },
	}
}

// Start opens a conversation under the given tariff and returns the
// greeting alongside the first collecting state.
func (c *Controller) Start(tariff rates.Tariff) (State, []Message) {
	state := State{Step: StepAskDeviceCount, Tariff: tariff}
	msg := Message{
		Role: RoleBot,
		Content: "👋 Hello! I'm EnergyIQ, your smart energy assistant.\n\n" +
			"I'll help you calculate your monthly electricity consumption and cost.\n\n" +
			"Let's start — how many electrical devices do you use at home?",
		Options: countOptions(),
	}
	return state, []Message{msg}
}

// Transition processes one user input. Invalid input re-emits the
// current step with a corrective message and an unchanged state.
func (c *Controller) Transition(ctx context.Context, state State, input string) (State, []Message) {
	input = strings.TrimSpace(input)

	switch state.Step {
	case StepAskDeviceCount:
		return c.handleDeviceCount(state, input)
	case StepAskDeviceType:
		return c.handleDeviceType(state, input)
	case StepAskQuantity:
		return c.handleQuantity(state, input)
	case StepAskWattage:
		return c.handleWattage(state, input)
	case StepAskHours:
		return c.handleHours(ctx, state, input)
	case StepResult, StepTips, StepFreeAsk:
		return c.handlePostResult(state, input)
	default:
		return state, nil
	}
}

func (c *Controller) handleDeviceCount(state State, input string) (State, []Message) {
	count, err := parse.IntInRange(input, MinDeviceCount, MaxDeviceCount)
	if err != nil {
		return state, []Message{botMsg(
			fmt.Sprintf("Please enter a valid number between %d and %d.", MinDeviceCount, MaxDeviceCount),
			countOptions())}
	}

	state.TargetCount = count
	state.DeviceIndex = 0
	state.Step = StepAskDeviceType

	plural := ""
	if count > 1 {
		plural = "s"
	}
	content := fmt.Sprintf("Great! You have %d device%s. Let's add them one by one.\n\n", count, plural) +
		devicePrompt(1)
	return state, []Message{botMsg(content, typeOptions(state))}
}

func (c *Controller) handleDeviceType(state State, input string) (State, []Message) {
	if strings.EqualFold(input, keywordUndo) {
		return c.handleUndo(state)
	}

	t, ok := device.ParseType(input)
	if !ok {
		return state, []Message{botMsg(
			"I don't recognize that device. Please pick one from:\n"+typeList(),
			typeOptions(state))}
	}

	state.Current = Draft{Type: t, HasType: true}
	state.Step = StepAskQuantity
	content := fmt.Sprintf("%s %s — nice! How many of these do you have?", t.Icon(), t)
	return state, []Message{botMsg(content, []string{"1", "2", "3", "4", "5"})}
}

func (c *Controller) handleUndo(state State) (State, []Message) {
	if len(state.Devices) == 0 {
		return state, []Message{botMsg("There's nothing to undo yet — let's pick a device type first.\n"+typeList(), typeOptions(state))}
	}

	state.Devices = append([]device.Device(nil), state.Devices[:len(state.Devices)-1]...)
	state.DeviceIndex--
	state.Current = Draft{}
	state.Step = StepAskDeviceType

	content := fmt.Sprintf("↩️ Last device removed! You now have %d/%d devices.\n\n",
		len(state.Devices), state.TargetCount) +
		devicePrompt(state.DeviceIndex + 1)
	return state, []Message{botMsg(content, typeOptions(state))}
}

func (c *Controller) handleQuantity(state State, input string) (State, []Message) {
	qty, err := parse.IntInRange(input, device.MinQuantity, device.MaxQuantity)
	if err != nil {
		return state, []Message{botMsg(
			fmt.Sprintf("Please enter a valid quantity (%d–%d).", device.MinQuantity, device.MaxQuantity),
			[]string{"1", "2", "3", "4", "5"})}
	}

	state.Current.Quantity = qty
	state.Step = StepAskWattage

	t := state.Current.Type
	content := fmt.Sprintf("Got it — %dx %s.\n\n", qty, t) +
		fmt.Sprintf("What's the wattage rating? The average for %s is about %dW.\n\n", t, t.DefaultWattage()) +
		"Type the wattage or just say 'auto' to use the default."
	return state, []Message{botMsg(content, wattageOptions(t))}
}

func (c *Controller) handleWattage(state State, input string) (State, []Message) {
	var wattage int
	if strings.EqualFold(input, keywordAuto) || strings.EqualFold(input, keywordDflt) {
		wattage = state.Current.Type.DefaultWattage()
	} else {
		w, err := parse.IntInRange(input, device.MinWattage, device.MaxWattage)
		if err != nil {
			return state, []Message{botMsg(
				fmt.Sprintf("Please enter a valid wattage (%d–%d) or type 'auto'.", device.MinWattage, device.MaxWattage),
				wattageOptions(state.Current.Type))}
		}
		wattage = w
	}

	state.Current.Wattage = wattage
	state.Step = StepAskHours

	content := fmt.Sprintf("⚡ %dW — noted!\n\n", wattage) +
		"How long do you use this device per day?\n\n" +
		"You can type:\n" +
		"• Hours: 2 or 0.5\n" +
		"• Minutes: 30m or 45min\n" +
		"• Both: 1h30m"
	return state, []Message{botMsg(content, hoursOptions())}
}

func (c *Controller) handleHours(ctx context.Context, state State, input string) (State, []Message) {
	hours, err := parse.Hours(input)
	if err != nil {
		return state, []Message{botMsg(
			"⚠️ Please enter a valid duration.\n\n"+
				"Examples: 2 (hours), 30m (minutes), 1h30m (mixed)\n"+
				"Range: 1 minute to 24 hours.",
			hoursOptions())}
	}

	d := device.New(c.newID(), state.Current.Type, state.Current.Quantity, state.Current.Wattage, hours)
	state.Devices = append(state.Devices[:len(state.Devices):len(state.Devices)], d)
	state.Current = Draft{}
	state.DeviceIndex++

	rawDaily := float64(d.Wattage) * float64(d.Quantity) * d.HoursPerDay / 1000
	added := fmt.Sprintf("✅ %s %s added!\n• Qty: %d | Wattage: %dW | Usage: %s/day\n",
		d.Type.Icon(), d.TypeName, d.Quantity, d.Wattage, device.FormatUsage(d.HoursPerDay))

	if state.DeviceIndex < state.TargetCount {
		state.Step = StepAskDeviceType
		content := added +
			fmt.Sprintf("• Daily: %.2f kWh | Monthly: %.2f kWh\n\n", rawDaily, rawDaily*calc.DaysInMonth) +
			devicePrompt(state.DeviceIndex+1)
		return state, []Message{botMsg(content, typeOptions(state))}
	}

	// Final device: calculate, persist and notify before returning, so
	// the result is complete by the time the caller sees it.
	state.Step = StepCalculating
	calculating := botMsg(added+
		fmt.Sprintf("\nAll %d devices added! Let me calculate your energy consumption... 🔄", state.TargetCount), nil)

	result := calc.Compute(state.Devices, state.Tariff.RatePerKwh, state.Tariff.Currency, state.Tariff.Country)

	if c.store != nil {
		if appendErr := c.store.Append(result); appendErr != nil {
			// History failures never interrupt the user-visible flow.
			log := logging.FromContext(ctx)
			log.Warn().
				Str("component", "dialogue").
				Err(appendErr).
				Msg("failed to persist calculation to history")
		}
	}
	if c.onResult != nil {
		c.onResult(result)
	}

	state.Result = &result
	state.Step = StepResult
	return state, []Message{calculating, botMsg(resultSummary(result), postResultOptions())}
}

func (c *Controller) handlePostResult(state State, input string) (State, []Message) {
	switch strings.ToLower(input) {
	case keywordReset:
		fresh := State{Step: StepAskDeviceCount, Tariff: state.Tariff}
		return fresh, []Message{botMsg(
			"🔄 Reset! Let's start fresh.\n\nHow many electrical devices do you use at home?",
			countOptions())}

	case keywordTips:
		state.Step = StepTips
		var b strings.Builder
		b.WriteString("💡 Energy Saving Tips:\n\n")
		for i, t := range tips.Static() {
			fmt.Fprintf(&b, "%d. %s %s — %s\n", i+1, t.Icon, t.Title, t.Description)
		}
		b.WriteString("\nType 'reset' to calculate again or ask me any electricity question!")
		return state, []Message{botMsg(b.String(), postResultOptions())}

	default:
		// Free-form question: hand off to the AI collaborator out of
		// band. The answer arrives as a plain appended message and does
		// not touch the transition table.
		state.Step = StepFreeAsk
		state.PendingQuestion = input
		return state, nil
	}
}

// Progress returns the collection progress in [0,100] for the UI's
// progress bar: four steps per device, pinned to 100 once calculated.
func (s State) Progress() float64 {
	if s.TargetCount == 0 {
		return 0
	}
	switch s.Step {
	case StepCalculating, StepResult, StepTips, StepFreeAsk:
		return 100
	}

	offset := 0
	switch s.Step {
	case StepAskQuantity:
		offset = 1
	case StepAskWattage:
		offset = 2
	case StepAskHours:
		offset = 3
	}

	const stepsPerDevice = 4
	total := float64(s.TargetCount * stepsPerDevice)
	done := float64(s.DeviceIndex*stepsPerDevice + offset)
	pct := done / total * 100
	if pct > 99 {
		pct = 99
	}
	return pct
}

// RunningMonthly returns the raw monthly kWh and cost of the devices
// collected so far, for the UI's running-total badge.
func (s State) RunningMonthly() (kwh, cost float64) {
	for _, d := range s.Devices {
		kwh += float64(d.Wattage) * float64(d.Quantity) * d.HoursPerDay / 1000 * calc.DaysInMonth
	}
	return kwh, kwh * s.Tariff.RatePerKwh
}

func botMsg(content string, options []string) Message {
	return Message{Role: RoleBot, Content: content, Options: options}
}

func devicePrompt(n int) string {
	return fmt.Sprintf("📱 Device #%d — What type of device is it?\n\nChoose from: %s", n, typeList())
}

func typeList() string {
	names := make([]string, 0, len(device.Types()))
	for _, t := range device.Types() {
		names = append(names, t.Icon()+" "+t.String())
	}
	return strings.Join(names, ", ")
}

func countOptions() []string {
	return []string{"1", "2", "3", "4", "5", "10"}
}

func typeOptions(state State) []string {
	opts := make([]string, 0, 16)
	if len(state.Devices) > 0 {
		opts = append(opts, "undo")
	}
	return append(opts, device.TypeNames()...)
}

func wattageOptions(t device.Type) []string {
	return []string{fmt.Sprintf("auto (%dW)", t.DefaultWattage()), "100", "500", "1000", "1500"}
}

func hoursOptions() []string {
	return []string{"15m", "30m", "45m", "1", "1h30m", "2", "4", "6", "8", "12", "24"}
}

func postResultOptions() []string {
	return []string{"reset", "tips"}
}

// resultSummary renders the final breakdown message.
func resultSummary(r calc.Result) string {
	var b strings.Builder
	b.WriteString("📊 Calculation Complete!\n\nDevice Breakdown:\n")
	for _, d := range r.Devices {
		fmt.Fprintf(&b, "%s %s (x%d): %.2f kWh — %s%.2f (%.2f%%)\n",
			d.Device.Type.Icon(), d.Device.TypeName, d.Device.Quantity,
			d.MonthlyKwh, r.Currency, d.MonthlyCost, d.Percentage)
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "⚡ Daily Usage: %.2f kWh\n", r.TotalDailyKwh)
	fmt.Fprintf(&b, "📅 Monthly Usage: %.2f kWh\n", r.TotalMonthlyKwh)
	fmt.Fprintf(&b, "💰 Estimated Monthly Cost: %s%.2f\n", r.Currency, r.TotalMonthlyCost)
	fmt.Fprintf(&b, "🌍 Rate: %s%g/kWh (%s)\n\n", r.Currency, r.RatePerKwh, r.Country)
	b.WriteString("Type 'reset' to calculate again, 'tips' for energy-saving advice, or ask me any electricity question! 💡")
	return b.String()
}
