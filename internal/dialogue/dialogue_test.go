package dialogue

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/logging"
	"github.com/Abhishek8211/energyiq/internal/rates"
)

func testController(t *testing.T) (*Controller, *history.MemoryStore) {
	t.Helper()
	store := history.NewMemoryStore(history.MaxEntries)
	c := NewController(store, nil)
	c.newID = func() string { return "test-id" }
	return c, store
}

func testTariff() rates.Tariff {
	return rates.Tariff{Country: "india", RatePerKwh: 8, Currency: "₹"}
}

// advance runs one transition and requires at least one bot message.
func advance(t *testing.T, c *Controller, state State, input string) (State, []Message) {
	t.Helper()
	next, msgs := c.Transition(context.Background(), state, input)
	require.NotEmpty(t, msgs, "input %q should produce a reply", input)
	return next, msgs
}

func TestStartGreeting(t *testing.T) {
	c, _ := testController(t)
	state, msgs := c.Start(testTariff())

	assert.Equal(t, StepAskDeviceCount, state.Step)
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleBot, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "EnergyIQ")
	assert.Contains(t, msgs[0].Options, "5")
}

func TestDeviceCountValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStep  Step
		wantCount int
	}{
		{name: "valid", input: "3", wantStep: StepAskDeviceType, wantCount: 3},
		{name: "lower boundary", input: "1", wantStep: StepAskDeviceType, wantCount: 1},
		{name: "upper boundary", input: "50", wantStep: StepAskDeviceType, wantCount: 50},
		{name: "zero rejected", input: "0", wantStep: StepAskDeviceCount},
		{name: "over cap rejected", input: "51", wantStep: StepAskDeviceCount},
		{name: "garbage rejected", input: "many", wantStep: StepAskDeviceCount},
		{name: "empty rejected", input: "", wantStep: StepAskDeviceCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testController(t)
			state, _ := c.Start(testTariff())

			next, msgs := advance(t, c, state, tt.input)
			assert.Equal(t, tt.wantStep, next.Step)
			assert.Equal(t, tt.wantCount, next.TargetCount)
			if tt.wantStep == StepAskDeviceCount {
				assert.Contains(t, msgs[0].Content, "valid number")
			}
		})
	}
}

func TestInvalidInputKeepsCollectedDevices(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "2")
	state, _ = advance(t, c, state, "Fan")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "auto")
	state, _ = advance(t, c, state, "8")
	require.Len(t, state.Devices, 1)

	// Bad type on the second device must not disturb the first.
	next, msgs := advance(t, c, state, "Flux Capacitor")
	assert.Equal(t, StepAskDeviceType, next.Step)
	assert.Len(t, next.Devices, 1)
	assert.Contains(t, msgs[0].Content, "don't recognize")
}

func TestQuantityAndWattageBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		wattage  string
		wantStep Step
	}{
		{name: "all valid", quantity: "100", wattage: "50000", wantStep: StepAskHours},
		{name: "min valid", quantity: "1", wattage: "1", wantStep: StepAskHours},
		{name: "quantity zero", quantity: "0", wattage: "", wantStep: StepAskQuantity},
		{name: "quantity over", quantity: "101", wattage: "", wantStep: StepAskQuantity},
		{name: "wattage zero", quantity: "2", wattage: "0", wantStep: StepAskWattage},
		{name: "wattage over", quantity: "2", wattage: "50001", wantStep: StepAskWattage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testController(t)
			state, _ := c.Start(testTariff())
			state, _ = advance(t, c, state, "1")
			state, _ = advance(t, c, state, "TV")

			state, _ = advance(t, c, state, tt.quantity)
			if tt.wattage != "" {
				state, _ = advance(t, c, state, tt.wattage)
			}
			assert.Equal(t, tt.wantStep, state.Step)
		})
	}
}

func TestAutoWattageUsesDefault(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "AC")
	state, _ = advance(t, c, state, "1")

	state, msgs := advance(t, c, state, "auto")
	assert.Equal(t, StepAskHours, state.Step)
	assert.Equal(t, 1500, state.Current.Wattage)
	assert.Contains(t, msgs[0].Content, "1500W")
}

func TestHoursValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantHours float64
		wantOK    bool
	}{
		{name: "bare hours", input: "2", wantHours: 2, wantOK: true},
		{name: "hours suffix", input: "2h", wantHours: 2, wantOK: true},
		{name: "minutes only", input: "90m", wantHours: 1.5, wantOK: true},
		{name: "mixed", input: "1h30m", wantHours: 1.5, wantOK: true},
		{name: "one minute", input: "1m", wantHours: 0.02, wantOK: true},
		{name: "full day", input: "24", wantHours: 24, wantOK: true},
		{name: "zero rejected", input: "0", wantOK: false},
		{name: "over a day rejected", input: "25", wantOK: false},
		{name: "garbage rejected", input: "sometimes", wantOK: false},
		{name: "nan rejected", input: "nan", wantOK: false},
		{name: "inf rejected", input: "inf", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testController(t)
			state, _ := c.Start(testTariff())
			state, _ = advance(t, c, state, "1")
			state, _ = advance(t, c, state, "Fan")
			state, _ = advance(t, c, state, "1")
			state, _ = advance(t, c, state, "auto")

			next, msgs := advance(t, c, state, tt.input)
			if !tt.wantOK {
				assert.Equal(t, StepAskHours, next.Step)
				assert.Contains(t, msgs[0].Content, "valid duration")
				return
			}
			assert.Equal(t, StepResult, next.Step)
			require.Len(t, next.Devices, 1)
			assert.InDelta(t, tt.wantHours, next.Devices[0].HoursPerDay, 0.001)
		})
	}
}

func TestUndoRemovesLastDevice(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "3")
	state, _ = advance(t, c, state, "Fan")
	state, _ = advance(t, c, state, "2")
	state, _ = advance(t, c, state, "auto")
	state, _ = advance(t, c, state, "8")
	require.Len(t, state.Devices, 1)
	require.Equal(t, 1, state.DeviceIndex)

	state, msgs := advance(t, c, state, "undo")
	assert.Equal(t, StepAskDeviceType, state.Step)
	assert.Empty(t, state.Devices)
	assert.Equal(t, 0, state.DeviceIndex)
	assert.Contains(t, msgs[0].Content, "Last device removed")
	assert.Contains(t, msgs[0].Content, "0/3 devices")

	// Re-collection continues normally after the undo.
	state, _ = advance(t, c, state, "TV")
	assert.Equal(t, StepAskQuantity, state.Step)
}

func TestUndoWithNoDevices(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "2")

	next, msgs := advance(t, c, state, "undo")
	assert.Equal(t, StepAskDeviceType, next.Step)
	assert.Empty(t, next.Devices)
	assert.Contains(t, msgs[0].Content, "nothing to undo")
	assert.NotContains(t, msgs[0].Options, "undo")
}

func TestUndoOptionOnlyAfterFirstDevice(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, msgs := advance(t, c, state, "2")
	assert.NotContains(t, msgs[0].Options, "undo")

	state, _ = advance(t, c, state, "Fan")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "auto")
	_, msgs = advance(t, c, state, "4")
	assert.Contains(t, msgs[0].Options, "undo")
}

func TestFullConversation(t *testing.T) {
	c, store := testController(t)
	var notified *calc.Result
	c.onResult = func(r calc.Result) { notified = &r }

	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "AC")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "1500")

	state, msgs := advance(t, c, state, "4")
	require.Equal(t, StepResult, state.Step)
	require.NotNil(t, state.Result)

	// 1500W x 1 x 4h = 6 kWh/day, 180 kWh/mo, ₹1440 at ₹8/kWh.
	assert.InDelta(t, 6.0, state.Result.TotalDailyKwh, 0.001)
	assert.InDelta(t, 180.0, state.Result.TotalMonthlyKwh, 0.001)
	assert.InDelta(t, 1440.0, state.Result.TotalMonthlyCost, 0.001)

	// Calculating notice followed by the summary.
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "calculate")
	assert.Contains(t, msgs[1].Content, "Calculation Complete")
	assert.Contains(t, msgs[1].Content, "180.00 kWh")
	assert.Contains(t, msgs[1].Content, "₹1440.00")

	// Persist and notify happen before the result message is visible.
	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, state.Result.ID, entries[0].ID)
	require.NotNil(t, notified)
	assert.Equal(t, state.Result.ID, notified.ID)
}

func TestPercentageShares(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "2")

	// 1500W x 4h = 6 kWh/day vs 500W x 4h = 2 kWh/day: a 75/25 split.
	state, _ = advance(t, c, state, "AC")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "1500")
	state, _ = advance(t, c, state, "4")

	state, _ = advance(t, c, state, "Washing Machine")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "auto")
	state, _ = advance(t, c, state, "4")

	require.NotNil(t, state.Result)
	require.Len(t, state.Result.Devices, 2)
	assert.InDelta(t, 75.0, state.Result.Devices[0].Percentage, 0.001)
	assert.InDelta(t, 25.0, state.Result.Devices[1].Percentage, 0.001)
}

func TestPostResultCommands(t *testing.T) {
	finish := func(t *testing.T) (*Controller, State) {
		c, _ := testController(t)
		state, _ := c.Start(testTariff())
		state, _ = advance(t, c, state, "1")
		state, _ = advance(t, c, state, "Fan")
		state, _ = advance(t, c, state, "1")
		state, _ = advance(t, c, state, "auto")
		state, _ = advance(t, c, state, "8")
		require.Equal(t, StepResult, state.Step)
		return c, state
	}

	t.Run("reset starts over with the same tariff", func(t *testing.T) {
		c, state := finish(t)
		next, msgs := advance(t, c, state, "reset")
		assert.Equal(t, StepAskDeviceCount, next.Step)
		assert.Empty(t, next.Devices)
		assert.Nil(t, next.Result)
		assert.Equal(t, testTariff(), next.Tariff)
		assert.Contains(t, msgs[0].Content, "start fresh")
	})

	t.Run("tips lists the static pool", func(t *testing.T) {
		c, state := finish(t)
		next, msgs := advance(t, c, state, "tips")
		assert.Equal(t, StepTips, next.Step)
		assert.Contains(t, msgs[0].Content, "Energy Saving Tips")
		assert.Contains(t, msgs[0].Content, "LED")
		assert.NotNil(t, next.Result, "tips must keep the result available")
	})

	t.Run("free question becomes a pending question", func(t *testing.T) {
		c, state := finish(t)
		next, msgs := c.Transition(context.Background(), state, "Why is my bill so high?")
		assert.Equal(t, StepFreeAsk, next.Step)
		assert.Equal(t, "Why is my bill so high?", next.PendingQuestion)
		assert.Empty(t, msgs, "the answer arrives out of band")
		assert.NotNil(t, next.Result)
	})

	t.Run("reset still works from free-ask mode", func(t *testing.T) {
		c, state := finish(t)
		state, _ = c.Transition(context.Background(), state, "what is a kWh?")
		require.Equal(t, StepFreeAsk, state.Step)
		next, _ := advance(t, c, state, "reset")
		assert.Equal(t, StepAskDeviceCount, next.Step)
	})
}

func TestDeterministicRecalculation(t *testing.T) {
	run := func() calc.Result {
		c, _ := testController(t)
		state, _ := c.Start(testTariff())
		state, _ = advance(t, c, state, "2")
		for _, in := range []string{"AC", "2", "1500", "6", "Fan", "3", "75", "12"} {
			state, _ = advance(t, c, state, in)
		}
		require.NotNil(t, state.Result)
		return *state.Result
	}

	a, b := run(), run()
	assert.Equal(t, a.TotalDailyKwh, b.TotalDailyKwh)
	assert.Equal(t, a.TotalMonthlyKwh, b.TotalMonthlyKwh)
	assert.Equal(t, a.TotalMonthlyCost, b.TotalMonthlyCost)
	for i := range a.Devices {
		assert.Equal(t, a.Devices[i].MonthlyKwh, b.Devices[i].MonthlyKwh)
		assert.Equal(t, a.Devices[i].Percentage, b.Devices[i].Percentage)
	}
}

func TestProgress(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	assert.Zero(t, state.Progress())

	state, _ = advance(t, c, state, "2")
	assert.Zero(t, state.Progress())

	state, _ = advance(t, c, state, "AC")
	assert.InDelta(t, 12.5, state.Progress(), 0.001)

	state, _ = advance(t, c, state, "1")
	assert.InDelta(t, 25.0, state.Progress(), 0.001)

	state, _ = advance(t, c, state, "auto")
	assert.InDelta(t, 37.5, state.Progress(), 0.001)

	state, _ = advance(t, c, state, "4")
	assert.InDelta(t, 50.0, state.Progress(), 0.001)

	for _, in := range []string{"Fan", "1", "auto", "4"} {
		state, _ = advance(t, c, state, in)
	}
	assert.Equal(t, float64(100), state.Progress())
}

func TestRunningMonthly(t *testing.T) {
	c, _ := testController(t)
	state, _ := c.Start(testTariff())
	state, _ = advance(t, c, state, "2")
	state, _ = advance(t, c, state, "AC")
	state, _ = advance(t, c, state, "1")
	state, _ = advance(t, c, state, "1000")
	state, _ = advance(t, c, state, "3")

	kwh, cost := state.RunningMonthly()
	assert.InDelta(t, 90.0, kwh, 0.001)
	assert.InDelta(t, 720.0, cost, 0.001)
}

func TestStepString(t *testing.T) {
	for _, tt := range []struct {
		step Step
		want string
	}{
		{StepGreeting, "greeting"},
		{StepAskDeviceCount, "ask_device_count"},
		{StepAskHours, "ask_hours"},
		{StepResult, "result"},
		{StepFreeAsk, "free_ask"},
	} {
		assert.Equal(t, tt.want, tt.step.String())
	}
	assert.True(t, strings.HasPrefix(Step(99).String(), "Step("))
}

func TestHistoryFailureDoesNotBlockResult(t *testing.T) {
	c := NewController(failingStore{}, nil)
	c.newID = func() string { return "test-id" }

	var logBuf bytes.Buffer
	ctx := logging.WithContext(context.Background(), zerolog.New(&logBuf))

	state, _ := c.Start(testTariff())
	for _, in := range []string{"1", "TV", "1", "auto", "4"} {
		var msgs []Message
		state, msgs = c.Transition(ctx, state, in)
		require.NotEmpty(t, msgs)
	}
	assert.Equal(t, StepResult, state.Step)
	assert.NotNil(t, state.Result)
	assert.Contains(t, logBuf.String(), "failed to persist calculation")
}

type failingStore struct{}

func (failingStore) Append(calc.Result) error     { return assert.AnError }
func (failingStore) List() ([]calc.Result, error) { return nil, assert.AnError }
func (failingStore) Remove(string) error          { return assert.AnError }
func (failingStore) Clear() error                 { return assert.AnError }
