package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek8211/energyiq/internal/dialogue"
	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/rates"
)

func testTariff() rates.Tariff {
	return rates.Tariff{Country: "India", RatePerKwh: 8, Currency: "₹"}
}

func newTestModel(t *testing.T, askFn AskFunc) *ChatModel {
	t.Helper()
	if askFn == nil {
		askFn = func(ctx context.Context, q string) (string, string, error) {
			return "canned answer", "fallback", nil
		}
	}
	controller := dialogue.NewController(history.NewMemoryStore(0), nil)
	return NewChatModel(context.Background(), controller, testTariff(), askFn)
}

// typeAndEnter feeds text into the model one rune at a time, then enter.
func typeAndEnter(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestNewChatModelShowsGreeting(t *testing.T) {
	m := newTestModel(t, nil)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].Content, "EnergyIQ")
	assert.Equal(t, ChatStateCollecting, m.chatState)
	assert.Contains(t, m.View(), "EnergyIQ")
}

func TestSubmitAdvancesDialogue(t *testing.T) {
	var m tea.Model = newTestModel(t, nil)
	m = typeAndEnter(m, "2")

	cm := m.(*ChatModel)
	assert.Equal(t, dialogue.StepAskDeviceType, cm.state.Step)
	// Greeting, user echo, next prompt.
	require.Len(t, cm.messages, 3)
	assert.Equal(t, dialogue.RoleUser, cm.messages[1].Role)
	assert.Equal(t, "2", cm.messages[1].Content)
}

func TestBlankSubmitIgnored(t *testing.T) {
	var m tea.Model = newTestModel(t, nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	cm := m.(*ChatModel)
	assert.Len(t, cm.messages, 1, "no user message appended")
	assert.Equal(t, dialogue.StepAskDeviceCount, cm.state.Step)
}

func TestWindowResize(t *testing.T) {
	var m tea.Model = newTestModel(t, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	cm := m.(*ChatModel)
	assert.True(t, cm.ready)
	assert.Equal(t, 100, cm.viewport.Width)
	assert.Equal(t, 40-chromeHeight, cm.viewport.Height)
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		var m tea.Model = newTestModel(t, nil)
		m, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd, "key %v", key)
		assert.Equal(t, ChatStateQuitting, m.(*ChatModel).chatState)
		assert.Empty(t, m.View())
	}
}

func TestFreeQuestionDispatchesAsk(t *testing.T) {
	asked := ""
	askFn := func(ctx context.Context, q string) (string, string, error) {
		asked = q
		return "because of your AC", "ai", nil
	}

	var m tea.Model = newTestModel(t, askFn)
	for _, in := range []string{"1", "Fan", "1", "auto", "8"} {
		m = typeAndEnter(m, in)
	}
	require.Equal(t, dialogue.StepResult, m.(*ChatModel).state.Step)

	// A free-form question flips the model into the waiting state and
	// hands the question to the ask command.
	for _, r := range "why is my bill high" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := m.(*ChatModel)
	assert.Equal(t, ChatStateAwaitingAnswer, cm.chatState)
	assert.Empty(t, cm.state.PendingQuestion, "question is consumed on dispatch")
	require.NotNil(t, cmd)

	// Run the batched command to completion and feed the answer back.
	msg := runCmd(cmd)
	require.NotNil(t, msg)
	m, _ = m.Update(msg)

	cm = m.(*ChatModel)
	assert.Equal(t, "why is my bill high", asked)
	assert.Equal(t, ChatStateCollecting, cm.chatState)
	last := cm.messages[len(cm.messages)-1]
	assert.Equal(t, dialogue.RoleBot, last.Role)
	assert.Equal(t, "because of your AC", last.Content)
}

// runCmd executes a command tree and returns the first answerMsg found.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if found := runCmd(sub); found != nil {
				return found
			}
		}
		return nil
	}
	if _, ok := msg.(answerMsg); ok {
		return msg
	}
	return nil
}

func TestAnswerErrorShowsApology(t *testing.T) {
	m := newTestModel(t, nil)
	model, _ := m.handleAnswer(answerMsg{err: assert.AnError})

	cm := model.(*ChatModel)
	last := cm.messages[len(cm.messages)-1]
	assert.Contains(t, last.Content, "something went wrong")
	assert.Equal(t, ChatStateCollecting, cm.chatState)
}

func TestEnterIgnoredWhileWaiting(t *testing.T) {
	m := newTestModel(t, nil)
	m.chatState = ChatStateAwaitingAnswer

	var model tea.Model = m
	model = typeAndEnter(model, "5")
	cm := model.(*ChatModel)
	assert.Equal(t, dialogue.StepAskDeviceCount, cm.state.Step, "submissions blocked while waiting")
}

func TestCurrentOptions(t *testing.T) {
	var m tea.Model = newTestModel(t, nil)
	opts := m.(*ChatModel).currentOptions()
	assert.Contains(t, opts, "5", "greeting offers count options")

	m = typeAndEnter(m, "2")
	opts = m.(*ChatModel).currentOptions()
	assert.Contains(t, opts, "AC", "type step offers device names")
}

func TestRenderProgressBar(t *testing.T) {
	assert.Contains(t, renderProgressBar(0, 10), "0%")
	assert.Contains(t, renderProgressBar(100, 10), "100%")
	assert.Empty(t, renderProgressBar(50, 0))
}

func TestRenderTranscriptBothRoles(t *testing.T) {
	out := renderTranscript([]dialogue.Message{
		{Role: dialogue.RoleBot, Content: "hello there"},
		{Role: dialogue.RoleUser, Content: "hi bot"},
	}, 80)
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "hi bot")
	assert.Contains(t, out, "You")
}

func TestRenderOptionsOverflow(t *testing.T) {
	opts := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	out := renderOptions(opts, 120)
	assert.Contains(t, out, "+2 more")
}
