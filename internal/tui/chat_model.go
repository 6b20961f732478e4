// Package tui implements the interactive chat interface with Bubble Tea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Abhishek8211/energyiq/internal/dialogue"
	"github.com/Abhishek8211/energyiq/internal/rates"
)

// ChatState represents the current state of the chat TUI.
type ChatState int

const (
	// ChatStateCollecting indicates the dialogue is gathering input.
	ChatStateCollecting ChatState = iota
	// ChatStateAwaitingAnswer indicates an AI answer is in flight.
	ChatStateAwaitingAnswer
	// ChatStateQuitting indicates the application is exiting.
	ChatStateQuitting
)

// answerMsg is sent when an out-of-band AI answer completes.
type answerMsg struct {
	answer string
	source string
	err    error
}

// Default dimensions before the first WindowSizeMsg arrives.
const (
	chatDefaultWidth  = 80
	chatDefaultHeight = 24

	// chromeHeight is the vertical space reserved for the header,
	// options row and input line around the viewport.
	chromeHeight = 7
)

// AskFunc answers a free-form question, returning the answer text and
// its source label.
type AskFunc func(ctx context.Context, question string) (answer, source string, err error)

// ChatModel is the Bubble Tea model for the conversational calculator.
type ChatModel struct {
	ctx        context.Context
	controller *dialogue.Controller
	state      dialogue.State
	messages   []dialogue.Message

	askFn AskFunc

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	chatState ChatState
	width     int
	height    int
	ready     bool
}

// NewChatModel starts a conversation under tariff and returns the model.
// askFn handles free-form questions; it must not be nil.
func NewChatModel(ctx context.Context, controller *dialogue.Controller, tariff rates.Tariff, askFn AskFunc) *ChatModel {
	state, msgs := controller.Start(tariff)

	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = MutedStyle

	m := &ChatModel{
		ctx:        ctx,
		controller: controller,
		state:      state,
		messages:   msgs,
		askFn:      askFn,
		input:      ti,
		viewport:   viewport.New(chatDefaultWidth, chatDefaultHeight-chromeHeight),
		spinner:    sp,
		width:      chatDefaultWidth,
		height:     chatDefaultHeight,
	}
	m.refreshViewport()
	return m
}

// Init initializes the model.
func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = maxInt(msg.Height-chromeHeight, 3)
		m.ready = true
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.chatState != ChatStateAwaitingAnswer {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		return m.handleAnswer(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ChatModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.chatState = ChatStateQuitting
		return m, tea.Quit

	case tea.KeyEnter:
		if m.chatState == ChatStateAwaitingAnswer {
			return m, nil
		}
		return m.submitInput()

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ChatModel) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	m.messages = append(m.messages, dialogue.Message{Role: dialogue.RoleUser, Content: text})

	state, replies := m.controller.Transition(m.ctx, m.state, text)
	m.state = state
	m.messages = append(m.messages, replies...)

	if question := m.state.PendingQuestion; question != "" {
		m.state.PendingQuestion = ""
		m.chatState = ChatStateAwaitingAnswer
		m.refreshViewport()
		return m, tea.Batch(m.spinner.Tick, m.askCmd(question))
	}

	m.refreshViewport()
	return m, nil
}

// askCmd dispatches the AI call off the update loop; the answer comes
// back as an answerMsg and is appended without touching the dialogue
// position.
func (m *ChatModel) askCmd(question string) tea.Cmd {
	ctx := m.ctx
	askFn := m.askFn

	return func() tea.Msg {
		answer, source, err := askFn(ctx, question)
		return answerMsg{answer: answer, source: source, err: err}
	}
}

func (m *ChatModel) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.chatState = ChatStateCollecting

	content := msg.answer
	if msg.err != nil {
		content = "Sorry, something went wrong answering that. Please try again."
	}
	m.messages = append(m.messages, dialogue.Message{Role: dialogue.RoleBot, Content: content})
	m.refreshViewport()
	return m, nil
}

func (m *ChatModel) refreshViewport() {
	m.viewport.SetContent(renderTranscript(m.messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the current view.
func (m *ChatModel) View() string {
	if m.chatState == ChatStateQuitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderHeader(m.state, m.width))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if opts := m.currentOptions(); len(opts) > 0 {
		b.WriteString(renderOptions(opts, m.width))
		b.WriteString("\n")
	}

	if m.chatState == ChatStateAwaitingAnswer {
		b.WriteString(" " + m.spinner.View() + MutedStyle.Render(" thinking..."))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(" enter: send · esc: quit"))
	return b.String()
}

// currentOptions returns the quick replies of the latest bot message.
func (m *ChatModel) currentOptions() []string {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == dialogue.RoleBot {
			return m.messages[i].Options
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
