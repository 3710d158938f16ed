// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbubbles/internal/input"
	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/surface"
	"github.com/jeranaias/chatbubbles/internal/transcript"
	"github.com/jeranaias/chatbubbles/internal/turn"
	"github.com/jeranaias/chatbubbles/internal/ui/components"
	"github.com/jeranaias/chatbubbles/internal/ui/styles"
)

// Rows taken by everything except the canvas. Keep in sync with View.
const (
	headerHeight = 1
	inputHeight  = 3
	inputChrome  = 2 // rounded border
	statusHeight = 1

	wheelLines = 3
)

// Options wires a Model to an already assembled core.
type Options struct {
	Title        string
	FirstMessage *string
	// Badge describes the responder in the header, e.g. "ollama llama3.2".
	Badge string

	Coordinator *turn.Coordinator
	Gateway     *input.Gateway
	Engine      *layout.Engine
	Canvas      *surface.Canvas
	Theme       *styles.Theme

	Mouse  bool
	Logger *slog.Logger
}

// status is shared by every copy of the Model so coordinator hooks can
// update it.
type status struct {
	notice string
	err    string
}

// Model is the Bubble Tea model of the chat window.
type Model struct {
	title        string
	firstMessage *string

	coord   *turn.Coordinator
	gateway *input.Gateway
	engine  *layout.Engine
	canvas  *surface.Canvas
	theme   *styles.Theme
	log     *slog.Logger

	keys      KeyMap
	input     textarea.Model
	spinner   spinner.Model
	header    *components.Header
	statusBar *components.StatusBar
	mouse     bool

	width   int
	height  int
	started bool
	status  *status
}

// New creates the chat model.
func New(opts Options) (Model, error) {
	if opts.Coordinator == nil || opts.Gateway == nil || opts.Engine == nil || opts.Canvas == nil {
		return Model{}, errors.New("chat: coordinator, gateway, engine and canvas are required")
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	// Enter submits; newlines come from KeyMap.Newline.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(styles.TypingSpinner.Spinner()))

	header := components.NewHeader(opts.Theme, opts.Title)
	header.Badge = opts.Badge

	st := &status{}
	canvas := opts.Canvas
	opts.Coordinator.OnPlaced(func(transcript.Message, layout.BubbleLayout) {
		canvas.ScrollToBottom()
	})
	opts.Coordinator.OnError(func(err error) {
		st.err = err.Error()
	})
	// Idle is only ever entered on the UI goroutine.
	opts.Coordinator.OnStateChange(func(s turn.State) {
		if s == turn.Idle {
			st.notice = ""
		}
	})

	return Model{
		title:        opts.Title,
		firstMessage: opts.FirstMessage,
		coord:        opts.Coordinator,
		gateway:      opts.Gateway,
		engine:       opts.Engine,
		canvas:       opts.Canvas,
		theme:        opts.Theme,
		log:          opts.Logger,
		keys:         DefaultKeyMap(),
		input:        ta,
		spinner:      sp,
		header:       header,
		statusBar:    components.NewStatusBar(opts.Theme),
		mouse:        opts.Mouse,
		status:       st,
	}, nil
}

// Init sets the window title and starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(m.title), textarea.Blink)
}

// Update handles a Bubble Tea message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case uiTaskMsg:
		msg.fn()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		// Let the tick chain die while idle; submit restarts it.
		if !m.coord.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SettingsMsg:
		m.applySettings(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	rows := m.height - headerHeight - inputHeight - inputChrome - statusHeight
	if rows < 1 {
		rows = 1
	}
	m.canvas.Resize(m.width, rows)

	inputWidth := m.width - inputChrome
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	// The first bubble waits for a real width.
	if !m.started {
		m.started = true
		if err := m.coord.Start(m.firstMessage); err != nil {
			m.log.Error("start failed", "error", err)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit("interrupt")

	case key.Matches(msg, m.keys.Newline):
		input.InsertNewline(&m.input)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.canvas.ScrollLines(-m.pageRows())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.canvas.ScrollLines(m.pageRows())
		return m, nil

	case key.Matches(msg, m.keys.LineUp):
		m.canvas.ScrollLines(-1)
		return m, nil

	case key.Matches(msg, m.keys.LineDown):
		m.canvas.ScrollLines(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.mouse {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.canvas.ScrollLines(-wheelLines)
	case tea.MouseButtonWheelDown:
		m.canvas.ScrollLines(wheelLines)
	}
	return m, nil
}

// submit sends the input box through the gateway. Nothing is accepted
// before the first size arrives and the welcome bubble is drawn; the text
// stays in the box.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.started {
		m.log.Debug("submission held until first resize")
		return m, nil
	}
	res := m.gateway.SubmitFrom(&m.input)

	switch res.Outcome {
	case input.Terminated:
		return m.quit("termination token")

	case input.Rejected:
		// Blank input is ignored without comment.
		if !errors.Is(res.Reason, input.ErrEmptyInput) {
			m.status.notice = res.Reason.Error()
		}
		return m, nil
	}

	m.status.notice = ""
	m.status.err = ""
	m.canvas.ScrollToBottom()
	return m, m.spinner.Tick
}

// quit closes the coordinator and ends the program. Joining the responder
// goroutines is left to whoever runs the program.
func (m Model) quit(reason string) (tea.Model, tea.Cmd) {
	m.log.Info("quit requested", "reason", reason)
	m.coord.Close()
	return m, tea.Quit
}

func (m *Model) applySettings(msg SettingsMsg) {
	if msg.TerminationToken != "" {
		m.gateway.SetTerminationToken(msg.TerminationToken)
	}
	if msg.Theme != "" && msg.Theme != m.theme.Mode {
		m.theme = styles.NewTheme(msg.Theme)
		m.engine.SetDecor(m.theme.Decor())
		m.header.SetTheme(m.theme)
		m.statusBar.SetTheme(m.theme)
	}
	m.log.Info("settings applied", "theme", m.theme.Mode, "token_changed", msg.TerminationToken != "")
}

func (m Model) pageRows() int {
	_, rows := m.canvas.Size()
	if rows > 1 {
		return rows - 1
	}
	return 1
}

// =============================================================================
// ACCESSORS
// =============================================================================

// InputValue returns the current contents of the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// Notice returns the status bar notice, such as a busy rejection.
func (m Model) Notice() string {
	return m.status.notice
}

// LastError returns the last render error shown in the status bar.
func (m Model) LastError() string {
	return m.status.err
}

// Theme returns the active theme.
func (m Model) Theme() *styles.Theme {
	return m.theme
}
