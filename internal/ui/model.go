package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/token-explorer/internal/session"
	"github.com/atomicstack/token-explorer/internal/theme"
	"github.com/atomicstack/token-explorer/internal/ui/command"
	uistate "github.com/atomicstack/token-explorer/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Mode int

const (
	ModeExplore Mode = iota
	ModeEdit
	ModeSearch
)

const appTitle = "token-explorer"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures the driver.
type Options struct {
	Width         int
	Height        int
	ShowFooter    bool
	MaxPrompts    int
	ContinueDelay time.Duration
	MaxContinue   int
}

// Model implements the Bubble Tea model for a token exploration session.
type Model struct {
	sess *session.Session
	bus  *command.Bus
	opts Options

	mode   Mode
	keys   keyMap
	help   help.Model
	editor textarea.Model
	search textinput.Model
	spin   spinner.Model

	bases       *uistate.Bases
	viewport    uistate.Viewport
	lastVisible int

	showNumbers bool
	showProbs   bool

	loop    *continueLoop
	loopSeq int

	errMsg      string
	infoMsg     string
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	quitting    bool

	handlers map[reflect.Type]msgHandler
}

// NewModel wraps sess in a driver. The session's current prompt becomes the
// base prompt of its first buffer.
func NewModel(sess *session.Session, opts Options) *Model {
	m := &Model{
		sess:  sess,
		bus:   command.New(),
		opts:  opts,
		mode:  ModeExplore,
		keys:  defaultKeyMap(),
		help:  help.New(),
		bases: uistate.NewBases(currentBase(sess)),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
		m.help.Width = opts.Width
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	m.editor = textarea.New()
	m.editor.Placeholder = "Type a prompt"
	m.editor.ShowLineNumbers = false
	m.editor.SetHeight(3)
	m.editor.Cursor.SetMode(cursor.CursorStatic)

	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "filter candidates"
	m.search.PromptStyle = *styles.FilterPrompt
	m.search.TextStyle = *styles.Filter
	m.search.PlaceholderStyle = *styles.FilterPlaceholder
	m.search.Cursor.SetMode(cursor.CursorStatic)

	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(*styles.Busy))

	m.registerHandlers()
	return m
}

func currentBase(sess *session.Session) uistate.Base {
	return uistate.Base{Text: sess.Prompt(), Tokens: sess.PromptTokens()}
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle(appTitle)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, m.forwardToEntry(msg)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(continueStepMsg{}):   m.handleContinueStepMsg,
		reflect.TypeOf(spinner.TickMsg{}):   m.handleSpinnerTickMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size := msg.(tea.WindowSizeMsg)
	if !m.fixedWidth {
		m.width = size.Width
		m.help.Width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	if m.width > 0 {
		m.editor.SetWidth(m.width)
		m.search.Width = max(m.width-2, 1)
	}
	return nil
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	if m.loop == nil {
		return nil
	}
	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return cmd
}

// forwardToEntry hands unrouted messages to the active text widget.
func (m *Model) forwardToEntry(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case ModeEdit:
		m.editor, cmd = m.editor.Update(msg)
	case ModeSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return cmd
}

// Session exposes the driven session.
func (m *Model) Session() *session.Session {
	return m.sess
}

// Mode reports the current input mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// Continuing reports whether the continue loop is active.
func (m *Model) Continuing() bool {
	return m.loop != nil
}

func (m *Model) setError(err error) {
	m.errMsg = err.Error()
	m.infoMsg = ""
}

func (m *Model) setInfo(info string) {
	m.infoMsg = info
	m.errMsg = ""
}

func (m *Model) clearStatus() {
	m.errMsg = ""
	m.infoMsg = ""
}
