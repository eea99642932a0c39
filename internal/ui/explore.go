package ui

import (
	"fmt"
	"strconv"

	"github.com/atomicstack/token-explorer/internal/logging"
	"github.com/atomicstack/token-explorer/internal/logging/events"
	"github.com/atomicstack/token-explorer/internal/ui/command"
	uistate "github.com/atomicstack/token-explorer/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg := msg.(tea.KeyMsg)
	switch m.mode {
	case ModeEdit:
		return m.handleEditKey(keyMsg)
	case ModeSearch:
		return m.handleSearchKey(keyMsg)
	}
	return m.handleExploreKey(keyMsg)
}

func (m *Model) handleExploreKey(msg tea.KeyMsg) tea.Cmd {
	// keys that stay live while the continue loop runs
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Cancel):
		if m.loop != nil {
			m.stopContinue(events.ContinueReasonCancel)
			return nil
		}
		return m.quit()
	case key.Matches(msg, m.keys.Continue):
		if m.loop != nil {
			m.stopContinue(events.ContinueReasonCancel)
			return nil
		}
		return m.startContinue()
	case key.Matches(msg, m.keys.Numbers):
		m.showNumbers = !m.showNumbers
		return nil
	case key.Matches(msg, m.keys.Probability):
		m.showProbs = !m.showProbs
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	if m.loop != nil {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.sess.SelectPrevToken()
	case key.Matches(msg, m.keys.Down):
		m.sess.SelectNextToken()
	case key.Matches(msg, m.keys.PageUp):
		for i := 0; i < uistate.PageSize(len(m.sess.DisplayedTokens), m.lastVisible); i++ {
			if !m.sess.SelectPrevToken() {
				break
			}
		}
	case key.Matches(msg, m.keys.PageDown):
		for i := 0; i < uistate.PageSize(len(m.sess.DisplayedTokens), m.lastVisible); i++ {
			if !m.sess.SelectNextToken() {
				break
			}
		}
	case key.Matches(msg, m.keys.Append):
		m.appendSelected()
	case key.Matches(msg, m.keys.Weighted):
		m.appendWeighted()
	case key.Matches(msg, m.keys.Delete):
		m.deleteLast()
	case key.Matches(msg, m.keys.DeleteAll):
		m.deleteAll()
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Search):
		return m.startSearch()
	case key.Matches(msg, m.keys.NextBuffer):
		m.switchBuffer(true)
	case key.Matches(msg, m.keys.PrevBuffer):
		m.switchBuffer(false)
	case key.Matches(msg, m.keys.AddBuffer):
		m.addBuffer()
	case key.Matches(msg, m.keys.DropBuffer):
		m.dropBuffer()
	default:
		return nil
	}
	m.syncViewport()
	return nil
}

func (m *Model) quit() tea.Cmd {
	if m.loop != nil {
		m.stopContinue(events.ContinueReasonCancel)
	}
	m.quitting = true
	return tea.Quit
}

// run executes req on the bus and records the outcome on the status line.
// It reports whether the command was applied.
func (m *Model) run(req command.Request, rejected string) bool {
	res := m.bus.Execute(req)
	switch {
	case res.Err != nil:
		logging.Error(res.Err)
		m.setError(res.Err)
		return false
	case res.Rejected():
		if rejected != "" {
			m.setInfo(rejected)
		}
		return false
	}
	m.clearStatus()
	return true
}

func (m *Model) appendSelected() {
	cand, ok := m.sess.Selected()
	if !ok {
		m.setInfo("no candidates to append")
		return
	}
	if m.run(command.Request{ID: "append-selected", Label: cand.Token, Run: m.sess.AppendSelectedToken}, "no candidates to append") {
		events.Session.Append(m.sess.ID, cand.TokenID, cand.Token)
	}
}

func (m *Model) appendWeighted() bool {
	if !m.run(command.Request{ID: "append-weighted", Label: "sample", Run: m.sess.AppendWeightedToken}, "nothing to sample from") {
		return false
	}
	tokens := m.sess.PromptTokens()
	strs := m.sess.PromptTokenStrings()
	if n := len(tokens); n > 0 && len(strs) == n {
		events.Session.Sample(m.sess.ID, tokens[n-1], strs[n-1], m.lastProbability())
	}
	return true
}

// lastProbability scores the newest token. Tracing only; errors are ignored.
func (m *Model) lastProbability() float64 {
	probs, err := m.sess.PromptTokenProbabilities()
	if err != nil || len(probs) == 0 {
		return 0
	}
	return probs[len(probs)-1]
}

func (m *Model) currentBase() uistate.Base {
	return m.bases.At(m.sess.PromptIndex)
}

func (m *Model) deleteLast() {
	floor := m.currentBase().Count()
	req := command.Request{
		ID:    "pop-token",
		Label: strconv.Itoa(floor),
		Run:   func() (bool, error) { return m.sess.PopToken(floor) },
	}
	if m.run(req, "nothing to delete past the prompt") {
		events.Session.Pop(m.sess.ID, len(m.sess.PromptTokens()))
	}
}

func (m *Model) deleteAll() {
	base := m.currentBase()
	if _, completion := base.Split(len(m.sess.PromptTokens())); completion == 0 {
		m.setInfo("nothing to delete past the prompt")
		return
	}
	m.setPromptText("delete-all", base.Text)
}

// setPromptText replaces the active buffer and makes the result its base.
func (m *Model) setPromptText(id, text string) bool {
	req := command.Request{
		ID:    id,
		Label: text,
		Run: func() (bool, error) {
			_, err := m.sess.SetPromptText(text)
			return err == nil, err
		},
	}
	if !m.run(req, "") {
		return false
	}
	m.bases.Set(m.sess.PromptIndex, currentBase(m.sess))
	events.Session.SetPrompt(m.sess.ID, len(m.sess.PromptTokens()))
	return true
}

func (m *Model) switchBuffer(forward bool) {
	id, op := "decrement-prompt", m.sess.DecrementPrompt
	if forward {
		id, op = "increment-prompt", m.sess.IncrementPrompt
	}
	req := command.Request{
		ID:  id,
		Run: func() (bool, error) {
			err := op()
			return err == nil, err
		},
	}
	if m.run(req, "") {
		events.Session.SwitchBuffer(m.sess.ID, m.sess.PromptIndex)
	}
}

func (m *Model) addBuffer() {
	from := m.sess.PromptIndex
	req := command.Request{
		ID:    "add-prompt",
		Label: strconv.Itoa(m.opts.MaxPrompts),
		Run:   func() (bool, error) { return m.sess.AddPrompt(m.opts.MaxPrompts) },
	}
	if !m.run(req, fmt.Sprintf("buffer limit of %d reached", m.opts.MaxPrompts)) {
		return
	}
	m.bases.Insert(m.sess.PromptIndex, m.bases.At(from))
	events.Session.AddBuffer(m.sess.ID, m.sess.PromptIndex, len(m.sess.Prompts))
}

func (m *Model) dropBuffer() {
	from := m.sess.PromptIndex
	req := command.Request{ID: "remove-prompt", Run: m.sess.RemovePrompt}
	if !m.run(req, "cannot close the last buffer") {
		return
	}
	m.bases.Remove(from)
	events.Session.RemoveBuffer(m.sess.ID, from, len(m.sess.Prompts))
}

// syncViewport keeps the selected candidate on screen.
func (m *Model) syncViewport() {
	m.viewport.EnsureVisible(m.sess.SelectedRow, len(m.sess.DisplayedTokens), m.lastVisible)
}
