package ui

import (
	"github.com/atomicstack/token-explorer/internal/logging/events"
	"github.com/atomicstack/token-explorer/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) startEdit() tea.Cmd {
	if m.showNumbers {
		m.setInfo("hide token numbers (#) to edit the prompt")
		return nil
	}
	m.mode = ModeEdit
	m.clearStatus()
	m.editor.SetValue(m.currentBase().Text)
	return m.editor.Focus()
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.leaveEntry()
		m.setInfo("edit cancelled")
		return nil
	case "enter":
		text := m.editor.Value()
		m.leaveEntry()
		m.setPromptText("set-prompt", text)
		m.syncViewport()
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) startSearch() tea.Cmd {
	m.mode = ModeSearch
	m.clearStatus()
	m.search.SetValue(m.sess.Search)
	m.search.CursorEnd()
	return m.search.Focus()
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.leaveEntry()
		if m.sess.Search != "" {
			m.applySearch("")
		}
		return nil
	case "enter":
		m.leaveEntry()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.applySearch(value)
	}
	return cmd
}

func (m *Model) applySearch(query string) {
	req := command.Request{
		ID:    "set-search",
		Label: query,
		Run: func() (bool, error) {
			_, err := m.sess.SetSearch(query)
			return err == nil, err
		},
	}
	if m.run(req, "") {
		events.Session.Search(m.sess.ID, query, len(m.sess.DisplayedTokens))
	}
	m.syncViewport()
}

func (m *Model) leaveEntry() {
	m.editor.Blur()
	m.search.Blur()
	m.mode = ModeExplore
}
