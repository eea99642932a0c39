package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atomicstack/token-explorer/internal/format/table"
	"github.com/atomicstack/token-explorer/internal/gpt"
	"github.com/atomicstack/token-explorer/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

const (
	barWidth         = 20
	minCandidateRows = 3
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	top := m.headerLines()
	top = append(top, m.promptLines()...)
	top = append(top, "")

	bottom := m.legendLines()
	bottom = append(bottom, m.statusLine())
	switch m.mode {
	case ModeEdit:
		bottom = append(bottom, styles.Header.Render("Edit prompt (enter to apply, esc to cancel)"))
		bottom = append(bottom, m.editor.View())
	case ModeSearch:
		bottom = append(bottom, m.search.View())
	}
	if m.opts.ShowFooter {
		bottom = append(bottom, styles.Footer.Render(m.help.View(m.keys)))
	}

	visible := 0
	if m.height > 0 {
		visible = max(m.height-len(top)-len(bottom)-1, minCandidateRows)
	}
	middle := m.candidateLines(visible)

	lines := make([]string, 0, len(top)+len(middle)+len(bottom))
	lines = append(lines, top...)
	lines = append(lines, middle...)
	lines = append(lines, bottom...)
	return strings.Join(applyWidth(lines, m.width), "\n")
}

func (m *Model) headerLines() []string {
	tabs := make([]string, len(m.sess.Prompts))
	for i := range m.sess.Prompts {
		label := strconv.Itoa(i + 1)
		if i == m.sess.PromptIndex {
			tabs[i] = styles.ActiveBufferTab.Render(label)
		} else {
			tabs[i] = styles.BufferTab.Render(label)
		}
	}
	count := len(m.sess.PromptTokens())
	base, completion := m.currentBase().Split(count)
	stats := fmt.Sprintf("%s tokens (%s prompt, %s generated)",
		humanize.Comma(int64(count)), humanize.Comma(int64(base)), humanize.Comma(int64(completion)))
	title := styles.Header.Render(appTitle)
	return []string{
		lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, "")),
		styles.Info.Render(stats),
	}
}

// promptLines renders the active buffer with the base prompt and the
// completion distinguished, or coloured per token when probabilities are on.
func (m *Model) promptLines() []string {
	tokens := m.sess.PromptTokens()
	if len(tokens) == 0 {
		return []string{styles.Placeholder.Render("(empty prompt, press e to edit)")}
	}
	labels := m.sess.PromptTokenStrings()
	if m.showNumbers || len(labels) != len(tokens) {
		labels = make([]string, len(tokens))
		for i, id := range tokens {
			labels[i] = strconv.Itoa(id)
		}
	}
	sep := ""
	if m.showNumbers {
		sep = " "
	}
	endID, hasEnd := m.sess.EndTokenID()
	baseCount, _ := m.currentBase().Split(len(tokens))

	var probs []float64
	if m.showProbs {
		var err error
		if probs, err = m.sess.PromptTokenProbabilities(); err != nil || len(probs) != len(tokens) {
			probs = nil
		}
	}

	var b strings.Builder
	for i, label := range labels {
		if i > 0 {
			b.WriteString(sep)
		}
		var style lipgloss.Style
		switch {
		case probs != nil:
			style = theme.ProbabilityStyle(probs[i])
		case hasEnd && tokens[i] == endID:
			style = *styles.EndToken
		case i < baseCount:
			style = *styles.Prompt
		default:
			style = *styles.Completion
		}
		b.WriteString(style.Render(label))
	}

	text := b.String()
	if m.width > 0 {
		text = wrap.String(text, m.width)
	}
	return strings.Split(text, "\n")
}

// candidateLines renders the next-token table, scrolled so the selection is
// visible. visible <= 0 shows every candidate.
func (m *Model) candidateLines(visible int) []string {
	cands := m.sess.DisplayedTokens
	header := "Next token"
	if m.sess.Search != "" {
		header = fmt.Sprintf("Next token matching %q", m.sess.Search)
	}
	lines := []string{styles.TableHeader.Render(header)}
	if len(cands) == 0 {
		msg := "(no candidates)"
		if m.sess.Search != "" {
			msg = fmt.Sprintf("No matches for %q", m.sess.Search)
		}
		return append(lines, styles.Info.Render(msg))
	}

	m.lastVisible = visible
	m.syncViewport()
	start, end := m.viewport.Bounds(len(cands), visible)

	rows := make([][]string, 0, end-start)
	for _, cand := range cands[start:end] {
		rows = append(rows, []string{
			m.candidateLabel(cand.TokenID, cand.Token),
			formatPercent(cand.Probability),
			styles.Bar.Render(probabilityBar(cand.Probability)),
		})
	}
	formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight, table.AlignLeft})
	for i, row := range formatted {
		idx := start + i
		if idx == m.sess.SelectedRow {
			lines = append(lines, styles.SelectedItemIndicator.Render("▌")+styles.SelectedItem.Render(" "+row))
		} else {
			lines = append(lines, styles.ItemIndicator.Render("▌")+styles.Item.Render(" "+row))
		}
	}
	return lines
}

func (m *Model) candidateLabel(id int, token string) string {
	if m.showNumbers {
		return strconv.Itoa(id)
	}
	return displayToken(token)
}

// displayToken makes whitespace tokens visible in the table.
func displayToken(token string) string {
	switch token {
	case " ":
		return "␣"
	case "\n":
		return "⏎"
	case "\t":
		return "⇥"
	case "":
		return "∅"
	case gpt.EndLabel:
		return styles.EndToken.Render(token)
	}
	return token
}

func formatPercent(p float64) string {
	if math.IsNaN(p) {
		p = 0
	}
	return fmt.Sprintf("%.1f%%", math.Max(0, math.Min(1, p))*100)
}

func probabilityBar(p float64) string {
	if math.IsNaN(p) || p <= 0 {
		return ""
	}
	n := int(math.Round(math.Min(1, p) * barWidth))
	return strings.Repeat("█", n)
}

func (m *Model) legendLines() []string {
	if !m.showProbs {
		return nil
	}
	parts := make([]string, 0, len(theme.LegendStops)+1)
	parts = append(parts, styles.Legend.Render("probability"))
	for _, p := range theme.LegendStops {
		parts = append(parts, theme.ProbabilityStyle(p).Render(fmt.Sprintf(" %d%% ", int(p*100))))
	}
	return []string{strings.Join(parts, " ")}
}

func (m *Model) statusLine() string {
	switch {
	case m.errMsg != "":
		return styles.Error.Render("Error: " + m.errMsg)
	case m.loop != nil:
		return m.spin.View() + styles.Busy.Render(fmt.Sprintf(" continuing (%d tokens), esc to stop", m.loop.steps))
	case m.infoMsg != "":
		return styles.Info.Render(m.infoMsg)
	case m.sess.AtEndToken():
		return styles.EndToken.Render("end of sequence")
	}
	return ""
}

// applyWidth truncates lines wider than width. Lines carry ANSI styling, so
// measurement and truncation are escape-aware.
func applyWidth(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		parts := strings.Split(line, "\n")
		for j, part := range parts {
			if lipgloss.Width(part) > width {
				parts[j] = truncate.StringWithTail(part, uint(width), "…")
			}
		}
		out[i] = strings.Join(parts, "\n")
	}
	return out
}
