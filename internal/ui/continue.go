package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/token-explorer/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// continueLoop is one run of repeated weighted appends.
type continueLoop struct {
	id     int
	ctx    context.Context
	cancel context.CancelFunc
	steps  int
}

type continueStepMsg struct {
	id int
}

func (m *Model) startContinue() tea.Cmd {
	if m.sess.AtEndToken() {
		m.setInfo("end of sequence reached")
		return nil
	}
	if len(m.sess.DisplayedTokens) == 0 {
		m.setInfo("nothing to sample from")
		return nil
	}
	m.loopSeq++
	ctx, cancel := context.WithCancel(context.Background())
	m.loop = &continueLoop{id: m.loopSeq, ctx: ctx, cancel: cancel}
	m.clearStatus()
	events.Continue.Start(m.sess.ID)
	return tea.Batch(m.spin.Tick, m.scheduleStep(m.loop))
}

func (m *Model) scheduleStep(loop *continueLoop) tea.Cmd {
	return tea.Tick(m.opts.ContinueDelay, func(time.Time) tea.Msg {
		if loop.ctx.Err() != nil {
			return nil
		}
		return continueStepMsg{id: loop.id}
	})
}

func (m *Model) handleContinueStepMsg(msg tea.Msg) tea.Cmd {
	step := msg.(continueStepMsg)
	loop := m.loop
	if loop == nil || step.id != loop.id {
		return nil
	}
	if loop.ctx.Err() != nil {
		m.stopContinue(events.ContinueReasonCancel)
		return nil
	}
	if m.sess.AtEndToken() {
		m.stopContinue(events.ContinueReasonEnd)
		return nil
	}
	if m.opts.MaxContinue > 0 && loop.steps >= m.opts.MaxContinue {
		m.stopContinue(events.ContinueReasonLimit)
		return nil
	}
	if !m.appendWeighted() {
		if m.errMsg != "" {
			m.stopContinue(events.ContinueReasonError)
		} else {
			m.stopContinue(events.ContinueReasonRejected)
		}
		return nil
	}
	loop.steps++
	events.Continue.Step(m.sess.ID, loop.steps)
	m.syncViewport()
	if m.sess.AtEndToken() {
		m.stopContinue(events.ContinueReasonEnd)
		return nil
	}
	if m.opts.MaxContinue > 0 && loop.steps >= m.opts.MaxContinue {
		m.stopContinue(events.ContinueReasonLimit)
		return nil
	}
	return m.scheduleStep(loop)
}

// stopContinue cancels the active loop. Step messages already scheduled see
// the cancelled context and are dropped.
func (m *Model) stopContinue(reason events.ContinueReason) {
	loop := m.loop
	if loop == nil {
		return
	}
	loop.cancel()
	m.loop = nil
	events.Continue.Stop(m.sess.ID, loop.steps, reason)
	switch reason {
	case events.ContinueReasonEnd:
		m.setInfo(fmt.Sprintf("continued %d tokens, end of sequence reached", loop.steps))
	case events.ContinueReasonLimit:
		m.setInfo(fmt.Sprintf("continued %d tokens, limit reached", loop.steps))
	case events.ContinueReasonCancel, events.ContinueReasonRejected:
		if m.errMsg == "" && m.infoMsg == "" {
			m.setInfo(fmt.Sprintf("continued %d tokens", loop.steps))
		}
	}
}
