package events

import "github.com/atomicstack/token-explorer/internal/logging"

type ContinueTracer struct{}

type ContinueReason string

const (
	ContinueReasonCancel   ContinueReason = "cancel"
	ContinueReasonEnd      ContinueReason = "end"
	ContinueReasonRejected ContinueReason = "rejected"
	ContinueReasonLimit    ContinueReason = "limit"
	ContinueReasonError    ContinueReason = "error"
)

var Continue = ContinueTracer{}

func (ContinueTracer) Start(id string) {
	logging.Trace("continue.start", map[string]interface{}{"session": id})
}

func (ContinueTracer) Step(id string, step int) {
	logging.Trace("continue.step", map[string]interface{}{"session": id, "step": step})
}

func (ContinueTracer) Stop(id string, steps int, reason ContinueReason) {
	logging.Trace("continue.stop", map[string]interface{}{"session": id, "steps": steps, "reason": string(reason)})
}
