package events

import "github.com/atomicstack/token-explorer/internal/logging"

type CommandTracer struct{}

var Command = CommandTracer{}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Reject(id, label string) {
	logging.Trace("command.reject", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Error(id, label string, err error) {
	if err == nil {
		return
	}
	logging.Trace("command.error", map[string]interface{}{"id": id, "label": label, "error": err.Error()})
}

func (CommandTracer) Result(id, label string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label})
}
