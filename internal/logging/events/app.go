package events

import "github.com/atomicstack/token-explorer/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Model(source string, params, vocab int) {
	logging.Trace("app.model", map[string]interface{}{"source": source, "params": params, "vocab": vocab})
}

func (AppTracer) Exit(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.exit", payload)
}
