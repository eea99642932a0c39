package events

import "github.com/atomicstack/token-explorer/internal/logging"

// SessionTracer records session mutations. Every entry carries the session id
// so traces from several runs can share one log file.
type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Append(id string, token int, label string) {
	logging.Trace("session.append", map[string]interface{}{"session": id, "token": token, "label": label})
}

func (SessionTracer) Sample(id string, token int, label string, probability float64) {
	logging.Trace("session.sample", map[string]interface{}{
		"session":     id,
		"token":       token,
		"label":       label,
		"probability": probability,
	})
}

func (SessionTracer) Pop(id string, remaining int) {
	logging.Trace("session.pop", map[string]interface{}{"session": id, "remaining": remaining})
}

func (SessionTracer) SetPrompt(id string, length int) {
	logging.Trace("session.prompt", map[string]interface{}{"session": id, "length": length})
}

func (SessionTracer) AddBuffer(id string, index, count int) {
	logging.Trace("session.buffer.add", map[string]interface{}{"session": id, "index": index, "count": count})
}

func (SessionTracer) RemoveBuffer(id string, index, count int) {
	logging.Trace("session.buffer.remove", map[string]interface{}{"session": id, "index": index, "count": count})
}

func (SessionTracer) SwitchBuffer(id string, index int) {
	logging.Trace("session.buffer.switch", map[string]interface{}{"session": id, "index": index})
}

func (SessionTracer) Search(id, query string, matches int) {
	logging.Trace("session.search", map[string]interface{}{"session": id, "query": query, "matches": matches})
}
