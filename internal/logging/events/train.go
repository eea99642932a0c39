package events

import "github.com/atomicstack/token-explorer/internal/logging"

type TrainTracer struct{}

var Train = TrainTracer{}

func (TrainTracer) Progress(step, total int, loss float64) {
	logging.Trace("train.progress", map[string]interface{}{"step": step, "total": total, "loss": loss})
}

func (TrainTracer) Done(steps int, loss float64, err error) {
	payload := map[string]interface{}{"steps": steps, "loss": loss}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("train.done", payload)
}

func (TrainTracer) Checkpoint(path string, saved bool) {
	logging.Trace("train.checkpoint", map[string]interface{}{"path": path, "saved": saved})
}
