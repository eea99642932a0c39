package command

import "github.com/atomicstack/token-explorer/internal/logging/events"

// Request encapsulates a session command invocation. Run reports whether the
// command was applied; a false result with a nil error is a rejection.
type Request struct {
	ID    string
	Label string
	Run   func() (bool, error)
}

// Result describes how a request ended.
type Result struct {
	ID      string
	Label   string
	Applied bool
	Err     error
}

// Rejected reports a request that ran cleanly but changed nothing.
func (r Result) Rejected() bool {
	return !r.Applied && r.Err == nil
}

// Bus runs session commands and traces their outcome. Commands execute
// synchronously on the caller's goroutine, which keeps them serialized with
// the rest of the UI update loop.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute runs req and emits trace entries for the queue and the outcome.
func (b *Bus) Execute(req Request) Result {
	events.Command.Queue(req.ID, req.Label)
	res := Result{ID: req.ID, Label: req.Label}
	if req.Run == nil {
		events.Command.Reject(req.ID, req.Label)
		return res
	}
	res.Applied, res.Err = req.Run()
	switch {
	case res.Err != nil:
		events.Command.Error(req.ID, req.Label, res.Err)
	case !res.Applied:
		events.Command.Reject(req.ID, req.Label)
	default:
		events.Command.Result(req.ID, req.Label)
	}
	return res
}
