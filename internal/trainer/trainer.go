// Package trainer runs model training in the background and reports
// progress over a channel.
package trainer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/atomicstack/token-explorer/internal/gpt"
)

// Event reports training progress. The last event sent has Done set; Err is
// non-nil when training stopped on a failure.
type Event struct {
	Step  int
	Total int
	Loss  float64
	Err   error
	Done  bool
}

// Options controls a training run.
type Options struct {
	Steps          int
	BatchSize      int
	Seed           int64
	ReportInterval time.Duration
}

// Trainer runs TrainStep in its own goroutine and publishes events.
type Trainer struct {
	model *gpt.Model
	docs  []string
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

// New prepares a trainer. Nothing runs until Start.
func New(model *gpt.Model, docs []string, opts Options) *Trainer {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	return &Trainer{
		model:  model,
		docs:   docs,
		opts:   opts,
		events: make(chan Event, 16),
	}
}

// Start launches the training loop. The loop stops after opts.Steps steps,
// on the first error, or when ctx or Stop cancels it. Calling Start twice
// has no effect.
func (t *Trainer) Start(ctx context.Context) {
	t.once.Do(func() {
		t.ctx, t.cancel = context.WithCancel(ctx)
		t.wg.Add(1)
		go t.run()
		go func() {
			t.wg.Wait()
			close(t.events)
		}()
	})
}

// Events returns the progress channel. It is closed after the final event.
func (t *Trainer) Events() <-chan Event {
	return t.events
}

// Stop cancels training. The current step finishes first; use Wait to block
// until the loop has exited.
func (t *Trainer) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Wait blocks until the training goroutine has exited.
func (t *Trainer) Wait() {
	t.wg.Wait()
}

func (t *Trainer) run() {
	defer t.wg.Done()

	rng := rand.New(rand.NewSource(t.opts.Seed))
	report := newThrottle(t.opts.ReportInterval)
	last := Event{Total: t.opts.Steps}

	for step := 1; step <= t.opts.Steps; step++ {
		if t.ctx.Err() != nil {
			break
		}
		loss, err := t.model.TrainStep(t.docs, t.opts.BatchSize, rng)
		if err != nil {
			last.Err = err
			break
		}
		last.Step, last.Loss = step, loss
		if step < t.opts.Steps && report.ready() {
			if !t.emit(last) {
				break
			}
		}
	}
	last.Done = true
	// the final event is delivered even after cancellation
	t.events <- last
}

func (t *Trainer) emit(evt Event) bool {
	select {
	case <-t.ctx.Done():
		return false
	case t.events <- evt:
		return true
	}
}
