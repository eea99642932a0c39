package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/atomicstack/token-explorer/internal/corpus"
	"github.com/atomicstack/token-explorer/internal/explorer"
	"github.com/atomicstack/token-explorer/internal/gpt"
	"github.com/atomicstack/token-explorer/internal/logging"
	"github.com/atomicstack/token-explorer/internal/logging/events"
	"github.com/atomicstack/token-explorer/internal/session"
	"github.com/atomicstack/token-explorer/internal/trainer"
	"github.com/atomicstack/token-explorer/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// Config describes user-provided application options.
type Config struct {
	Prompt        string
	TokensToShow  int
	MaxPrompts    int
	CorpusPath    string
	Checkpoint    string
	Seed          int64
	Model         gpt.Config
	TrainSteps    int
	BatchSize     int
	ContinueDelay time.Duration
	MaxContinue   int
	Width         int
	Height        int
	ShowFooter    bool
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		TokensToShow:  session.DefaultTokensToShow,
		Seed:          1337,
		Model:         gpt.DefaultConfig(),
		TrainSteps:    300,
		BatchSize:     4,
		ContinueDelay: 150 * time.Millisecond,
		MaxContinue:   200,
	}
}

const progressInterval = 250 * time.Millisecond

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := Prepare(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	model := ui.NewModel(sess, ui.Options{
		Width:         cfg.Width,
		Height:        cfg.Height,
		ShowFooter:    cfg.ShowFooter,
		MaxPrompts:    cfg.MaxPrompts,
		ContinueDelay: cfg.ContinueDelay,
		MaxContinue:   cfg.MaxContinue,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	events.App.Exit(err)
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Prepare loads or trains the model and opens a session on it. Training
// progress is written to out.
func Prepare(ctx context.Context, cfg Config, out io.Writer) (*session.Session, error) {
	model, err := loadModel(ctx, cfg, out)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(explorer.New(model),
		session.WithPrompt(cfg.Prompt),
		session.WithTokensToShow(cfg.TokensToShow),
	)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

// loadModel prefers an existing checkpoint. Otherwise it trains a fresh model
// on the corpus and writes the checkpoint when a path is configured.
func loadModel(ctx context.Context, cfg Config, out io.Writer) (*gpt.Model, error) {
	if cfg.Checkpoint != "" {
		if _, err := os.Stat(cfg.Checkpoint); err == nil {
			model, err := gpt.LoadCheckpoint(cfg.Checkpoint)
			if err != nil {
				return nil, err
			}
			events.App.Model("checkpoint", model.NumParams(), model.Vocab.Size())
			fmt.Fprintf(out, "loaded %s (%s parameters, %s training steps)\n",
				cfg.Checkpoint, humanize.Comma(int64(model.NumParams())), humanize.Comma(int64(model.Steps)))
			return model, nil
		}
	}

	docs, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	model, err := gpt.NewModel(cfg.Model, docs, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, err
	}
	events.App.Model("trained", model.NumParams(), model.Vocab.Size())
	fmt.Fprintf(out, "training %s parameters on %s documents for %s steps\n",
		humanize.Comma(int64(model.NumParams())), humanize.Comma(int64(len(docs))), humanize.Comma(int64(cfg.TrainSteps)))

	if err := train(ctx, model, docs, cfg, out); err != nil {
		return nil, err
	}
	if cfg.Checkpoint != "" {
		if err := model.SaveCheckpoint(cfg.Checkpoint); err != nil {
			logging.Error(err)
			fmt.Fprintf(out, "checkpoint not saved: %v\n", err)
			events.Train.Checkpoint(cfg.Checkpoint, false)
		} else {
			events.Train.Checkpoint(cfg.Checkpoint, true)
		}
	}
	return model, nil
}

func train(ctx context.Context, model *gpt.Model, docs []string, cfg Config, out io.Writer) error {
	if cfg.TrainSteps <= 0 {
		return nil
	}
	tr := trainer.New(model, docs, trainer.Options{
		Steps:          cfg.TrainSteps,
		BatchSize:      cfg.BatchSize,
		Seed:           cfg.Seed,
		ReportInterval: progressInterval,
	})
	tr.Start(ctx)
	defer tr.Stop()

	var final trainer.Event
	for evt := range tr.Events() {
		if !evt.Done {
			events.Train.Progress(evt.Step, evt.Total, evt.Loss)
			fmt.Fprintf(out, "\rstep %s/%s  loss %.4f", humanize.Comma(int64(evt.Step)), humanize.Comma(int64(evt.Total)), evt.Loss)
			continue
		}
		final = evt
	}
	events.Train.Done(final.Step, final.Loss, final.Err)
	fmt.Fprintf(out, "\rstep %s/%s  loss %.4f\n", humanize.Comma(int64(final.Step)), humanize.Comma(int64(final.Total)), final.Loss)
	if final.Err != nil {
		return fmt.Errorf("train: %w", final.Err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}
