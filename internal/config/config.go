package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/token-explorer/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App         app.Config
	Logging     Logging
	File        string
	PrintSchema bool
	Flags       map[string]string
	Args        []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix        = "TOKEN_EXPLORER_"
	envConfig        = envPrefix + "CONFIG"
	envPrompt        = envPrefix + "PROMPT"
	envTokens        = envPrefix + "TOKENS"
	envMaxPrompts    = envPrefix + "MAX_PROMPTS"
	envCorpus        = envPrefix + "CORPUS"
	envCheckpoint    = envPrefix + "CHECKPOINT"
	envSeed          = envPrefix + "SEED"
	envEmbd          = envPrefix + "EMBD"
	envHeads         = envPrefix + "HEADS"
	envLayers        = envPrefix + "LAYERS"
	envBlockSize     = envPrefix + "BLOCK_SIZE"
	envLearningRate  = envPrefix + "LEARNING_RATE"
	envTrainSteps    = envPrefix + "TRAIN_STEPS"
	envBatchSize     = envPrefix + "BATCH_SIZE"
	envContinueDelay = envPrefix + "CONTINUE_DELAY"
	envMaxContinue   = envPrefix + "MAX_CONTINUE"
	envWidth         = envPrefix + "WIDTH"
	envHeight        = envPrefix + "HEIGHT"
	envShowFooter    = envPrefix + "FOOTER"
	envTrace         = envPrefix + "TRACE"
	envLogFile       = envPrefix + "LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values resolve
// in order: flags, environment, config file, defaults.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	base := app.DefaultConfig()
	var logging Logging
	path := configPath(args, env)
	if path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := file.apply(&base, &logging); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	fs := flag.NewFlagSet("token-explorer", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", path, "path to a YAML or TOML config file")
	schema := fs.Bool("config-schema", false, "print the config file JSON schema and exit")
	prompt := fs.String("prompt", envOrDefault(env, envPrompt, base.Prompt), "initial prompt text")
	tokens := fs.Int("tokens", envOrInt(env, envTokens, base.TokensToShow), "number of candidate tokens shown")
	maxPrompts := fs.Int("max-prompts", envOrInt(env, envMaxPrompts, base.MaxPrompts), "maximum prompt buffers (0 for unlimited)")
	corpusPath := fs.String("corpus", envOrDefault(env, envCorpus, base.CorpusPath), "training corpus, one document per line (empty uses the built-in corpus)")
	checkpoint := fs.String("checkpoint", envOrDefault(env, envCheckpoint, base.Checkpoint), "model checkpoint to load, or to write after training")
	seed := fs.Int64("seed", envOrInt64(env, envSeed, base.Seed), "seed for model initialisation and training")
	embd := fs.Int("embd", envOrInt(env, envEmbd, base.Model.NEmbd), "embedding width")
	heads := fs.Int("heads", envOrInt(env, envHeads, base.Model.NHead), "attention heads per layer")
	layers := fs.Int("layers", envOrInt(env, envLayers, base.Model.NLayer), "transformer layers")
	blockSize := fs.Int("block-size", envOrInt(env, envBlockSize, base.Model.BlockSize), "context window in tokens")
	learningRate := fs.Float64("learning-rate", envOrFloat(env, envLearningRate, base.Model.LearningRate), "Adam learning rate")
	trainSteps := fs.Int("train-steps", envOrInt(env, envTrainSteps, base.TrainSteps), "training steps when no checkpoint is loaded")
	batchSize := fs.Int("batch-size", envOrInt(env, envBatchSize, base.BatchSize), "documents per training step")
	continueDelay := fs.Duration("continue-delay", envOrDuration(env, envContinueDelay, base.ContinueDelay), "pause between continue steps")
	maxContinue := fs.Int("max-continue", envOrInt(env, envMaxContinue, base.MaxContinue), "maximum tokens appended by one continue run (0 for unlimited)")
	width := fs.Int("width", envOrInt(env, envWidth, base.Width), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, base.Height), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, base.ShowFooter), "show the key help footer")
	trace := fs.Bool("trace", envOrBool(env, envTrace, logging.Trace), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, logging.FilePath), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	appCfg := base
	appCfg.Prompt = *prompt
	appCfg.TokensToShow = *tokens
	appCfg.MaxPrompts = *maxPrompts
	appCfg.CorpusPath = *corpusPath
	appCfg.Checkpoint = *checkpoint
	appCfg.Seed = *seed
	appCfg.Model.NEmbd = *embd
	appCfg.Model.NHead = *heads
	appCfg.Model.NLayer = *layers
	appCfg.Model.BlockSize = *blockSize
	appCfg.Model.LearningRate = *learningRate
	appCfg.TrainSteps = *trainSteps
	appCfg.BatchSize = *batchSize
	appCfg.ContinueDelay = *continueDelay
	appCfg.MaxContinue = *maxContinue
	appCfg.Width = *width
	appCfg.Height = *height
	appCfg.ShowFooter = *footer

	cfg := Config{
		App: appCfg,
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		File:        path,
		PrintSchema: *schema,
		Flags: map[string]string{
			"config":        path,
			"prompt":        *prompt,
			"tokens":        strconv.Itoa(*tokens),
			"maxPrompts":    strconv.Itoa(*maxPrompts),
			"corpus":        *corpusPath,
			"checkpoint":    *checkpoint,
			"seed":          strconv.FormatInt(*seed, 10),
			"embd":          strconv.Itoa(*embd),
			"heads":         strconv.Itoa(*heads),
			"layers":        strconv.Itoa(*layers),
			"blockSize":     strconv.Itoa(*blockSize),
			"learningRate":  strconv.FormatFloat(*learningRate, 'g', -1, 64),
			"trainSteps":    strconv.Itoa(*trainSteps),
			"batchSize":     strconv.Itoa(*batchSize),
			"continueDelay": continueDelay.String(),
			"maxContinue":   strconv.Itoa(*maxContinue),
			"width":         strconv.Itoa(*width),
			"height":        strconv.Itoa(*height),
			"footer":        strconv.FormatBool(*footer),
			"trace":         strconv.FormatBool(*trace),
			"logFile":       *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// configPath finds the config file before the flag set is built, since the
// file supplies the flag defaults.
func configPath(args []string, env map[string]string) string {
	path := envOrDefault(env, envConfig, "")
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			path = value
			continue
		}
		if name == "config" && i+1 < len(args) {
			path = args[i+1]
			i++
		}
	}
	return path
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrInt64(env map[string]string, key string, fallback int64) int64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks the values that flag parsing cannot.
func Validate(cfg Config) error {
	a := cfg.App
	var errs []error
	if a.TokensToShow < 1 {
		errs = append(errs, fmt.Errorf("tokens must be >= 1 (got %d)", a.TokensToShow))
	}
	if a.MaxPrompts < 0 {
		errs = append(errs, fmt.Errorf("max-prompts must be >= 0 (got %d)", a.MaxPrompts))
	}
	if a.TrainSteps < 0 {
		errs = append(errs, fmt.Errorf("train-steps must be >= 0 (got %d)", a.TrainSteps))
	}
	if a.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch-size must be >= 1 (got %d)", a.BatchSize))
	}
	if a.ContinueDelay < 0 {
		errs = append(errs, fmt.Errorf("continue-delay must be >= 0 (got %s)", a.ContinueDelay))
	}
	if a.MaxContinue < 0 {
		errs = append(errs, fmt.Errorf("max-continue must be >= 0 (got %d)", a.MaxContinue))
	}
	if err := a.Model.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
