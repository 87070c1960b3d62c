package main

import (
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/johnquangdev/meeting-summarizer/internal/adapter/api"
	"github.com/johnquangdev/meeting-summarizer/internal/adapter/history"
	"github.com/johnquangdev/meeting-summarizer/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-summarizer/internal/usecase/summarize"
	"github.com/johnquangdev/meeting-summarizer/pkg/config"
)

// commandContext carries lazily built shared state across subcommands.
type commandContext struct {
	apiURLFlag   *string
	logLevelFlag *string
	noColorFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext(apiURLFlag, logLevelFlag *string, noColorFlag *bool) *commandContext {
	return &commandContext{
		apiURLFlag:   apiURLFlag,
		logLevelFlag: logLevelFlag,
		noColorFlag:  noColorFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if c.apiURLFlag != nil && strings.TrimSpace(*c.apiURLFlag) != "" {
			cfg.API.BaseURL = strings.TrimSpace(*c.apiURLFlag)
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Log.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *zap.Logger {
	c.loggerOnce.Do(func() {
		level := zapcore.WarnLevel
		if cfg, err := c.ensureConfig(); err == nil {
			if parsed, parseErr := zapcore.ParseLevel(cfg.Log.Level); parseErr == nil {
				level = parsed
			}
		}
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
		logger, err := zcfg.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) colorMode() presenter.ColorMode {
	if c.noColorFlag != nil && *c.noColorFlag {
		return presenter.ColorNever
	}
	return presenter.ColorAuto
}

func (c *commandContext) terminal(cmd *cobra.Command) *presenter.Terminal {
	return presenter.NewTerminal(cmd.OutOrStdout(), c.colorMode())
}

// openHistory returns the history store, or nil when disabled or unopenable.
// A broken history database never blocks the workflow itself.
func (c *commandContext) openHistory() *history.Store {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		c.ensureLogger().Warn("history store unavailable", zap.Error(err))
		return nil
	}
	return store
}

// newWorkflow builds the summarization service plus a progress printer that
// streams status updates to the command's error stream while jobs poll.
// The returned cleanup closes the history store.
func (c *commandContext) newWorkflow(cmd *cobra.Command) (*summarize.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := c.ensureLogger()
	store := c.openHistory()

	progress := newProgressPrinter(cmd.ErrOrStderr(), c.colorMode())
	var recorder summarize.HistoryRecorder
	if store != nil {
		recorder = store
	}
	svc := summarize.NewService(api.NewClient(cfg, logger), cfg, logger, recorder, progress.update)

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return svc, cleanup, nil
}

// progressPrinter prints one status line per meaningful state change.
type progressPrinter struct {
	mu       sync.Mutex
	term     *presenter.Terminal
	lastLine string
}

func newProgressPrinter(w io.Writer, mode presenter.ColorMode) *progressPrinter {
	return &progressPrinter{term: presenter.NewTerminal(w, mode)}
}

func (p *progressPrinter) update(state summarize.State) {
	if state.StatusMessage == "" {
		return
	}
	key := string(state.Phase) + "|" + state.StatusMessage

	p.mu.Lock()
	defer p.mu.Unlock()
	if key == p.lastLine {
		return
	}
	p.lastLine = key
	p.term.StatusLine(string(state.Phase), state.Progress, state.StatusMessage)
}
