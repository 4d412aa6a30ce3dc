package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/config"
	"github.com/abhisek/assessor/internal/evaluator"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/selector"
	"github.com/abhisek/assessor/internal/session"
	"github.com/abhisek/assessor/internal/store"
)

// engine holds the configured collaborators shared by commands.
type engine struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
}

// loadConfig resolves configuration with flags taking priority over the
// config file, .env and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if mode, _ := cmd.Flags().GetString("log"); mode != "" {
		cfg.LogMode = mode
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if cfg.DBPath == "" {
		p, err := config.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		cfg.DBPath = p
	} else if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}
	return cfg, nil
}

// openEngine loads configuration, builds the logger and opens the store.
func openEngine(cmd *cobra.Command) (*engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", cfg.DBPath)
	return &engine{cfg: cfg, log: log, store: st}, nil
}

func (e *engine) Close() {
	e.store.Close()
	e.log.Sync()
}

func (e *engine) mastery() *mastery.Service {
	return mastery.NewService(e.store, e.cfg.Engine.MasteryThreshold, e.log)
}

func (e *engine) selector(m *mastery.Service) *selector.Selector {
	opts := []selector.Option{selector.WithLogger(e.log)}
	if e.cfg.Engine.DisableFallback {
		opts = append(opts, selector.WithoutFallback())
	}
	return selector.NewDefault(e.store, m, opts...)
}

// orchestrator wires a session for one learner. t may be nil.
func (e *engine) orchestrator(req selector.Request, t session.Transport) *session.Orchestrator {
	m := e.mastery()
	if req.MaxQuestions == 0 {
		req.MaxQuestions = e.cfg.Engine.MaxQuestions
	}
	return session.New(req, session.Deps{
		Selector:  e.selector(m),
		Mastery:   m,
		Grader:    evaluator.New(e.cfg.Engine.KeywordThreshold),
		Attempts:  e.store,
		Sessions:  e.store,
		Transport: t,
		Logger:    e.log,
	})
}
