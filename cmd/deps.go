package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/config"
	"github.com/abhisek/persona/internal/insight"
	"github.com/abhisek/persona/internal/llm"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/typedesc"
)

// deps holds everything a command may need, built from one Config.
type deps struct {
	cfg      config.Config
	log      *logger.Logger
	store    *store.Store
	sessions *session.Store
	types    *typedesc.Catalog
	orch     *assessment.Orchestrator
}

// Close releases the database and flushes the log.
func (d *deps) Close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.log.Warn("close store", "error", err)
		}
	}
	d.log.Sync()
}

// buildDeps opens storage and wires the orchestrator. The LLM provider is
// only set up when withLLM is true; a missing provider is not an error.
func buildDeps(ctx context.Context, cmd *cobra.Command, withLLM bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	questions, err := questionbank.Default()
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	types, err := typedesc.Default()
	if err != nil {
		return nil, fmt.Errorf("load type descriptions: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{
		cfg:   cfg,
		log:   log,
		store: st,
		types: types,
		sessions: session.NewStore(session.Config{
			Dir:          cfg.SessionDir,
			ResumeWindow: cfg.ResumeWindow,
			Retention:    cfg.Retention,
		}, log),
	}

	var ins *insight.Service
	if withLLM {
		provider, err := llm.NewProviderFromConfig(ctx, cfg.LLM, st.EventRepo(), log)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			log.Info("no LLM provider configured, reflections disabled")
		case err != nil:
			log.Warn("LLM provider unavailable", "error", err)
		default:
			icfg := insight.DefaultConfig()
			icfg.Timeout = cfg.LLM.Timeout
			ins = insight.NewService(provider, icfg)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	d.orch = assessment.New(assessment.Options{
		Questions: questions,
		Types:     types,
		Sessions:  d.sessions,
		Events:    st.EventRepo(),
		Results:   st.ResultRepo(),
		Insight:   ins,
		ExportDir: cfg.ExportDir,
		Rand:      rand.New(rand.NewPCG(seed, seed>>1|1)),
		Log:       log,
	})
	return d, nil
}
