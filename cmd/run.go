package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyaudit/internal/app"
	"github.com/abhisek/studyaudit/internal/config"
	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/inference"
	"github.com/abhisek/studyaudit/internal/llm"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/store"
)

// historySlot is the store slot that holds the audit ledger.
const historySlot = "history"

// sessionRuntime is everything a session needs, opened from configuration.
type sessionRuntime struct {
	cfg     config.Config
	store   *store.Store
	log     *logrus.Logger
	logFile io.Closer
}

func (r *sessionRuntime) Close() {
	r.store.Close()
	r.logFile.Close()
}

func openRuntime(cmd *cobra.Command) (*sessionRuntime, error) {
	cfg, dbPath, st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	log, logFile, err := config.NewLogger(cfg.Log, dbPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open log: %w", err)
	}
	log.WithFields(logrus.Fields{"db": dbPath, "provider": cfg.LLM.Provider}).Info("starting")
	return &sessionRuntime{cfg: cfg, store: st, log: log, logFile: logFile}, nil
}

// ledger returns the history store over the database slot.
func (r *sessionRuntime) ledger() *history.Store {
	return history.New(r.store.Slot(historySlot), r.log)
}

// controller wires providers, the inference client and the ledger into
// a session controller.
func (r *sessionRuntime) controller(ctx context.Context) (*session.Controller, error) {
	if err := r.cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	providers, err := llm.NewProviders(ctx, r.cfg.LLM, r.store.EventRepo(), r.log)
	if err != nil {
		return nil, err
	}

	icfg := inference.DefaultConfig()
	if r.cfg.LLM.MaxTokens > 0 {
		icfg.MaxTokens = r.cfg.LLM.MaxTokens
	}
	if r.cfg.LLM.Timeout > 0 {
		icfg.Timeout = r.cfg.LLM.Timeout
	}
	client := inference.New(providers, icfg, r.log)

	return session.NewController(client, r.ledger(), r.log), nil
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl, err := rt.controller(ctx)
	if err != nil {
		return err
	}
	return app.Run(ctx, ctrl, rt.log)
}
