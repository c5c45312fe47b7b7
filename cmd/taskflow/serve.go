package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/report"
	"github.com/nhle/taskflow/internal/tasks"
)

func runServe(args []string) error {
	fs, configPath := newFlagSet("serve")
	fs.String("addr", "", "listen address, e.g. :8000")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, fs, *configPath)
	if err != nil {
		return err
	}
	defer e.store.Close()

	clk := clock.Real()
	tokens, err := auth.NewTokens(e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL, clk)
	if err != nil {
		return err
	}
	if e.cfg.Auth.AdminInviteToken == "" {
		e.log.Warn().Msg("no admin invite token configured, admin registration disabled")
	}

	deps := api.Deps{
		Store:   e.store,
		Auth:    auth.NewService(e.store, tokens, e.cfg.Auth.AdminInviteToken, clk, e.log),
		Tasks:   tasks.NewService(e.store, clk, e.log),
		Reports: report.NewService(e.store, clk, e.log),
	}

	server := http.Server{
		Addr:              e.cfg.Server.Address,
		ReadHeaderTimeout: e.cfg.Server.Timeout,
		Handler:           api.NewHandler(e.log, deps, e.cfg.Server.Timeout),
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info().Str("address", server.Addr).Msg("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		e.log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
