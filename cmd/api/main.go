package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-adoption-market/internal/adapters/auth/tokenapi"
	"pet-adoption-market/internal/adapters/storage/postgres"
	"pet-adoption-market/internal/platform/config"
	"pet-adoption-market/internal/platform/logger"
	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)

	opts := router.Options{Log: log}

	if cfg.Database.DSN != "" {
		db, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			// Start degraded; the recovery loop brings the primary
			// back once it answers.
			log.Warn().Err(err).Msg("primary store unreachable at startup")
		}
		if db != nil {
			defer db.Close()
			opts.DB = db
		}
	} else {
		log.Warn().Msg("no database configured, running on in-memory storage only")
	}

	opts.Verifier = buildVerifier(cfg)
	if opts.Verifier == nil {
		log.Warn().Msg("no auth service configured, running in dev mode")
	}

	handler, health := router.NewRouter(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if health != nil {
		health.CheckNow(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if health != nil {
		g.Go(func() error {
			err := health.Run(ctx, cfg.Failover.ReprobeInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func buildVerifier(cfg config.Config) auth.Verifier {
	if cfg.Auth.BaseURL == "" || cfg.Auth.APIKey == "" {
		return nil
	}
	client := tokenapi.NewClient(tokenapi.Config{
		BaseURL: cfg.Auth.BaseURL,
		APIKey:  cfg.Auth.APIKey,
		Timeout: cfg.Auth.Timeout,
	})
	return tokenapi.NewVerifier(client)
}
