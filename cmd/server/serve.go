package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/taskflow/internal/api"
	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/dom/taskflow/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, configFile string) error {
	cfg, log, err := bootstrap(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	repos, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Error("failed to open store")
		return err
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	limiters, closeLimiters, err := newLimiters(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to set up rate limiting")
		return err
	}
	defer closeLimiters()

	// Initialize services and router
	services := service.NewServices(repos, cfg)
	router := api.NewRouter(services, limiters, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
			"store":       cfg.StoreDriver,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return err
	}

	log.Info("server stopped")
	return nil
}

// newLimiters uses Redis when REDIS_URL is set so limits hold across
// replicas, and process memory otherwise.
func newLimiters(ctx context.Context, cfg *config.Config, log *logrus.Logger) (api.Limiters, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("rate limiting with in-process counters")
		return api.Limiters{
			API:  ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
			Auth: ratelimit.NewMemoryLimiter(cfg.AuthRateLimitMax, cfg.RateLimitWindow),
		}, func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return api.Limiters{}, nil, err
	}
	log.Info("rate limiting with redis")

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
	return api.Limiters{
		API:  ratelimit.NewRedisLimiter(client, "ratelimit:api:", cfg.RateLimitMax, cfg.RateLimitWindow, log),
		Auth: ratelimit.NewRedisLimiter(client, "ratelimit:auth:", cfg.AuthRateLimitMax, cfg.RateLimitWindow, log),
	}, closeFn, nil
}
