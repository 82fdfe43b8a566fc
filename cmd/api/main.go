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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wolfman30/schedulepay/internal/app/bootstrap"
	appconfig "github.com/wolfman30/schedulepay/internal/config"
	"github.com/wolfman30/schedulepay/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting schedulepay API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      bootstrap.NewAPI(cfg, deps, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildDeps(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bootstrap.Deps, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := bootstrap.Deps{Registry: reg, Gateway: bootstrap.BuildGateway(cfg, logger)}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.UseMemoryStore {
		logger.Warn("using in-memory stores; data is lost on restart")
		deps.Stores = bootstrap.BuildStores(nil)
	} else {
		pool, err := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return deps, cleanup, err
		}
		if pool == nil {
			return deps, cleanup, errors.New("DATABASE_URL is required unless USE_MEMORY_STORE=true")
		}
		closers = append(closers, pool.Close)
		deps.Stores = bootstrap.BuildStores(pool)
		deps.Ping = pool.Ping
	}

	if rdb := bootstrap.BuildRedisClient(ctx, cfg, logger, true); rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		deps.Redis = rdb
	} else {
		logger.Warn("redis disabled; rate limits and sign-outs are per process")
	}
	return deps, cleanup, nil
}
