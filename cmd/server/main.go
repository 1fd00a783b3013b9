package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarkgate/apikit/internal/config"
	"github.com/quarkgate/apikit/internal/infrastructure/crypto"
	"github.com/quarkgate/apikit/internal/infrastructure/monitoring"
	"github.com/quarkgate/apikit/internal/interfaces/http/router"
	"github.com/quarkgate/apikit/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	startupLogger := monitoring.NewZapLogger("info", "json")

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := monitoring.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	tokenEngine, err := newTokenEngine(cfg)
	if err != nil {
		appLogger.Fatal(ctx, "failed to build token engine", err)
	}

	metrics := monitoring.NewMetrics()

	r, err := router.NewRouter(cfg, appLogger, tokenEngine, metrics)
	if err != nil {
		appLogger.Fatal(ctx, "failed to build router", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(r.Start)
	group.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			appLogger.Info(groupCtx, "shutdown signal received",
				logger.String("signal", sig.String()))
		case <-groupCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return r.Stop(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(ctx, "server terminated", err)
	}
	appLogger.Info(ctx, "server stopped")
}

// newTokenEngine builds the crypto engine from configuration, reading PEM
// key files from disk when the algorithm is asymmetric.
func newTokenEngine(cfg *config.Config) (*crypto.Engine, error) {
	var privateKey, publicKey string

	if cfg.JWT.PrivateKeyPath != "" {
		raw, err := os.ReadFile(cfg.JWT.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		privateKey = string(raw)
	}
	if cfg.JWT.PublicKeyPath != "" {
		raw, err := os.ReadFile(cfg.JWT.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		publicKey = string(raw)
	}

	return crypto.New(cfg.JWT.EngineConfig(privateKey, publicKey))
}
