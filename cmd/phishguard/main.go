package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/di"
	"github.com/phishguard/phishguard/internal/ports"
	"github.com/phishguard/phishguard/internal/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Service failed: %v\n", err)
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	logger *zap.Logger,
	srv *server.Server,
	emailFilter ports.EmailFilter,
	assessmentStore core.AssessmentStore,
) error {
	defer logger.Sync()

	logger.Info("Starting PhishGuard",
		zap.String("store", cfg.GetStore().Type),
		zap.String("classifier", cfg.GetClassifier().Provider),
		zap.Bool("smtp_enabled", cfg.GetSMTP().Enabled))

	errCh := make(chan error, 2)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if emailFilter != nil {
		go func() {
			if err := emailFilter.Start(); err != nil {
				errCh <- fmt.Errorf("smtp filter: %w", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Service error, shutting down", zap.Error(err))
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}
	if emailFilter != nil {
		if err := emailFilter.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}
	if closer, ok := assessmentStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close assessment store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
