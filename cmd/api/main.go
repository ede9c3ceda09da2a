// Package main is the entry point for the API server.
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

	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/app"
	"github.com/gforma/lead-assistant/internal/config"
	"github.com/gforma/lead-assistant/internal/handler"
	"github.com/gforma/lead-assistant/internal/lead"
	natsclient "github.com/gforma/lead-assistant/internal/nats"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lead-assistant: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.ForEnvironment(os.Getenv("ENV"), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	log.Info("starting API server", zap.String("llm_provider", cfg.LLMProvider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "gforma-lead-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				if err := tracing.Shutdown(context.Background(), tp); err != nil {
					log.Warn("failed to flush traces", zap.Error(err))
				}
			}()
		}
	}

	catalog, err := app.LoadDirectory(cfg)
	if err != nil {
		return err
	}
	log.Info("teacher catalog loaded", zap.Int("teachers", catalog.Len()))

	gateway := app.NewGateway(ctx, cfg, log)

	var (
		broker    handler.ConnectionChecker
		publisher service.LeadPublisher
		sessOpts  = []service.SessionOption{service.WithIdleTTL(cfg.SessionIdleTTL)}
	)
	if cfg.NATSURL != "" {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			return fmt.Errorf("failed to ensure stream: %w", err)
		}

		broker = natsClient
		publisher = streamManager
		sessOpts = append(sessOpts, service.WithEvents(streamManager))
	} else {
		log.Info("NATS_URL not set, lead publishing disabled")
	}

	leadSvc := service.NewLeadService(lead.NewStore(), publisher, log)
	sessionSvc := service.NewSessionService(gateway, catalog, leadSvc, log, sessOpts...)

	go sessionSvc.RunSweeper(ctx, time.Minute)

	router := handler.NewRouter(handler.RouterConfig{
		Sessions:          sessionSvc,
		Leads:             leadSvc,
		Broker:            broker,
		Inference:         gateway,
		Logger:            log,
		AdminPassword:     cfg.AdminPassword,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiration:     cfg.JWTExpiration,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
