// Package cli provides the initialization shared by cmd/worktrack and
// cmd/worktrack-ctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"worktrack/internal/amqp"
	"worktrack/internal/backend"
	"worktrack/internal/config"
	applog "worktrack/internal/log"
	"worktrack/internal/services"
	"worktrack/internal/store"
)

// eventDrainTimeout bounds how long cleanup waits for queued events.
const eventDrainTimeout = 5 * time.Second

// SetupLogger builds the process logger for level and makes it the slog
// default. Unknown levels fall back to info.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	lvl, _ := config.ParseLogLevel(level)
	if out == nil {
		out = os.Stdout
	}
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitPublisher connects to the broker when AMQP_URL is set. A broker that
// cannot be reached is logged and skipped; events are optional.
func InitPublisher(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	log := logger.WithComponent(applog.ComponentAMQP)
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		log.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	log.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// InitService wires the configured backend and optional publisher into an
// EntryService and loads the persisted entries. The returned cleanup
// releases everything InitService opened.
func InitService(ctx context.Context, logger *applog.Logger, cfg *config.Config, withEvents bool) (*services.EntryService, func() error, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentStorage).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	var (
		publisher services.EventPublisher
		client    *amqp.Client
	)
	if withEvents {
		if client = InitPublisher(logger, cfg); client != nil {
			publisher = client
		}
	}

	svc := services.NewEntryService(store.New(nil), res.Persister, publisher)

	cleanup := func() error {
		var errs []error
		drainCtx, cancel := context.WithTimeout(context.Background(), eventDrainTimeout)
		defer cancel()
		if err := svc.Close(drainCtx); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		}
		if client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		return errors.Join(errs...)
	}

	if err := svc.Load(ctx); err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	logger.Info("Entry store ready",
		applog.FieldBackend, bcfg.Type.String(),
		applog.FieldEntryCount, svc.Len(),
		"events", publisher != nil)

	return svc, cleanup, nil
}
