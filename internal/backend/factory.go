package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dial is replaced in tests.
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dial:   amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case CSVBackend:
		store, err = storage.NewCSVStore(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize CSV store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized CSV backend", "data_directory", config.DataDirectory)
	case SQLiteBackend:
		store, err = storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: store}
	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", "error", err)
			client = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Events = client
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return result, nil
}
