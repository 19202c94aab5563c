package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	s, err := storage.NewSQLiteStorage(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite session storage: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized session storage", log.FieldBackend, SQLiteBackend, "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Storage: s,
		Cleanup: s.Close,
	}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	prefix := config.RedisPrefix
	if prefix == "" {
		prefix = storage.DefaultRedisPrefix
	}
	s, err := storage.NewRedisStorage(ctx, config.RedisAddr, prefix, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis session storage: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized session storage", log.FieldBackend, RedisBackend, "addr", config.RedisAddr, "prefix", prefix)

	return &BackendResult{
		Storage: s,
		Cleanup: s.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized session storage", log.FieldBackend, MemoryBackend)

	return &BackendResult{
		Storage: session.NewMemoryStorage(),
		Cleanup: nil, // nothing to release
	}, nil
}
