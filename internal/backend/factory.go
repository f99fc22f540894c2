package backend

import (
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/config"
	"khata/internal/datastore"
	"khata/internal/datastore/memory"
	"khata/internal/datastore/supabase"
	"khata/internal/services"
	"khata/internal/storage"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result holds the constructed store and its optional cleanup.
type Result struct {
	Store   datastore.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateBackend(cfg *config.Config) (*Result, error)
}

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the store the configuration selects.
func (f *DefaultFactory) CreateBackend(cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		return f.createMemoryBackend()
	case config.BackendRemote:
		return f.createRemoteBackend(cfg)
	case config.BackendSQLite:
		return f.createSQLiteBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized in-memory backend with sample data")
	return &Result{Store: memory.NewSeeded()}, nil
}

func (f *DefaultFactory) createRemoteBackend(cfg *config.Config) (*Result, error) {
	client := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	f.logger.Info("Initialized remote backend", "url", cfg.SupabaseURL)
	return &Result{Store: client}, nil
}

func (f *DefaultFactory) createSQLiteBackend(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without a broker the service still works locally
	// and the pending sweep catches up once a worker appears.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			publisher = client
		}
	}

	svc := services.NewLedgerService(repo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &Result{Store: svc, Cleanup: svc.Close}, nil
}
