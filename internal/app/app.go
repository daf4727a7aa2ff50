// Package app assembles the ledger's runtime dependencies from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"ev-rental-ledger/internal/config"
	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/migration"
	"ev-rental-ledger/internal/notification"
	"ev-rental-ledger/internal/repository"
	"ev-rental-ledger/internal/repository/memory"
	"ev-rental-ledger/internal/repository/postgres"
)

// OpenStore returns the configured store and a close func for its resources.
func OpenStore(cfg *config.Config) (repository.Store, func() error, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory, "":
		logger.Info("Using in-memory storage")
		return memory.New(), func() error { return nil }, nil
	case config.StoragePostgres:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")

		if cfg.Database.RunMigrations {
			if err := migration.RunMigrations(db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// NewNotifier returns the configured notifier and a stop func that flushes
// queued notifications.
func NewNotifier(cfg *config.Config) (notification.Notifier, func(ctx context.Context) error, error) {
	var n notification.Notifier
	switch cfg.Notification.Type {
	case config.NotifierLog, "":
		n = notification.NewLogNotifier()
	case config.NotifierSendGrid:
		logger.Info("Using SendGrid notifier", "from", cfg.Notification.FromEmail, "operator", cfg.Notification.OperatorEmail)
		n = notification.NewSendGridNotifier(
			cfg.Notification.SendGridAPIKey,
			cfg.Notification.FromEmail,
			cfg.Notification.FromName,
			cfg.Notification.OperatorEmail,
		)
	default:
		return nil, nil, fmt.Errorf("unsupported notification type: %s", cfg.Notification.Type)
	}

	if cfg.Notification.Workers <= 0 {
		return n, func(context.Context) error { return nil }, nil
	}
	logger.Info("Delivering notifications asynchronously",
		"workers", cfg.Notification.Workers,
		"queue_size", cfg.Notification.QueueSize,
		"max_retries", cfg.Notification.MaxRetries,
	)
	q := notification.NewQueuedNotifier(n, cfg.Notification.Workers, cfg.Notification.QueueSize, cfg.Notification.MaxRetries)
	q.Start()
	return q, q.Stop, nil
}
