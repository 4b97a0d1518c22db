package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// Store is a topic repository together with its lifecycle operations.
type Store interface {
	domain.TopicRepository
	// Migrate creates the topic schema and indexes if they do not exist.
	Migrate(ctx context.Context) error
	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
}

// Open connects to the database selected by DB_DRIVER and returns the matching store.
func Open(ctx context.Context, cfg config.Provider) (Store, error) {
	switch driver := cfg.GetDBDriver(); driver {
	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		db, err := OpenSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLTopicStore(db, driver, cfg), nil
	case config.DriverSurreal:
		db, err := NewSurrealDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSurrealTopicStore(db, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// OpenSQL opens and verifies a database/sql pool for the configured driver.
func OpenSQL(ctx context.Context, cfg config.Provider) (*sql.DB, error) {
	driver := cfg.GetDBDriver()
	db, err := sql.Open(driver, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.GetDBMaxOpenConns())
	db.SetMaxIdleConns(cfg.GetDBMaxIdleConns())
	db.SetConnMaxIdleTime(cfg.GetDBConnMaxIdleTime())

	pingCtx, cancel := getTimeoutFromContext(ctx, cfg.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	slog.Info("Database connection established", "driver", driver)
	return db, nil
}

// NewSurrealDB creates and configures a new SurrealDB connection.
func NewSurrealDB(ctx context.Context, cfg config.Provider) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.GetSurrealURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	authData := &surrealdb.Auth{
		Username: cfg.GetSurrealUser(),
		Password: cfg.GetSurrealPass(),
	}

	if _, err = db.SignIn(ctx, authData); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if err = db.Use(ctx, cfg.GetSurrealNs(), cfg.GetSurrealDb()); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.Info("Successfully signed in to SurrealDB", "namespace", cfg.GetSurrealNs(), "database", cfg.GetSurrealDb())
	return db, nil
}
