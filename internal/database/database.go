// Package database manages the MySQL connection behind the optional failure store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/clmigrate/internal/config"
)

// ErrDisabled is returned by Connect when the failure store is not enabled.
var ErrDisabled = errors.New("failure store is disabled")

// Manager owns the failure store connection.
type Manager struct {
	DB     *sql.DB
	config *config.FailureStoreConfig

	// open is sql.Open; tests replace it with a sqlmock opener.
	open func(driver, dsn string) (*sql.DB, error)
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.FailureStoreConfig) *Manager {
	return &Manager{
		config: cfg,
		open:   sql.Open,
	}
}

// Connect opens and verifies the failure store connection.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil || !m.config.Enabled {
		return ErrDisabled
	}

	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to failure store: %w", err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func (m *Manager) connect() (*sql.DB, error) {
	db, err := m.open("mysql", BuildDSN(m.config))
	if err != nil {
		return nil, err
	}

	// Failures are written one at a time from a single goroutine.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.FailureStoreConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection if one is open.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("failure store close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failure store ping failed: %w", err)
	}
	return nil
}
