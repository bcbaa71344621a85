package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/inbox-reader/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertAccount inserts or replaces an account record. A missing ID is
// generated.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, acct model.AccountConfig) error {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO accounts (
			id, name, host, port, username, tls, enabled,
			fetch_window_days, fetch_limit, updated_at
		) VALUES (
			:id, :name, :host, :port, :username, :tls, :enabled,
			:fetch_window_days, :fetch_limit, CURRENT_TIMESTAMP
		)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			host = excluded.host,
			port = excluded.port,
			username = excluded.username,
			tls = excluded.tls,
			enabled = excluded.enabled,
			fetch_window_days = excluded.fetch_window_days,
			fetch_limit = excluded.fetch_limit,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.NamedExecContext(ctx, query, acct); err != nil {
		return fmt.Errorf("upserting account %s: %w", acct.ID, err)
	}
	return nil
}

// GetAccounts returns all account records, oldest first.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.AccountConfig, error) {
	const query = `
		SELECT id, name, host, port, username, tls, enabled,
		       fetch_window_days, fetch_limit
		FROM accounts
		ORDER BY created_at`

	var accounts []model.AccountConfig
	if err := s.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountByID returns one account record, or nil when absent.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*model.AccountConfig, error) {
	const query = `
		SELECT id, name, host, port, username, tls, enabled,
		       fetch_window_days, fetch_limit
		FROM accounts
		WHERE id = ?`

	var acct model.AccountConfig
	err := s.db.GetContext(ctx, &acct, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %s: %w", id, err)
	}
	return &acct, nil
}

// DeleteAccount removes an account record.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	return nil
}
