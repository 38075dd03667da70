package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database/sql drivers for SQLStore.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var _ Store = (*SQLStore)(nil)

// SQLStore keeps the token as a single row of the session_tokens table.
// The same statements run on MySQL and SQLite.
type SQLStore struct {
	db *sql.DB
}

// NewDB opens a connection pool for the given driver and verifies it.
func NewDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverSQLite:
		// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s session database: %w", driver, err)
	}

	return db, nil
}

// NewSQLStore creates the session_tokens table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	query := `CREATE TABLE IF NOT EXISTS session_tokens (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		token TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("creating session_tokens table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load returns the stored token, or "" when the row is absent.
func (s *SQLStore) Load(ctx context.Context) (string, error) {
	query := `SELECT token FROM session_tokens WHERE name = ?`

	var token string
	err := s.db.QueryRowContext(ctx, query, AccessTokenKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Save replaces the stored token inside a transaction.
func (s *SQLStore) Save(ctx context.Context, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_tokens WHERE name = ?`, AccessTokenKey); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO session_tokens (name, token) VALUES (?, ?)`, AccessTokenKey, token); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear deletes the stored token.
func (s *SQLStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE name = ?`, AccessTokenKey)
	return err
}

// Close releases the underlying pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
