package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the insert-only audit log of orders and game sessions. Rows are
// never updated or deleted; the in-memory tracker is the source of truth for
// active tables, this log exists for bookkeeping after the fact.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveOrder records a submitted order and its items for a table.
	SaveOrder(ctx context.Context, userID int64, tableName string, items []string) error

	// SaveSession records a started game session with its initial players.
	SaveSession(ctx context.Context, userID int64, tableName string, players int) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by sqlx. It requires a connected
// sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveOrder inserts the order header and one row per ordered unit in a
// single transaction, registering the table on first use.
func (s *sqlxStore) SaveOrder(ctx context.Context, userID int64, tableName string, items []string) error {
	if tableName == "" {
		return fmt.Errorf("order must reference a table")
	}
	if len(items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving order",
			"table", tableName, "user_id", userID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	tableID, err := ensureTable(ctx, tx, tableName)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (table_id, ordered_at, created_by) VALUES (?, ?, ?)`,
		tableID, time.Now().UTC(), userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving order", "table", tableName, "user_id", userID, "error", err)
		return fmt.Errorf("failed to save order for table %s: %w", tableName, err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get order ID: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, item_name) VALUES (?, ?)`,
			orderID, item); err != nil {
			s.logger.ErrorContext(ctx, "Error saving order item",
				"order_id", orderID, "item", item, "error", err)
			return fmt.Errorf("failed to save order item %q: %w", item, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit order transaction",
			"table", tableName, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Order saved",
		"order_id", orderID, "table", tableName, "items", len(items), "user_id", userID)
	return nil
}

// SaveSession inserts the session header and one player row per seat in a
// single transaction, registering the table on first use.
func (s *sqlxStore) SaveSession(ctx context.Context, userID int64, tableName string, players int) error {
	if tableName == "" {
		return fmt.Errorf("session must reference a table")
	}
	if players <= 0 {
		return fmt.Errorf("session must have a positive player count")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving session",
			"table", tableName, "user_id", userID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	tableID, err := ensureTable(ctx, tx, tableName)
	if err != nil {
		return err
	}

	startedAt := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (table_id, started_at, created_by) VALUES (?, ?, ?)`,
		tableID, startedAt, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving session", "table", tableName, "user_id", userID, "error", err)
		return fmt.Errorf("failed to save session for table %s: %w", tableName, err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session ID: %w", err)
	}

	for n := 1; n <= players; n++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_players (session_id, player_number, joined_at) VALUES (?, ?, ?)`,
			sessionID, n, startedAt); err != nil {
			s.logger.ErrorContext(ctx, "Error saving session player",
				"session_id", sessionID, "player_number", n, "error", err)
			return fmt.Errorf("failed to save session player %d: %w", n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit session transaction",
			"table", tableName, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Session saved",
		"session_id", sessionID, "table", tableName, "players", players, "user_id", userID)
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// ensureTable returns the ID for the named table, registering it first if it
// does not exist yet.
func ensureTable(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM tables WHERE name = ?`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up table %q: %w", name, err)
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO tables (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to register table %q: %w", name, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get table ID for %q: %w", name, err)
	}
	return id, nil
}
