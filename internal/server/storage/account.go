package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAccountExists is returned when the username is already registered on the platform
var ErrAccountExists = errors.New("account already exists")

const accountColumns = `id, username, platform, created_at, last_sync_at, games_count`

// CreateAccount registers a platform account and returns it
func (s *Store) CreateAccount(ctx context.Context, username, platform string) (*AccountRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE username = ? COLLATE NOCASE AND platform = ?`,
		username, platform,
	).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if n > 0 {
		return nil, ErrAccountExists
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (username, platform) VALUES (?, ?)`,
		strings.ToLower(username), platform,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read account id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}
	return s.GetAccountByID(ctx, id)
}

// GetAccount looks an account up by username and platform
func (s *Store) GetAccount(ctx context.Context, username, platform string) (*AccountRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ? COLLATE NOCASE AND platform = ?`,
		username, platform,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetAccountByID looks an account up by id
func (s *Store) GetAccountByID(ctx context.Context, id int64) (*AccountRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListAccounts returns all accounts, newest first
func (s *Store) ListAccounts(ctx context.Context) ([]AccountRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	accounts := []AccountRecord{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account together with its games and returns the
// number of games deleted
func (s *Store) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE account_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete games: %w", err)
	}
	deleted, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return deleted, nil
}

// RecordSync asynchronously refreshes an account's game count and sync time
func (s *Store) RecordSync(accountID int64, at time.Time) {
	s.enqueue("account sync", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE accounts SET
			games_count = (SELECT COUNT(*) FROM games WHERE account_id = ?),
			last_sync_at = ?
		WHERE id = ?`, accountID, at.UTC(), accountID)
		return err
	})
}

func scanAccount(row rowScanner) (*AccountRecord, error) {
	var (
		a        AccountRecord
		lastSync sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Username, &a.Platform, &a.CreatedAt, &lastSync, &a.GamesCount); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time
		a.LastSyncAt = &t
	}
	return &a, nil
}
