package storage

import (
	"fmt"
	"time"
)

// ReplaceSession stores the session for a user, dropping the previous one.
// Each user holds at most one live token.
func (s *Store) ReplaceSession(record SessionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, record.UserID); err != nil {
		return fmt.Errorf("failed to delete existing session: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		record.SessionID, record.UserID, record.CreatedAt.UTC(), record.ExpiresAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return tx.Commit()
}

// SessionActive reports whether a session exists and has not expired
func (s *Store) SessionActive(sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE session_id = ? AND expires_at > ?`,
		sessionID, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteSession removes a session
func (s *Store) DeleteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// DeleteExpiredSessions removes expired sessions
func (s *Store) DeleteExpiredSessions() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
