package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUserExists is returned when the username or email is taken
var ErrUserExists = errors.New("username or email already exists")

const userColumns = `user_id, username, email, password_hash, created_at, last_login_at`

// CreateUser creates user with transaction isolation to prevent race conditions
func (s *Store) CreateUser(record UserRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.userExists(tx, record.Username, record.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	_, err = tx.Exec(`INSERT INTO users (
		user_id, username, email, password_hash, created_at
	) VALUES (?, ?, ?, ?, ?)`,
		record.UserID, record.Username, nullString(record.Email),
		record.PasswordHash, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return tx.Commit()
}

// userExists verifies username/email uniqueness within a transaction
func (s *Store) userExists(tx *sql.Tx, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	args := []any{username}

	if email != "" {
		query = `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE OR email = ? COLLATE NOCASE`
		args = append(args, email)
	}

	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUserPassword updates user password hash
func (s *Store) UpdateUserPassword(userID string, passwordHash string) error {
	res, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE user_id = ?`, passwordHash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserLastLoginSync updates user last login time
func (s *Store) UpdateUserLastLoginSync(userID string, loginTime time.Time) error {
	_, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE user_id = ?`, loginTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login for user %s: %w", userID, err)
	}
	return nil
}

// GetAllUsers retrieves all users
func (s *Store) GetAllUsers() ([]UserRecord, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetUserByUsername retrieves user by username with case-insensitive matching
func (s *Store) GetUserByUsername(username string) (*UserRecord, error) {
	user, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username))
	return user, notFound(err)
}

// GetUserByEmail retrieves user by email with case-insensitive matching
func (s *Store) GetUserByEmail(email string) (*UserRecord, error) {
	user, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	return user, notFound(err)
}

// GetUserByID retrieves user by unique user ID
func (s *Store) GetUserByID(userID string) (*UserRecord, error) {
	user, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
	return user, notFound(err)
}

// DeleteUserByID removes a user synchronously; sessions cascade
func (s *Store) DeleteUserByID(userID string) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user from the database (async)
func (s *Store) DeleteUser(userID string) {
	s.enqueue("user deletion", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM users WHERE user_id = ?`, userID)
		return err
	})
}

func scanUser(row rowScanner) (*UserRecord, error) {
	var (
		user  UserRecord
		email sql.NullString
	)
	err := row.Scan(
		&user.UserID, &user.Username, &email,
		&user.PasswordHash, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	return &user, nil
}
