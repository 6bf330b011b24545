package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chessql/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an API user allowed to change the game database
type User struct {
	UserID      string
	Username    string
	Email       string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:      r.UserID,
		Username:    r.Username,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt,
		LastLoginAt: r.LastLoginAt,
	}
}

// CreateUser hashes the password and stores a new user
func (s *Service) CreateUser(username, email, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.generateUniqueUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique ID: %w", err)
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     strings.ToLower(username),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err = s.store.CreateUser(record); err != nil {
		return nil, err
	}

	return userFromRecord(&record), nil
}

// AuthenticateUser verifies credentials. The identifier is an email when it
// contains "@", a username otherwise.
func (s *Service) AuthenticateUser(identifier, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var record *storage.UserRecord
	var err error
	if strings.Contains(identifier, "@") {
		record, err = s.store.GetUserByEmail(identifier)
	} else {
		record, err = s.store.GetUserByUsername(identifier)
	}

	if err != nil {
		// Hash anyway so unknown users take as long as wrong passwords
		auth.HashPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return userFromRecord(record), nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	if err := s.store.UpdateUserLastLoginSync(userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last login time for user %s: %w", userID, err)
	}
	return nil
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(userID string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

// GetUserByName looks a user up by username
func (s *Service) GetUserByName(username string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

// ListUsers returns every user ordered by creation
func (s *Service) ListUsers() ([]*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	records, err := s.store.GetAllUsers()
	if err != nil {
		return nil, err
	}
	users := make([]*User, len(records))
	for i := range records {
		users[i] = userFromRecord(&records[i])
	}
	return users, nil
}

// SetPassword replaces a user's password
func (s *Service) SetPassword(userID, password string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.UpdateUserPassword(userID, hash)
}

// DeleteUser removes a user and their session
func (s *Service) DeleteUser(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.DeleteUserByID(userID)
}

// GenerateUserToken opens a session for the user and signs a JWT carrying
// its id. A new token revokes the user's previous session.
func (s *Service) GenerateUserToken(userID string) (string, time.Time, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	session := storage.SessionRecord{
		SessionID: uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.ReplaceSession(session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	claims := map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"sid":      session.SessionID,
	}

	token, err := auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, session.ExpiresAt, nil
}

// ValidateToken verifies the JWT and that its session is still active
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	userID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}

	if s.store != nil {
		sid, _ := claims["sid"].(string)
		if sid == "" {
			return "", nil, ErrInvalidSession
		}
		active, err := s.store.SessionActive(sid)
		if err != nil {
			return "", nil, fmt.Errorf("failed to check session: %w", err)
		}
		if !active {
			return "", nil, ErrInvalidSession
		}
	}

	return userID, claims, nil
}

// Logout ends the session named by the token's claims
func (s *Service) Logout(claims map[string]any) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return ErrInvalidSession
	}
	return s.store.DeleteSession(sid)
}

// generateUniqueUserID creates a unique user ID with collision detection
func (s *Service) generateUniqueUserID() (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()
		if _, err := s.store.GetUserByID(id); errors.Is(err, storage.ErrNotFound) {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}
