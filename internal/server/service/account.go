package service

import (
	"context"
	"fmt"
	"strings"

	"chessql/internal/query"
	"chessql/internal/server/storage"
)

func normalizePlatform(platform string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "", query.PlatformLichess:
		return query.PlatformLichess, nil
	case query.PlatformChessCom, "chess.com":
		return query.PlatformChessCom, nil
	}
	return "", fmt.Errorf("%w: %q", query.ErrUnknownPlatform, platform)
}

// CreateAccount registers a platform account. Platform defaults to lichess.
func (s *Service) CreateAccount(ctx context.Context, username, platform string) (*storage.AccountRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	p, err := normalizePlatform(platform)
	if err != nil {
		return nil, err
	}
	return s.store.CreateAccount(ctx, strings.TrimSpace(username), p)
}

// GetAccount looks up one account
func (s *Service) GetAccount(ctx context.Context, username, platform string) (*storage.AccountRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	p, err := normalizePlatform(platform)
	if err != nil {
		return nil, err
	}
	return s.store.GetAccount(ctx, username, p)
}

// ListAccounts returns every account
func (s *Service) ListAccounts(ctx context.Context) ([]storage.AccountRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []storage.AccountRecord{}
	}
	return accounts, nil
}

// DeleteAccount removes an account and all of its games
func (s *Service) DeleteAccount(ctx context.Context, username, platform string) (int64, error) {
	acc, err := s.GetAccount(ctx, username, platform)
	if err != nil {
		return 0, err
	}

	rows, err := s.store.ExecuteQuery(ctx, `SELECT id FROM games WHERE account_id = ?`, acc.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list account games: %w", err)
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Get("id"); ok {
			if id, ok := v.(int64); ok {
				ids = append(ids, id)
			}
		}
	}

	deleted, err := s.store.DeleteAccount(ctx, acc.ID)
	if err != nil {
		return 0, err
	}
	s.forget(ids...)

	s.log.Info().
		Str("account", acc.Username).
		Str("platform", acc.Platform).
		Int64("games", deleted).
		Msg("account removed")
	return deleted, nil
}
