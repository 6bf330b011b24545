package service

import (
	"context"
	"fmt"

	"chessql/internal/replay"
	"chessql/internal/server/storage"
)

// GameDetail is a stored game with its captures
type GameDetail struct {
	Game     *storage.GameRecord     `json:"game"`
	Captures []storage.CaptureRecord `json:"captures"`
	Stats    replay.Stats            `json:"stats"`
}

// GetGame loads a game with its captures and capture statistics
func (s *Service) GetGame(ctx context.Context, id int64) (*GameDetail, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	captures, err := s.store.GetCaptures(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load captures: %w", err)
	}
	if captures == nil {
		captures = []storage.CaptureRecord{}
	}

	return &GameDetail{
		Game:     g,
		Captures: captures,
		Stats:    replay.Summarize(captureEvents(captures)),
	}, nil
}

// GetCaptures returns the captures of one game
func (s *Service) GetCaptures(ctx context.Context, id int64) ([]storage.CaptureRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.store.GetGame(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetCaptures(ctx, id)
}

// DeleteGame removes a game; its captures cascade
func (s *Service) DeleteGame(ctx context.Context, id int64) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	if err := s.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

// Stats returns database-wide totals
func (s *Service) Stats(ctx context.Context) (*storage.DatabaseStats, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.Stats(ctx)
}

// CountGames returns the number of stored games, 0 without storage
func (s *Service) CountGames(ctx context.Context) int64 {
	if s.store == nil {
		return 0
	}
	n, err := s.store.CountGames(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to count games")
		return 0
	}
	return n
}

func (s *Service) forget(ids ...int64) {
	if s.dedup == nil || len(ids) == 0 {
		return
	}
	if err := s.dedup.Forget(ids...); err != nil {
		s.log.Warn().Err(err).Int("games", len(ids)).Msg("failed to drop fingerprints")
	}
}

// captureEvents rebuilds the fields Summarize needs from stored rows
func captureEvents(records []storage.CaptureRecord) []replay.CaptureEvent {
	events := make([]replay.CaptureEvent, 0, len(records))
	for _, c := range records {
		var piece replay.Piece
		if c.CapturingPiece != "" {
			piece, _ = replay.PieceFromSymbol(c.CapturingPiece[0])
		}
		events = append(events, replay.CaptureEvent{
			MoveNumber:     c.MoveNumber,
			CapturingPiece: piece,
			IsExchange:     c.IsExchange,
			IsSacrifice:    c.IsSacrifice,
		})
	}
	return events
}
