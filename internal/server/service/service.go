package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chessql/internal/query"
	"chessql/internal/replay"
	"chessql/internal/server/dedup"
	"chessql/internal/server/storage"

	"github.com/rs/zerolog"
)

const (
	SessionTTL         = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
	DefaultQueryLimit  = 100
)

var (
	ErrStorageDisabled = errors.New("storage disabled")
	ErrReadOnly        = errors.New("query is not read-only")
	ErrQueryFailed     = errors.New("query failed")
	ErrInvalidSession  = errors.New("session expired or revoked")
)

// Analyzer replays a batch of games. Results come back in job order.
type Analyzer interface {
	AnalyzeAll(ctx context.Context, jobs []replay.Job) ([]replay.Analysis, error)
}

// serialAnalyzer replays on the calling goroutine with a single board
type serialAnalyzer struct{}

func (serialAnalyzer) AnalyzeAll(ctx context.Context, jobs []replay.Job) ([]replay.Analysis, error) {
	r := replay.NewReplayer()
	out := make([]replay.Analysis, len(jobs))
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = r.Analyze(j)
	}
	return out, nil
}

// Config wires a Service. Store and Dedup may be nil.
type Config struct {
	Store           *storage.Store
	Dedup           *dedup.Index
	JWTSecret       []byte
	ReferencePlayer string
	Analyzer        Analyzer
	Logger          zerolog.Logger
}

// Service coordinates ingestion, queries, accounts and API users
type Service struct {
	store     *storage.Store
	dedup     *dedup.Index
	jwtSecret []byte
	rewriter  *query.Rewriter
	analyzer  Analyzer
	log       zerolog.Logger
}

// New creates a new service instance with optional storage
func New(cfg Config) *Service {
	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = serialAnalyzer{}
	}
	return &Service{
		store:     cfg.Store,
		dedup:     cfg.Dedup,
		jwtSecret: cfg.JWTSecret,
		rewriter:  query.NewRewriter(cfg.ReferencePlayer),
		analyzer:  analyzer,
		log:       cfg.Logger,
	}
}

// ReferencePlayer returns the default reference player for queries
func (s *Service) ReferencePlayer() string {
	return s.rewriter.Reference()
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown flushes pending writes and closes storage and the dedup index
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := s.store.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}
		cancel()

		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.dedup != nil {
		if err := s.dedup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dedup index: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob runs periodic cleanup of expired sessions
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
		s.log.Warn().Err(err).Msg("cleanup: failed to delete expired sessions")
	} else if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("cleanup: expired sessions removed")
	}
}
