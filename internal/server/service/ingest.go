package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chessql/internal/pgn"
	"chessql/internal/query"
	"chessql/internal/replay"
	"chessql/internal/server/dedup"
	"chessql/internal/server/storage"

	"github.com/google/uuid"
)

// DefaultIngestPattern selects the files IngestDir reads
const DefaultIngestPattern = "*.pgn"

// IngestOptions controls how ingested games are attributed
type IngestOptions struct {
	// Account associates the games with a platform account, created on first use
	Account  string
	Platform string
	// Reference decides reference_side; defaults to Account, then the
	// service reference player
	Reference string
}

// IngestReport summarizes one ingestion batch
type IngestReport struct {
	BatchID    string   `json:"batchId"`
	Parsed     int      `json:"parsed"`
	Inserted   int      `json:"inserted"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Captures   int      `json:"captures"`
	GameIDs    []int64  `json:"gameIds"`
	AccountID  *int64   `json:"accountId,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func (r *IngestReport) add(o *IngestReport) {
	r.Parsed += o.Parsed
	r.Inserted += o.Inserted
	r.Duplicates += o.Duplicates
	r.Failed += o.Failed
	r.Captures += o.Captures
	r.GameIDs = append(r.GameIDs, o.GameIDs...)
	r.Errors = append(r.Errors, o.Errors...)
	if o.AccountID != nil {
		r.AccountID = o.AccountID
	}
}

type pendingGame struct {
	game        *pgn.Game
	fingerprint string
}

// IngestPGN parses text and stores every game that is not already present
func (s *Service) IngestPGN(ctx context.Context, text string, opts IngestOptions) (*IngestReport, error) {
	return s.IngestReader(ctx, strings.NewReader(text), opts)
}

// IngestFile ingests one PGN file
func (s *Service) IngestFile(ctx context.Context, path string, opts IngestOptions) (*IngestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	report, err := s.IngestReader(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", path, err)
	}
	return report, nil
}

// IngestDir ingests every file in dir matching pattern. Files are read in
// name order; the reports are merged under one batch id.
func (s *Service) IngestDir(ctx context.Context, dir, pattern string, opts IngestOptions) (*IngestReport, error) {
	if pattern == "" {
		pattern = DefaultIngestPattern
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(files)

	total := &IngestReport{BatchID: uuid.New().String(), GameIDs: []int64{}}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		report, err := s.IngestFile(ctx, path, opts)
		if err != nil {
			if errors.Is(err, ErrStorageDisabled) || errors.Is(err, context.Canceled) {
				return total, err
			}
			total.Errors = append(total.Errors, err.Error())
			continue
		}
		total.add(report)
	}

	s.log.Info().
		Str("batch", total.BatchID).
		Str("dir", dir).
		Int("files", len(files)).
		Int("inserted", total.Inserted).
		Int("duplicates", total.Duplicates).
		Msg("directory ingested")
	return total, nil
}

// IngestReader parses PGN from r. Games are replayed through the analyzer
// and written one transaction per game.
func (s *Service) IngestReader(ctx context.Context, r io.Reader, opts IngestOptions) (*IngestReport, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	games, err := pgn.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PGN: %w", err)
	}

	report := &IngestReport{BatchID: uuid.New().String(), Parsed: len(games), GameIDs: []int64{}}

	var account *storage.AccountRecord
	if opts.Account != "" {
		account, err = s.ensureAccount(ctx, opts.Account, opts.Platform)
		if err != nil {
			return nil, err
		}
		report.AccountID = &account.ID
	}

	reference := opts.Reference
	if reference == "" && account != nil {
		reference = account.Username
	}
	if reference == "" {
		reference = s.rewriter.Reference()
	}

	pending := s.filterDuplicates(ctx, games, report)
	if len(pending) == 0 {
		return report, nil
	}

	jobs := make([]replay.Job, len(pending))
	for i, p := range pending {
		jobs[i] = replay.Job{
			MoveText:  p.game.MoveText,
			White:     p.game.White(),
			Black:     p.game.Black(),
			Reference: playerName(reference, p.game.White(), p.game.Black()),
		}
	}

	analyses, err := s.analyzer.AnalyzeAll(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to replay games: %w", err)
	}

	for i, p := range pending {
		record := gameRecord(p.game, analyses[i].ReferenceSide)
		if account != nil {
			record.AccountID = &account.ID
		}
		captures := captureRecords(analyses[i].Events)

		id, err := s.store.InsertGame(ctx, record, captures)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s vs %s: %v", record.WhitePlayer, record.BlackPlayer, err))
			s.log.Warn().Err(err).Str("batch", report.BatchID).Msg("game insert failed")
			continue
		}

		if s.dedup != nil {
			if err := s.dedup.Put(p.fingerprint, id); err != nil {
				s.log.Warn().Err(err).Int64("game", id).Msg("failed to index fingerprint")
			}
		}

		report.Inserted++
		report.Captures += len(captures)
		report.GameIDs = append(report.GameIDs, id)
		s.log.Debug().
			Int64("game", id).
			Str("white", record.WhitePlayer).
			Str("black", record.BlackPlayer).
			Int("captures", len(captures)).
			Msg("game ingested")
	}

	if account != nil && report.Inserted > 0 {
		s.store.RecordSync(account.ID, time.Now().UTC())
	}

	s.log.Info().
		Str("batch", report.BatchID).
		Int("parsed", report.Parsed).
		Int("inserted", report.Inserted).
		Int("duplicates", report.Duplicates).
		Int("failed", report.Failed).
		Msg("PGN ingested")
	return report, nil
}

func (s *Service) ensureAccount(ctx context.Context, username, platform string) (*storage.AccountRecord, error) {
	if platform == "" {
		platform = query.PlatformLichess
	}
	acc, err := s.store.GetAccount(ctx, username, platform)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	acc, err = s.store.CreateAccount(ctx, username, platform)
	if errors.Is(err, storage.ErrAccountExists) {
		return s.store.GetAccount(ctx, username, platform)
	}
	return acc, err
}

// filterDuplicates drops games already stored, by platform id or content
// fingerprint, and repeats within the batch itself
func (s *Service) filterDuplicates(ctx context.Context, games []*pgn.Game, report *IngestReport) []pendingGame {
	seen := make(map[string]bool, len(games))
	pending := make([]pendingGame, 0, len(games))

	for _, g := range games {
		fp := dedup.Fingerprint(g.White(), g.Black(), g.Date(), g.Result(), g.MoveText)
		if seen[fp] {
			report.Duplicates++
			continue
		}
		seen[fp] = true

		dup, err := s.isStored(ctx, g, fp)
		if err != nil {
			s.log.Warn().Err(err).Msg("duplicate check failed")
		}
		if dup {
			report.Duplicates++
			continue
		}
		pending = append(pending, pendingGame{game: g, fingerprint: fp})
	}
	return pending
}

func (s *Service) isStored(ctx context.Context, g *pgn.Game, fp string) (bool, error) {
	if lid, cid := g.LichessID(), g.ChessComID(); lid != "" || cid != "" {
		exists, err := s.store.GameExistsByPlatformID(ctx, lid, cid)
		if err != nil || exists {
			return exists, err
		}
	}

	if s.dedup == nil {
		return false, nil
	}
	id, ok, err := s.dedup.Lookup(fp)
	if err != nil || !ok {
		return false, err
	}
	// The index may outlive a game deleted behind its back
	if _, err := s.store.GetGame(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// playerName returns the PGN spelling of reference when it names either
// player; account names are stored lowercased
func playerName(reference, white, black string) string {
	switch {
	case strings.EqualFold(reference, white):
		return white
	case strings.EqualFold(reference, black):
		return black
	}
	return reference
}

func gameRecord(g *pgn.Game, ref replay.Side) storage.GameRecord {
	return storage.GameRecord{
		LichessID:     g.LichessID(),
		ChessComID:    g.ChessComID(),
		PGN:           g.PGN,
		Moves:         g.MoveText,
		WhitePlayer:   g.White(),
		BlackPlayer:   g.Black(),
		Result:        g.Result(),
		DatePlayed:    g.Date(),
		Event:         g.Event(),
		Site:          g.Site(),
		Round:         g.Round(),
		ECO:           g.ECO(),
		Opening:       g.Opening(),
		TimeControl:   g.TimeControl(),
		WhiteElo:      g.WhiteElo(),
		BlackElo:      g.BlackElo(),
		Variant:       g.Variant(),
		Termination:   g.Termination(),
		WhiteResult:   string(g.WhiteResult()),
		BlackResult:   string(g.BlackResult()),
		Speed:         string(g.Speed()),
		ReferenceSide: ref.String(),
	}
}

func captureRecords(events []replay.CaptureEvent) []storage.CaptureRecord {
	out := make([]storage.CaptureRecord, len(events))
	for i, ev := range events {
		out[i] = storage.CaptureRecord{
			MoveNumber:     ev.MoveNumber,
			Side:           ev.Side.String(),
			CapturingPiece: ev.CapturingPiece.Symbol(),
			CapturedPiece:  ev.CapturedPiece.Symbol(),
			FromSquare:     ev.From.String(),
			FromConfidence: ev.FromConfidence.String(),
			ToSquare:       ev.To.String(),
			MoveNotation:   ev.Notation,
			PieceValue:     ev.PieceValue,
			CapturedValue:  ev.CapturedValue,
			IsExchange:     ev.IsExchange,
			IsSacrifice:    ev.IsSacrifice,
		}
	}
	return out
}
