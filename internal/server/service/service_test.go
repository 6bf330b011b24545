package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chessql/internal/server/dedup"
	"chessql/internal/server/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

const scholarsMate = `[Event "Casual"]
[Site "https://lichess.org/abcdEFGH"]
[Date "2024.03.01"]
[White "LeCorvus"]
[Black "bob"]
[Result "1-0"]
[TimeControl "180+2"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`

const scandinavian = `[Event "Club"]
[Date "2024.03.02"]
[White "carol"]
[Black "lecorvus"]
[Result "1/2-1/2"]

1. e4 d5 2. exd5 Qxd5 3. Nc3 Qa5 1/2-1/2
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "games.db"), true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	idx, err := dedup.Open("")
	require.NoError(t, err)

	svc := New(Config{
		Store:           store,
		Dedup:           idx,
		JWTSecret:       []byte("test-secret-minimum-32-characters-long"),
		ReferencePlayer: "lecorvus",
		Logger:          zerolog.Nop(),
	})
	t.Cleanup(func() { svc.Shutdown(testTimeout) })
	return svc
}

func TestIngestPGN(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.IngestPGN(ctx, scholarsMate+"\n"+scandinavian, IngestOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 2, report.Inserted)
	assert.Zero(t, report.Duplicates)
	assert.Equal(t, 3, report.Captures)
	require.Len(t, report.GameIDs, 2)

	first, err := svc.GetGame(ctx, report.GameIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "LeCorvus", first.Game.WhitePlayer)
	assert.Equal(t, "white", first.Game.ReferenceSide)
	assert.Equal(t, "abcdEFGH", first.Game.LichessID)
	assert.Equal(t, "blitz", first.Game.Speed)
	assert.Equal(t, "win", first.Game.WhiteResult)
	require.Len(t, first.Captures, 1)
	assert.Equal(t, "Q", first.Captures[0].CapturingPiece)
	assert.Equal(t, "f7", first.Captures[0].ToSquare)
	assert.Equal(t, 1, first.Stats.TotalCaptures)
	assert.Equal(t, 1, first.Stats.CapturesByPiece["Q"])

	second, err := svc.GetGame(ctx, report.GameIDs[1])
	require.NoError(t, err)
	assert.Equal(t, "black", second.Game.ReferenceSide)
	assert.Equal(t, "draw", second.Game.BlackResult)
	assert.Len(t, second.Captures, 2)
}

func TestIngestSkipsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.IngestPGN(ctx, scandinavian+"\n"+scandinavian, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)

	report, err = svc.IngestPGN(ctx, scholarsMate+"\n"+scandinavian, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)

	// Deleting a game lets it be ingested again
	require.NoError(t, svc.DeleteGame(ctx, report.GameIDs[0]))
	report, err = svc.IngestPGN(ctx, scholarsMate, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}

func TestIngestWithAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.IngestPGN(ctx, scholarsMate+"\n"+scandinavian, IngestOptions{Account: "LeCorvus"})
	require.NoError(t, err)
	require.NotNil(t, report.AccountID)
	require.NoError(t, svc.store.Flush(ctx))

	acc, err := svc.GetAccount(ctx, "lecorvus", "")
	require.NoError(t, err)
	assert.Equal(t, *report.AccountID, acc.ID)
	assert.Equal(t, "lichess", acc.Platform)
	assert.Equal(t, 2, acc.GamesCount)
	assert.NotNil(t, acc.LastSyncAt)

	scoped, err := svc.ExecuteQuery(ctx, "SELECT id FROM games", QueryOptions{AccountID: &acc.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.TotalCount)

	deleted, err := svc.DeleteAccount(ctx, "LECORVUS", "lichess")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Zero(t, svc.CountGames(ctx))

	// Fingerprints went with the games
	report, err = svc.IngestPGN(ctx, scandinavian, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	_, err = svc.GetAccount(ctx, "lecorvus", "lichess")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngestDir(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pgn"), []byte(scholarsMate), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pgn"), []byte(scandinavian), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(scandinavian), 0644))

	report, err := svc.IngestDir(context.Background(), dir, "", IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 2, report.Inserted)
	assert.Empty(t, report.Errors)
}

func TestExecuteQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.IngestPGN(ctx, scholarsMate+"\n"+scandinavian, IngestOptions{})
	require.NoError(t, err)

	res, err := svc.ExecuteQuery(ctx, "SELECT white_player FROM games WHERE (pawn captured pawn)", QueryOptions{})
	require.NoError(t, err)
	assert.Contains(t, res.SQL, "EXISTS (SELECT 1 FROM captures c")
	assert.Equal(t, []string{"(pawn captured pawn)"}, res.Clauses)
	require.Equal(t, 1, res.TotalCount)
	v, _ := res.Results[0].Get("white_player")
	assert.Equal(t, "carol", v)

	res, err = svc.ExecuteQuery(ctx, "/Qxf7#/", QueryOptions{})
	require.NoError(t, err)
	assert.True(t, res.MoveSearch)
	assert.Equal(t, 1, res.TotalCount)

	res, err = svc.ExecuteQuery(ctx, "SELECT id FROM games", QueryOptions{Platform: "lichess"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)
	assert.Contains(t, res.SQL, "lichess_id IS NOT NULL")
}

func TestExecuteQueryPages(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.IngestPGN(ctx, scholarsMate+"\n"+scandinavian, IngestOptions{})
	require.NoError(t, err)

	res, err := svc.ExecuteQuery(ctx, "SELECT id FROM games ORDER BY id", QueryOptions{Limit: 1, PageNo: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 2, res.TotalPages)
	assert.True(t, res.HasPrev)
	assert.False(t, res.HasNext)

	offset := 5
	res, err = svc.ExecuteQuery(ctx, "SELECT id FROM games", QueryOptions{Offset: &offset})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.NotNil(t, res.Results)

	res, err = svc.ExecuteQuery(ctx, "SELECT * FROM games", QueryOptions{PageNo: math.MaxInt64/100 + 2, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, 2, res.TotalCount)

	res, err = svc.ExecuteQuery(ctx, "SELECT * FROM games", QueryOptions{Limit: math.MaxInt64})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
}

func TestExecuteQueryRejects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ExecuteQuery(ctx, "DELETE FROM games", QueryOptions{})
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = svc.ExecuteQuery(ctx, "SELECT * FROM games; DROP TABLE games", QueryOptions{})
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = svc.ExecuteQuery(ctx, "SELECT * FROM nowhere", QueryOptions{})
	assert.ErrorIs(t, err, ErrQueryFailed)

	_, err = svc.ExecuteQuery(ctx, "SELECT * FROM games", QueryOptions{Platform: "fics"})
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	five := 5
	tests := []struct {
		name       string
		total      int
		page       int
		limit      int
		offset     *int
		wantPage   int
		wantOffset int
		wantPages  int
		next       bool
		prev       bool
	}{
		{"defaults", 250, 0, 0, nil, 1, 0, 3, true, false},
		{"last page", 250, 3, 100, nil, 3, 200, 3, false, true},
		{"offset wins", 12, 1, 5, &five, 2, 5, 3, true, true},
		{"empty", 0, 1, 10, nil, 1, 0, 0, false, false},
		{"past the end", 250, 9, 100, nil, 9, 300, 3, false, true},
		{"huge page", 250, math.MaxInt64/100 + 2, 100, nil, math.MaxInt64/100 + 2, 300, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.page, tt.limit, tt.offset)
			assert.Equal(t, tt.wantPage, p.PageNo)
			assert.Equal(t, tt.wantOffset, p.Offset)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.next, p.HasNext)
			assert.Equal(t, tt.prev, p.HasPrev)
		})
	}
}

func TestStorageDisabled(t *testing.T) {
	svc := New(Config{Logger: zerolog.Nop()})
	ctx := context.Background()

	assert.Equal(t, "disabled", svc.GetStorageHealth())
	_, err := svc.IngestPGN(ctx, scholarsMate, IngestOptions{})
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.ExecuteQuery(ctx, "SELECT 1", QueryOptions{})
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.Stats(ctx)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.NoError(t, svc.Shutdown(testTimeout))
}
