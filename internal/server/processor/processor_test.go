package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"chessql/internal/replay"
	"chessql/internal/server/core"
	"chessql/internal/server/service"
	"chessql/internal/server/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniature = `[Event "Casual"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "games.db"), true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	queue := NewReplayQueue(2, zerolog.Nop())
	svc := service.New(service.Config{
		Store:    store,
		Analyzer: queue,
		Logger:   zerolog.Nop(),
	})
	p := New(svc, queue, zerolog.Nop())
	t.Cleanup(func() {
		p.Close()
		svc.Shutdown(time.Second)
	})
	return p
}

func TestReplayQueueKeepsJobOrder(t *testing.T) {
	q := NewReplayQueue(4, zerolog.Nop())
	defer q.Shutdown(time.Second)

	jobs := make([]replay.Job, 50)
	for i := range jobs {
		if i%2 == 0 {
			jobs[i] = replay.Job{MoveText: "1. e4 d5 2. exd5 Qxd5", White: fmt.Sprintf("w%d", i), Reference: fmt.Sprintf("w%d", i)}
		} else {
			jobs[i] = replay.Job{MoveText: "1. e4 e5 2. Nf3 Nc6", Black: "b"}
		}
	}

	got, err := q.AnalyzeAll(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, got, len(jobs))
	for i, a := range got {
		if i%2 == 0 {
			assert.Len(t, a.Events, 2, "job %d", i)
			assert.Equal(t, replay.White, a.ReferenceSide, "job %d", i)
		} else {
			assert.Empty(t, a.Events, "job %d", i)
			assert.Equal(t, replay.Black, a.ReferenceSide, "job %d", i)
		}
	}
}

func TestReplayQueueShutdown(t *testing.T) {
	q := NewReplayQueue(1, zerolog.Nop())
	require.NoError(t, q.Shutdown(time.Second))

	_, err := q.AnalyzeAll(context.Background(), []replay.Job{{MoveText: "1. e4"}})
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Submit(context.Background(), ReplayTask{}), ErrQueueClosed)
}

func TestReplayQueueCancelled(t *testing.T) {
	q := NewReplayQueue(1, zerolog.Nop())
	defer q.Shutdown(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.AnalyzeAll(ctx, []replay.Job{{MoveText: "1. e4"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteIngestAndQuery(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	resp := p.Execute(ctx, NewIngestCommand(core.IngestRequest{PGN: miniature}))
	require.True(t, resp.Success, "%+v", resp.Error)
	report := resp.Data.(*service.IngestReport)
	require.Len(t, report.GameIDs, 1)
	gameID := report.GameIDs[0]

	resp = p.Execute(ctx, NewQueryCommand(core.QueryRequest{Query: "SELECT id FROM games WHERE (queen captured pawn)"}))
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Equal(t, 1, resp.Data.(*service.QueryResult).TotalCount)

	resp = p.Execute(ctx, NewGetGameCommand(gameID))
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.(*service.GameDetail).Captures, 1)

	resp = p.Execute(ctx, NewGetCapturesCommand(gameID))
	require.True(t, resp.Success)

	resp = p.Execute(ctx, NewStatsCommand())
	require.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Data.(*storage.DatabaseStats).TotalGames)

	resp = p.Execute(ctx, NewDeleteGameCommand(gameID))
	require.True(t, resp.Success)

	resp = p.Execute(ctx, NewGetGameCommand(gameID))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrGameNotFound, resp.Error.Code)
}

func TestExecuteErrors(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  Command
		code string
	}{
		{"write query", NewQueryCommand(core.QueryRequest{Query: "DROP TABLE games"}), core.ErrQueryNotReadOnly},
		{"broken sql", NewQueryCommand(core.QueryRequest{Query: "SELECT * FROM missing_table"}), core.ErrQueryFailed},
		{"empty query", NewQueryCommand(core.QueryRequest{Query: "  "}), core.ErrInvalidRequest},
		{"no games", NewIngestCommand(core.IngestRequest{PGN: "1. e4 e5"}), core.ErrInvalidRequest},
		{"missing account", NewDeleteAccountCommand(core.AccountRequest{Username: "ghost", Platform: "lichess"}), core.ErrAccountNotFound},
		{"bad platform", NewCreateAccountCommand(core.AccountRequest{Username: "x", Platform: "fics"}), core.ErrInvalidRequest},
		{"wrong args", Command{Type: CmdIngest, Args: "text"}, core.ErrInvalidRequest},
		{"unknown", Command{Type: CommandType(99)}, core.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := p.Execute(ctx, tt.cmd)
			require.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExecuteAccounts(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	req := core.AccountRequest{Username: "LeCorvus", Platform: "chesscom"}
	resp := p.Execute(ctx, NewCreateAccountCommand(req))
	require.True(t, resp.Success)

	resp = p.Execute(ctx, NewCreateAccountCommand(req))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrAccountExists, resp.Error.Code)

	resp = p.Execute(ctx, NewListAccountsCommand())
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.([]storage.AccountRecord), 1)

	resp = p.Execute(ctx, NewDeleteAccountCommand(req))
	require.True(t, resp.Success)
	assert.Equal(t, int64(0), resp.Data.(map[string]any)["gamesDeleted"])

	resp = p.Execute(ctx, NewExamplesCommand())
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data)
}
