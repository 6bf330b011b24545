package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chessql/internal/server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const games = `[Event "Casual"]
[Site "https://lichess.org/abcdEFGH"]
[Date "2024.03.01"]
[White "LeCorvus"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "Club"]
[Date "2024.03.02"]
[White "carol"]
[Black "lecorvus"]
[Result "1/2-1/2"]

1. e4 d5 2. exd5 Qxd5 3. Nc3 Qa5 1/2-1/2
`

// capture runs the CLI with output redirected
func capture(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	err := Run(args)
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := capture(t, args...)
	require.NoError(t, err, "%v: %s", args, out)
	return out
}

func setupDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "games.db")
	pgnPath := filepath.Join(dir, "games.pgn")
	require.NoError(t, os.WriteFile(pgnPath, []byte(games), 0644))

	mustRun(t, "init", "-path", db)
	out := mustRun(t, "ingest", "-path", db, "-input", pgnPath, "-reference", "lecorvus")
	assert.Regexp(t, `Inserted:\s+2`, out)
	return db
}

func TestIngestSkipsDuplicatesAcrossRuns(t *testing.T) {
	db := setupDB(t)

	out := mustRun(t, "ingest", "-path", db, "-input", filepath.Dir(db))
	assert.Regexp(t, `Inserted:\s+0`, out)
	assert.Regexp(t, `Duplicates:\s+2`, out)
}

func TestQueryFormats(t *testing.T) {
	db := setupDB(t)
	q := "SELECT id, white_player FROM games WHERE (pawn captured pawn)"

	out := mustRun(t, "query", "-path", db, "-q", q)
	assert.Contains(t, out, "white_player")
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "1 of 1 row(s), page 1/1")

	out = mustRun(t, "query", "-path", db, "-q", q, "-format", "csv")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "white_player"}, records[0])
	assert.Equal(t, "carol", records[1][1])

	out = mustRun(t, "query", "-path", db, "-q", "/Qxf7#/", "-format", "json")
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.EqualValues(t, 1, res["total_count"])
	assert.Equal(t, true, res["moveSearch"])

	out = mustRun(t, "query", "-path", db, "-q", "SELECT * FROM games WHERE (player won)", "-reference", "lecorvus", "-explain")
	assert.Contains(t, out, "SQL: ")
	assert.Contains(t, out, "clause: ")

	_, err = capture(t, "query", "-path", db, "-q", "DROP TABLE games")
	assert.Error(t, err)

	_, err = capture(t, "query", "-path", db, "-q", "SELECT 1", "-format", "xml")
	assert.Error(t, err)
}

func TestShowAndStats(t *testing.T) {
	db := setupDB(t)

	out := mustRun(t, "show", "-path", db, "-id", "1")
	assert.Contains(t, out, "LeCorvus")
	assert.Contains(t, out, "Captures: 1 (")

	out = mustRun(t, "stats", "-path", db)
	assert.Regexp(t, `Games:\s+2`, out)
	assert.Regexp(t, `Captures:\s+3`, out)

	_, err := capture(t, "show", "-path", db, "-id", "99")
	assert.Error(t, err)

	out = mustRun(t, "examples")
	assert.Contains(t, out, "queen sacrificed")
}

func TestAccountCommands(t *testing.T) {
	db := setupDB(t)

	out := mustRun(t, "account", "add", "-path", db, "-username", "LeCorvus", "-platform", "chesscom")
	assert.Contains(t, out, "lecorvus (chesscom")

	_, err := capture(t, "account", "add", "-path", db, "-username", "lecorvus", "-platform", "chesscom")
	assert.Error(t, err)

	out = mustRun(t, "account", "list", "-path", db)
	assert.Contains(t, out, "Total accounts: 1")

	out = mustRun(t, "account", "remove", "-path", db, "-username", "lecorvus", "-platform", "chesscom")
	assert.Contains(t, out, "0 game(s) deleted")

	_, err = capture(t, "account", "remove", "-path", db, "-username", "lecorvus", "-platform", "chesscom")
	assert.Error(t, err)
}

func TestUserCommands(t *testing.T) {
	db := setupDB(t)

	out := mustRun(t, "user", "add", "-path", db, "-username", "Admin", "-password", "secret123")
	assert.Contains(t, out, "Username: admin")

	_, err := capture(t, "user", "add", "-path", db, "-username", "short", "-password", "abc")
	assert.Error(t, err)

	mustRun(t, "user", "set-password", "-path", db, "-username", "admin", "-password", "another456")

	out = mustRun(t, "user", "list", "-path", db)
	assert.Contains(t, out, "Total users: 1")

	mustRun(t, "user", "delete", "-path", db, "-username", "admin")
}

func TestDeleteDatabase(t *testing.T) {
	db := setupDB(t)

	mustRun(t, "delete", "-path", db)
	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(defaultDedupPath(db))
	assert.True(t, os.IsNotExist(err))

	_, err = capture(t, "stats", "-path", db)
	assert.Error(t, err)
}

func TestREPLSession(t *testing.T) {
	db := setupDB(t)
	e, err := open(db, openOptions{reference: "lecorvus"})
	require.NoError(t, err)
	defer e.close()

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	s := &replSession{svc: e.svc, format: formatCSV, limit: 1, page: 1}
	ctx := context.Background()

	assert.False(t, s.execute(ctx, "SELECT id FROM games ORDER BY id"))
	assert.Equal(t, "id\n1\n", buf.String())

	buf.Reset()
	assert.False(t, s.execute(ctx, ":next"))
	assert.Equal(t, "id\n2\n", buf.String())

	buf.Reset()
	assert.False(t, s.execute(ctx, ":prev"))
	assert.False(t, s.execute(ctx, ":prev"))
	assert.Contains(t, buf.String(), "already on the first page")

	assert.False(t, s.execute(ctx, ":ref carol"))
	assert.Equal(t, "carol", s.reference)
	assert.False(t, s.execute(ctx, ":format json"))
	assert.Equal(t, formatJSON, s.format)

	buf.Reset()
	assert.False(t, s.execute(ctx, ":limit zero"))
	assert.Contains(t, buf.String(), "error")

	assert.True(t, s.execute(ctx, "exit"))
}

func TestCells(t *testing.T) {
	long := strings.Repeat("e4 ", 40)
	r := cells(storage.Row{Columns: []string{"a", "b", "c"}, Values: []any{nil, int64(7), long}}, 20)
	assert.Equal(t, "NULL", r[0])
	assert.Equal(t, "7", r[1])
	assert.Len(t, []rune(r[2]), 20)
	assert.True(t, strings.HasSuffix(r[2], "..."))
}
