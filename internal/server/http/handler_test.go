package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chessql/internal/server/dedup"
	"chessql/internal/server/processor"
	"chessql/internal/server/service"
	"chessql/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniature = `[Event "Casual"]
[Site "https://lichess.org/qwerTYUI"]
[White "lecorvus"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "games.db"), true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	idx, err := dedup.Open("")
	require.NoError(t, err)

	queue := processor.NewReplayQueue(2, zerolog.Nop())
	svc := service.New(service.Config{
		Store:           store,
		Dedup:           idx,
		JWTSecret:       []byte("test-secret-minimum-32-characters-long"),
		ReferencePlayer: "lecorvus",
		Analyzer:        queue,
		Logger:          zerolog.Nop(),
	})
	proc := processor.New(svc, queue, zerolog.Nop())
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown(time.Second)
	})
	return NewFiberApp(proc, svc, true)
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, body := do(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	return body["token"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		status, body := do(t, app, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "ok", body["storage"])
		assert.EqualValues(t, 2, body["workers"])
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "alice")

	status, body := do(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	assert.Equal(t, fiber.StatusConflict, status, "%v", body)

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "weak",
		"password": "onlyletters",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", body["username"])

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "alice",
		"password":   "wrong-pass1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = do(t, app, fiber.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "Alice",
		"password":   "secret123",
	})
	require.Equal(t, fiber.StatusOK, status)
	fresh := body["token"].(string)

	// Logging in again replaces the registration session
	status, _ = do(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/auth/logout", fresh, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = do(t, app, fiber.MethodGet, "/api/v1/auth/me", fresh, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestGamesAndQuery(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "alice")

	status, _ := do(t, app, fiber.MethodPost, "/api/v1/games", "", map[string]string{"pgn": miniature})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := do(t, app, fiber.MethodPost, "/api/v1/games", token, map[string]string{"pgn": miniature})
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.EqualValues(t, 1, body["inserted"])
	ids := body["gameIds"].([]any)
	require.Len(t, ids, 1)
	id := int64(ids[0].(float64))
	gamePath := "/api/v1/games/" + jsonNumber(id)

	status, body = do(t, app, fiber.MethodPost, "/api/v1/games", token, map[string]string{"pgn": miniature})
	require.Equal(t, fiber.StatusCreated, status)
	assert.EqualValues(t, 1, body["duplicates"])

	status, body = do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{
		"query": "SELECT id, white_player FROM games WHERE (queen captured pawn)",
	})
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	assert.EqualValues(t, 1, body["total_count"])
	assert.EqualValues(t, 1, body["page_no"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "lecorvus", results[0].(map[string]any)["white_player"])

	status, body = do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{"query": "/Qxf7#/"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["moveSearch"])

	status, body = do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{"query": "DELETE FROM games"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "QUERY_NOT_READ_ONLY", body["code"])

	status, body = do(t, app, fiber.MethodGet, gamePath, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["captures"], 1)

	status, _ = do(t, app, fiber.MethodGet, gamePath+"/captures", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, fiber.MethodDelete, gamePath, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, fiber.MethodDelete, gamePath, token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = do(t, app, fiber.MethodGet, gamePath, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "GAME_NOT_FOUND", body["code"])

	status, _ = do(t, app, fiber.MethodGet, "/api/v1/games/abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAccounts(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "alice")

	account := map[string]string{"username": "LeCorvus", "platform": "chesscom"}
	status, body := do(t, app, fiber.MethodPost, "/api/v1/accounts", token, account)
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.Equal(t, "lecorvus", body["username"])

	status, body = do(t, app, fiber.MethodPost, "/api/v1/accounts", token, account)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "ACCOUNT_EXISTS", body["code"])

	status, _ = do(t, app, fiber.MethodGet, "/api/v1/accounts", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, fiber.MethodDelete, "/api/v1/accounts/lecorvus?platform=lichess", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = do(t, app, fiber.MethodDelete, "/api/v1/accounts/lecorvus?platform=chesscom", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["gamesDeleted"])
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{"query": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", body["code"])

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{"query": "x", "limit": 5000})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/query", "", map[string]any{"query": "x", "page_no": int64(92233720368547760)})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, fiber.MethodPost, "/api/v1/accounts", "", map[string]string{"username": "x", "platform": "fics"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/query", strings.NewReader("query=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	status, _ = do(t, app, fiber.MethodGet, "/api/v1/examples", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = do(t, app, fiber.MethodGet, "/api/v1/stats", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["totalGames"])
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
