package api

import (
	"encoding/json"
	"time"

	"chessql/internal/server/core"
)

// Request bodies are shared with the server
type (
	IngestRequest  = core.IngestRequest
	QueryRequest   = core.QueryRequest
	AccountRequest = core.AccountRequest
	HealthResponse = core.HealthResponse
	ErrorResponse  = core.ErrorResponse
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type IngestResponse struct {
	BatchID    string   `json:"batchId"`
	Parsed     int      `json:"parsed"`
	Inserted   int      `json:"inserted"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Captures   int      `json:"captures"`
	GameIDs    []int64  `json:"gameIds"`
	Errors     []string `json:"errors,omitempty"`
}

// QueryResponse keeps result rows raw so callers can recover column order
type QueryResponse struct {
	Query      string            `json:"query"`
	SQL        string            `json:"sql"`
	Clauses    []string          `json:"clauses,omitempty"`
	Ignored    []string          `json:"ignored,omitempty"`
	MoveSearch bool              `json:"moveSearch,omitempty"`
	Results    []json.RawMessage `json:"results"`
	Count      int               `json:"count"`
	TotalCount int               `json:"total_count"`
	core.Pagination
}

type Game struct {
	ID            int64  `json:"id"`
	WhitePlayer   string `json:"whitePlayer"`
	BlackPlayer   string `json:"blackPlayer"`
	Result        string `json:"result"`
	DatePlayed    string `json:"datePlayed"`
	Event         string `json:"event"`
	ECO           string `json:"eco"`
	Opening       string `json:"opening"`
	Speed         string `json:"speed"`
	Moves         string `json:"moves"`
	ReferenceSide string `json:"referenceSide"`
}

type Capture struct {
	MoveNumber     int    `json:"moveNumber"`
	Side           string `json:"side"`
	CapturingPiece string `json:"capturingPiece"`
	CapturedPiece  string `json:"capturedPiece"`
	FromSquare     string `json:"fromSquare,omitempty"`
	ToSquare       string `json:"toSquare"`
	MoveNotation   string `json:"moveNotation"`
	IsExchange     bool   `json:"isExchange"`
	IsSacrifice    bool   `json:"isSacrifice"`
}

type GameResponse struct {
	Game     Game      `json:"game"`
	Captures []Capture `json:"captures"`
	Stats    struct {
		TotalCaptures int `json:"totalCaptures"`
		Exchanges     int `json:"exchanges"`
		Sacrifices    int `json:"sacrifices"`
	} `json:"stats"`
}

type StatsResponse struct {
	TotalGames    int64            `json:"totalGames"`
	UniquePlayers int64            `json:"uniquePlayers"`
	Results       map[string]int64 `json:"results"`
	TotalCaptures int64            `json:"totalCaptures"`
	Sacrifices    int64            `json:"sacrifices"`
	Exchanges     int64            `json:"exchanges"`
}

type Example struct {
	Category    string `json:"category"`
	Query       string `json:"query"`
	Description string `json:"description"`
}

type Account struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Platform   string     `json:"platform"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
	GamesCount int        `json:"gamesCount"`
}

type DeleteAccountResponse struct {
	Username     string `json:"username"`
	Platform     string `json:"platform"`
	GamesDeleted int64  `json:"gamesDeleted"`
}
