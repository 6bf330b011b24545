package storage

import "time"

// UserRecord represents an API user in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord represents an active user session
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// AccountRecord is a platform account whose games are grouped together
type AccountRecord struct {
	ID         int64      `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Platform   string     `db:"platform" json:"platform"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	LastSyncAt *time.Time `db:"last_sync_at" json:"lastSyncAt,omitempty"`
	GamesCount int        `db:"games_count" json:"gamesCount"`
}

// GameRecord represents a row in the games table
type GameRecord struct {
	ID            int64     `db:"id" json:"id"`
	AccountID     *int64    `db:"account_id" json:"accountId,omitempty"`
	LichessID     string    `db:"lichess_id" json:"lichessId,omitempty"`
	ChessComID    string    `db:"chesscom_id" json:"chesscomId,omitempty"`
	PGN           string    `db:"pgn_text" json:"pgn"`
	Moves         string    `db:"moves" json:"moves"`
	WhitePlayer   string    `db:"white_player" json:"whitePlayer"`
	BlackPlayer   string    `db:"black_player" json:"blackPlayer"`
	Result        string    `db:"result" json:"result"`
	DatePlayed    string    `db:"date_played" json:"datePlayed"`
	Event         string    `db:"event" json:"event"`
	Site          string    `db:"site" json:"site"`
	Round         string    `db:"round" json:"round"`
	ECO           string    `db:"eco_code" json:"eco"`
	Opening       string    `db:"opening" json:"opening"`
	TimeControl   string    `db:"time_control" json:"timeControl"`
	WhiteElo      string    `db:"white_elo" json:"whiteElo"`
	BlackElo      string    `db:"black_elo" json:"blackElo"`
	Variant       string    `db:"variant" json:"variant"`
	Termination   string    `db:"termination" json:"termination"`
	WhiteResult   string    `db:"white_result" json:"whiteResult"`
	BlackResult   string    `db:"black_result" json:"blackResult"`
	Speed         string    `db:"speed" json:"speed"`
	ReferenceSide string    `db:"reference_side" json:"referenceSide"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// CaptureRecord represents a row in the captures table
type CaptureRecord struct {
	ID             int64  `db:"id" json:"id"`
	GameID         int64  `db:"game_id" json:"gameId"`
	MoveNumber     int    `db:"move_number" json:"moveNumber"`
	Side           string `db:"side" json:"side"`
	CapturingPiece string `db:"capturing_piece" json:"capturingPiece"`
	CapturedPiece  string `db:"captured_piece" json:"capturedPiece"`
	FromSquare     string `db:"from_square" json:"fromSquare,omitempty"`
	FromConfidence string `db:"from_confidence" json:"fromConfidence"`
	ToSquare       string `db:"to_square" json:"toSquare"`
	MoveNotation   string `db:"move_notation" json:"moveNotation"`
	PieceValue     int    `db:"piece_value" json:"pieceValue"`
	CapturedValue  int    `db:"captured_value" json:"capturedValue"`
	IsExchange     bool   `db:"is_exchange" json:"isExchange"`
	IsSacrifice    bool   `db:"is_sacrifice" json:"isSacrifice"`
}

// Schema defines the SQLite database structure. Table and column names are
// part of the query surface: user queries and rewritten predicates refer to
// games, captures, and their columns directly.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL COLLATE NOCASE,
	platform TEXT NOT NULL DEFAULT 'lichess' CHECK(platform IN ('lichess', 'chesscom')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_sync_at DATETIME,
	games_count INTEGER NOT NULL DEFAULT 0,
	UNIQUE(username, platform)
);

CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER,
	lichess_id TEXT,
	chesscom_id TEXT,
	pgn_text TEXT NOT NULL,
	moves TEXT NOT NULL,
	white_player TEXT,
	black_player TEXT,
	result TEXT,
	date_played TEXT,
	event TEXT,
	site TEXT,
	round TEXT,
	eco_code TEXT,
	opening TEXT,
	time_control TEXT,
	white_elo TEXT,
	black_elo TEXT,
	variant TEXT,
	termination TEXT,
	white_result TEXT,
	black_result TEXT,
	speed TEXT,
	reference_side TEXT NOT NULL DEFAULT 'black' CHECK(reference_side IN ('white', 'black')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player);
CREATE INDEX IF NOT EXISTS idx_games_result ON games(result);
CREATE INDEX IF NOT EXISTS idx_games_eco_code ON games(eco_code);
CREATE INDEX IF NOT EXISTS idx_games_date_played ON games(date_played);
CREATE INDEX IF NOT EXISTS idx_games_speed ON games(speed);
CREATE INDEX IF NOT EXISTS idx_games_account_id ON games(account_id);
CREATE INDEX IF NOT EXISTS idx_games_lichess_id ON games(lichess_id);
CREATE INDEX IF NOT EXISTS idx_games_chesscom_id ON games(chesscom_id);

CREATE TABLE IF NOT EXISTS captures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL,
	move_number INTEGER NOT NULL,
	side TEXT NOT NULL CHECK(side IN ('white', 'black')),
	capturing_piece TEXT NOT NULL,
	captured_piece TEXT NOT NULL,
	from_square TEXT,
	from_confidence TEXT NOT NULL DEFAULT 'unresolved',
	to_square TEXT,
	move_notation TEXT,
	piece_value INTEGER,
	captured_value INTEGER,
	is_exchange BOOLEAN NOT NULL DEFAULT 0,
	is_sacrifice BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_captures_game_id ON captures(game_id);
CREATE INDEX IF NOT EXISTS idx_captures_captured_piece ON captures(captured_piece);
`
