package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const gameColumns = `id, account_id, lichess_id, chesscom_id, pgn_text, moves,
	white_player, black_player, result, date_played, event, site, round,
	eco_code, opening, time_control, white_elo, black_elo, variant, termination,
	white_result, black_result, speed, reference_side, created_at`

// InsertGame stores a game and its captures in one transaction and returns
// the new game id
func (s *Store) InsertGame(ctx context.Context, game GameRecord, captures []CaptureRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO games (
		account_id, lichess_id, chesscom_id, pgn_text, moves,
		white_player, black_player, result, date_played, event, site, round,
		eco_code, opening, time_control, white_elo, black_elo, variant, termination,
		white_result, black_result, speed, reference_side
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(game.AccountID), nullString(game.LichessID), nullString(game.ChessComID),
		game.PGN, game.Moves,
		game.WhitePlayer, game.BlackPlayer, game.Result, game.DatePlayed,
		game.Event, game.Site, game.Round,
		game.ECO, game.Opening, game.TimeControl, game.WhiteElo, game.BlackElo,
		game.Variant, game.Termination,
		game.WhiteResult, game.BlackResult, game.Speed, game.ReferenceSide,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game: %w", err)
	}

	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read game id: %w", err)
	}

	if len(captures) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO captures (
			game_id, move_number, side, capturing_piece, captured_piece,
			from_square, from_confidence, to_square, move_notation,
			piece_value, captured_value, is_exchange, is_sacrifice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare capture insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range captures {
			if _, err := stmt.ExecContext(ctx,
				gameID, c.MoveNumber, c.Side, c.CapturingPiece, c.CapturedPiece,
				nullString(c.FromSquare), c.FromConfidence, c.ToSquare, c.MoveNotation,
				c.PieceValue, c.CapturedValue, c.IsExchange, c.IsSacrifice,
			); err != nil {
				return 0, fmt.Errorf("failed to insert capture: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit game: %w", err)
	}
	return gameID, nil
}

// GetGame retrieves one game by id
func (s *Store) GetGame(ctx context.Context, id int64) (*GameRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// GetCaptures lists the captures of a game in move order
func (s *Store) GetCaptures(ctx context.Context, gameID int64) ([]CaptureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, game_id, move_number, side, capturing_piece, captured_piece,
		from_square, from_confidence, to_square, move_notation,
		piece_value, captured_value, is_exchange, is_sacrifice
	FROM captures WHERE game_id = ? ORDER BY move_number, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	captures := []CaptureRecord{}
	for rows.Next() {
		var (
			c        CaptureRecord
			from, to sql.NullString
			notation sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.GameID, &c.MoveNumber, &c.Side, &c.CapturingPiece, &c.CapturedPiece,
			&from, &c.FromConfidence, &to, &notation,
			&c.PieceValue, &c.CapturedValue, &c.IsExchange, &c.IsSacrifice,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		c.FromSquare, c.ToSquare, c.MoveNotation = from.String, to.String, notation.String
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return captures, nil
}

// DeleteGame removes a game; its captures cascade
func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGamesByAccount removes every game of an account and returns the count
func (s *Store) DeleteGamesByAccount(ctx context.Context, accountID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete games: %w", err)
	}
	return res.RowsAffected()
}

// GameExistsByPlatformID reports whether a game with the given lichess or
// chess.com id is already stored
func (s *Store) GameExistsByPlatformID(ctx context.Context, lichessID, chessComID string) (bool, error) {
	if lichessID == "" && chessComID == "" {
		return false, nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE lichess_id = ? OR chesscom_id = ?`,
		nullString(lichessID), nullString(chessComID),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check game existence: %w", err)
	}
	return n > 0, nil
}

// CountGames returns the number of stored games
func (s *Store) CountGames(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*GameRecord, error) {
	var (
		g                     GameRecord
		accountID             sql.NullInt64
		lichessID, chessComID sql.NullString
		text                  [18]sql.NullString
	)
	err := row.Scan(
		&g.ID, &accountID, &lichessID, &chessComID, &g.PGN, &g.Moves,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6],
		&text[7], &text[8], &text[9], &text[10], &text[11], &text[12], &text[13],
		&text[14], &text[15], &text[16], &text[17], &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		id := accountID.Int64
		g.AccountID = &id
	}
	g.LichessID, g.ChessComID = lichessID.String, chessComID.String

	fields := []*string{
		&g.WhitePlayer, &g.BlackPlayer, &g.Result, &g.DatePlayed, &g.Event, &g.Site, &g.Round,
		&g.ECO, &g.Opening, &g.TimeControl, &g.WhiteElo, &g.BlackElo, &g.Variant, &g.Termination,
		&g.WhiteResult, &g.BlackResult, &g.Speed, &g.ReferenceSide,
	}
	for i, f := range fields {
		*f = text[i].String
	}
	return &g, nil
}
