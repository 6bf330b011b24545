package storage

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Row is one result row with its columns in select order
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of a column by name
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MarshalJSON encodes the row as an object that keeps column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExecuteQuery runs a user query on a connection switched to query_only and
// returns every row
func (s *Store) ExecuteQuery(ctx context.Context, query string, args ...any) ([]Row, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("failed to enter read-only mode: %w", err)
	}
	defer s.leaveReadOnly(conn)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		result = append(result, Row{Columns: columns, Values: values})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return result, nil
}

// leaveReadOnly restores write access on a pooled connection. A connection
// that cannot be reset is discarded instead of returned to the pool.
func (s *Store) leaveReadOnly(conn *sql.Conn) error {
	_, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF")
	if err == nil {
		return nil
	}
	s.log.Warn().Err(err).Msg("discarding connection stuck in read-only mode")
	conn.Raw(func(any) error { return driver.ErrBadConn })
	return fmt.Errorf("failed to leave read-only mode: %w", err)
}

func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

// DatabaseStats summarizes the stored games and captures
type DatabaseStats struct {
	TotalGames    int64            `json:"totalGames"`
	UniquePlayers int64            `json:"uniquePlayers"`
	Results       map[string]int64 `json:"results"`
	TotalCaptures int64            `json:"totalCaptures"`
	Sacrifices    int64            `json:"sacrifices"`
	Exchanges     int64            `json:"exchanges"`
}

// Stats computes database-wide counts
func (s *Store) Stats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{Results: map[string]int64{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&stats.TotalGames); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (
		SELECT white_player AS player FROM games WHERE white_player IS NOT NULL AND white_player != ''
		UNION
		SELECT black_player FROM games WHERE black_player IS NOT NULL AND black_player != ''
	)`).Scan(&stats.UniquePlayers)
	if err != nil {
		return nil, fmt.Errorf("failed to count players: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(result, ''), COUNT(*) FROM games GROUP BY result`)
	if err != nil {
		return nil, fmt.Errorf("failed to group results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			result string
			n      int64
		)
		if err := rows.Scan(&result, &n); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		stats.Results[result] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN is_sacrifice THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN is_exchange THEN 1 ELSE 0 END), 0)
	FROM captures`).Scan(&stats.TotalCaptures, &stats.Sacrifices, &stats.Exchanges)
	if err != nil {
		return nil, fmt.Errorf("failed to count captures: %w", err)
	}

	return stats, nil
}
