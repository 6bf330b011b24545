package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned for a platform scope other than lichess or chesscom
var ErrUnknownPlatform = errors.New("unknown platform")

const (
	PlatformLichess  = "lichess"
	PlatformChessCom = "chesscom"
)

// Scope narrows a query to one account or one source platform
type Scope struct {
	AccountID *int64
	Platform  string
}

// PlatformFilter returns the SQL condition selecting games from platform
func PlatformFilter(platform string) (string, error) {
	switch strings.ToLower(platform) {
	case PlatformLichess:
		return "lichess_id IS NOT NULL", nil
	case PlatformChessCom, "chess.com":
		return "chesscom_id IS NOT NULL", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
}

// ApplyScope adds the scope's filters to sql. Each filter is AND'ed onto the
// top-level WHERE, or starts one, ahead of any GROUP BY, HAVING, ORDER BY or
// LIMIT. Filters already present in sql are not repeated.
func ApplyScope(sql string, s Scope) (string, error) {
	if s.AccountID != nil {
		id := *s.AccountID
		present := strings.Contains(sql, fmt.Sprintf("account_id = %d", id)) ||
			strings.Contains(sql, fmt.Sprintf("account_id=%d", id))
		if !present {
			sql = addFilter(sql, fmt.Sprintf("account_id = %d", id))
		}
	}
	if s.Platform != "" {
		f, err := PlatformFilter(s.Platform)
		if err != nil {
			return "", err
		}
		if !strings.Contains(strings.ToUpper(sql), strings.ToUpper(f)) {
			sql = addFilter(sql, f)
		}
	}
	return sql, nil
}

// trailing clauses that a filter must precede
var tailKeywords = map[string]bool{
	"group":  true,
	"having": true,
	"order":  true,
	"limit":  true,
	"window": true,
}

func addFilter(sql, filter string) string {
	toks := Tokenize(sql)

	where := -1
	tail := len(strings.TrimRight(sql, " \t\r\n;"))
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case LPAREN:
			depth++
			continue
		case RPAREN:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if t.Type == OP && t.Literal == ";" {
			tail = min(tail, t.Pos)
			break
		}
		if t.Type != IDENT {
			continue
		}
		word := strings.ToLower(t.Literal)
		switch {
		case word == "where" && where < 0:
			where = t.End
		case tailKeywords[word] && t.Pos < tail:
			tail = t.Pos
		}
	}

	before := strings.TrimRight(sql[:tail], " \t\r\n")
	after := strings.TrimLeft(sql[tail:], " \t\r\n")

	var out string
	switch {
	case where < 0 || where > tail:
		out = before + " WHERE " + filter
	case hasTopLevelOr(toks, where, tail):
		cond := strings.TrimSpace(sql[where:tail])
		out = sql[:where] + " (" + cond + ") AND " + filter
	default:
		out = before + " AND " + filter
	}
	switch {
	case after == "":
	case after[0] == ';':
		out += after
	default:
		out += " " + after
	}
	return out
}

// hasTopLevelOr reports whether an OR at parenthesis depth zero appears
// between byte offsets from and to
func hasTopLevelOr(toks []Token, from, to int) bool {
	depth := 0
	for _, t := range toks {
		if t.Pos < from || t.Pos >= to {
			continue
		}
		switch {
		case t.Type == LPAREN:
			depth++
		case t.Type == RPAREN:
			depth--
		case depth == 0 && t.Is("or"):
			return true
		}
	}
	return false
}
