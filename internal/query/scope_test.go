package query

import (
	"errors"
	"testing"
)

func accountScope(id int64) Scope {
	return Scope{AccountID: &id}
}

func TestApplyScope(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		scope Scope
		want  string
	}{
		{
			name:  "no where",
			sql:   "SELECT * FROM games",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE account_id = 7",
		},
		{
			name:  "existing where before order and limit",
			sql:   "SELECT * FROM games WHERE white_player = 'a' ORDER BY date_played DESC LIMIT 5",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE white_player = 'a' AND account_id = 7 ORDER BY date_played DESC LIMIT 5",
		},
		{
			name:  "group by without where",
			sql:   "SELECT white_player, COUNT(*) FROM games GROUP BY white_player",
			scope: accountScope(3),
			want:  "SELECT white_player, COUNT(*) FROM games WHERE account_id = 3 GROUP BY white_player",
		},
		{
			name:  "top level or is wrapped",
			sql:   "SELECT * FROM games WHERE a = 1 OR b = 2",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE (a = 1 OR b = 2) AND account_id = 7",
		},
		{
			name:  "subquery where is not top level",
			sql:   "SELECT * FROM (SELECT * FROM games WHERE x = 1) t",
			scope: accountScope(7),
			want:  "SELECT * FROM (SELECT * FROM games WHERE x = 1) t WHERE account_id = 7",
		},
		{
			name:  "exists subquery",
			sql:   "SELECT * FROM games WHERE EXISTS (SELECT 1 FROM captures c WHERE c.game_id = games.id)",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE EXISTS (SELECT 1 FROM captures c WHERE c.game_id = games.id) AND account_id = 7",
		},
		{
			name:  "trailing semicolon",
			sql:   "SELECT * FROM games;",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE account_id = 7;",
		},
		{
			name:  "account and platform",
			sql:   "SELECT * FROM games",
			scope: Scope{AccountID: accountScope(7).AccountID, Platform: "lichess"},
			want:  "SELECT * FROM games WHERE account_id = 7 AND lichess_id IS NOT NULL",
		},
		{
			name:  "chesscom platform",
			sql:   "SELECT COUNT(*) FROM games LIMIT 1",
			scope: Scope{Platform: "chesscom"},
			want:  "SELECT COUNT(*) FROM games WHERE chesscom_id IS NOT NULL LIMIT 1",
		},
		{
			name:  "account already present",
			sql:   "SELECT * FROM games WHERE account_id = 7",
			scope: accountScope(7),
			want:  "SELECT * FROM games WHERE account_id = 7",
		},
		{
			name:  "platform already present",
			sql:   "SELECT * FROM games WHERE lichess_id is not null",
			scope: Scope{Platform: "lichess"},
			want:  "SELECT * FROM games WHERE lichess_id is not null",
		},
		{
			name:  "empty scope",
			sql:   "SELECT * FROM games",
			want:  "SELECT * FROM games",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyScope(tt.sql, tt.scope)
			if err != nil {
				t.Fatalf("ApplyScope error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ApplyScope(%q)\n got: %s\nwant: %s", tt.sql, got, tt.want)
			}
		})
	}
}

func TestApplyScopeUnknownPlatform(t *testing.T) {
	_, err := ApplyScope("SELECT * FROM games", Scope{Platform: "fics"})
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestMoveSearch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/e4.*c5/", "%e4%c5%"},
		{"/O-O/", "%O-O%"},
		{`/Qh5\+/`, "%Qh5+%"},
		{`/1\. e4/`, "%1. e4%"},
		{"/N.3/", "%N_3%"},
		{" /Nf3/ ", "%Nf3%"},
	}
	for _, tt := range tests {
		if !IsMoveSearch(tt.input) {
			t.Errorf("IsMoveSearch(%q) = false", tt.input)
		}
		if got := LikePattern(tt.input); got != tt.want {
			t.Errorf("LikePattern(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	for _, in := range []string{"/", "SELECT * FROM games", "/e4"} {
		if IsMoveSearch(in) {
			t.Errorf("IsMoveSearch(%q) = true", in)
		}
	}
}

func TestCheckReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT * FROM games",
		"select count(*) from games;",
		"WITH w AS (SELECT * FROM games) SELECT * FROM w",
		"SELECT * FROM games WHERE event = 'drop table games; --'",
		"SELECT white_player || ' vs ' || black_player FROM games",
	}
	for _, q := range allowed {
		if err := CheckReadOnly(q); err != nil {
			t.Errorf("CheckReadOnly(%q) = %v", q, err)
		}
	}

	rejected := []string{
		"",
		"DELETE FROM games",
		"SELECT 1; DROP TABLE games",
		"WITH x AS (SELECT 1) DELETE FROM games",
		"PRAGMA table_info(games)",
		"ATTACH DATABASE 'x.db' AS x",
	}
	for _, q := range rejected {
		if err := CheckReadOnly(q); !errors.Is(err, ErrNotReadOnly) {
			t.Errorf("CheckReadOnly(%q) = %v, want ErrNotReadOnly", q, err)
		}
	}
}
