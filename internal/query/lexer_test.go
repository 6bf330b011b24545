package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLexerTokenTypes(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"", []TokenType{EOF}},
		{"()", []TokenType{LPAREN, RPAREN, EOF}},
		{"SELECT * FROM games WHERE (alice won)", []TokenType{IDENT, OP, IDENT, IDENT, IDENT, LPAREN, IDENT, IDENT, RPAREN, EOF}},
		{"white_elo >= 1500", []TokenType{IDENT, OP, NUMBER, EOF}},
		{"a <> b != c", []TokenType{IDENT, OP, IDENT, OP, IDENT, EOF}},
		{"games.id = c.game_id", []TokenType{IDENT, OP, IDENT, EOF}},
		{"x 2", []TokenType{IDENT, NUMBER, EOF}},
		{"2bishops", []TokenType{IDENT, EOF}},
		{"'open", []TokenType{ILLEGAL, EOF}},
		{"#", []TokenType{ILLEGAL, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got []TokenType
			for _, tok := range Tokenize(tt.input) {
				got = append(got, tok.Type)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("token types mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexerStrings(t *testing.T) {
	toks := Tokenize(`name = 'o''brien' OR name = "Magnus Carlsen"`)
	want := []Token{
		{Type: IDENT, Literal: "name", Pos: 0, End: 4},
		{Type: OP, Literal: "=", Pos: 5, End: 6},
		{Type: STRING, Literal: "o'brien", Pos: 7, End: 17},
		{Type: IDENT, Literal: "OR", Pos: 18, End: 20},
		{Type: IDENT, Literal: "name", Pos: 21, End: 25},
		{Type: OP, Literal: "=", Pos: 26, End: 27},
		{Type: STRING, Literal: "Magnus Carlsen", Pos: 28, End: 44},
		{Type: EOF, Pos: 44, End: 44},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenIs(t *testing.T) {
	tok := Tokenize("Sacrificed")[0]
	if !tok.Is("sacrificed") {
		t.Error("keyword match should ignore case")
	}
	if Tokenize("'sacrificed'")[0].Is("sacrificed") {
		t.Error("strings are never keywords")
	}
}
