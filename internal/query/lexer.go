// Package query rewrites ChessQL, a SQL dialect with embedded chess
// predicates such as "(queen sacrificed)", into plain SQL over the games and
// captures tables.
package query

import "strings"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	LPAREN // (
	RPAREN // )

	IDENT  // select, white_player, games.id, alice
	NUMBER // 0, 42, 1500
	STRING // 'alice', "bob"
	OP     // = <> != < > <= >= , * ; + - /
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	OP:      "OP",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a lexical token. Pos and End delimit the token's bytes in the
// input, quotes included for strings. Literal holds the unquoted value for
// strings and the raw text otherwise.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
	End     int
}

// Is reports whether the token is an identifier equal to word, ignoring case
func (t Token) Is(word string) bool {
	return t.Type == IDENT && strings.EqualFold(t.Literal, word)
}

// Lexer tokenizes query text
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize returns every token of input, ending with EOF
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.pos
	if start > len(l.input) {
		start = len(l.input)
	}
	tok := Token{Pos: start}

	switch {
	case l.pos >= len(l.input):
		tok.Type = EOF
	case l.ch == '(':
		tok.Type = LPAREN
		tok.Literal = "("
		l.readChar()
	case l.ch == ')':
		tok.Type = RPAREN
		tok.Literal = ")"
		l.readChar()
	case l.ch == '\'' || l.ch == '"':
		value, ok := l.readString()
		tok.Literal = value
		tok.Type = STRING
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = l.input[start:l.pos]
		}
	case isDigit(l.ch):
		tok.Literal = l.readNumber()
		tok.Type = NUMBER
		if isIdentChar(l.ch) {
			l.readIdent()
			tok.Type = IDENT
			tok.Literal = l.input[start:l.pos]
		}
	case isIdentStart(l.ch):
		tok.Type = IDENT
		tok.Literal = l.readIdent()
	default:
		tok.Literal = l.readOperator()
		tok.Type = OP
		if tok.Literal == "" {
			tok.Type = ILLEGAL
			tok.Literal = string(l.ch)
			l.readChar()
		}
	}

	tok.End = l.pos
	if tok.End > len(l.input) {
		tok.End = len(l.input)
	}
	return tok
}

// readString consumes a quoted literal. A doubled quote inside the literal
// stands for one quote character. ok is false when the closing quote is
// missing.
func (l *Lexer) readString() (value string, ok bool) {
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for l.pos < len(l.input) {
		if l.ch == quote {
			if l.peekChar() == quote {
				sb.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return sb.String(), true
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return sb.String(), false
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

var twoCharOps = []string{"<>", "!=", "<=", ">="}

func (l *Lexer) readOperator() string {
	if l.readPos < len(l.input) {
		pair := l.input[l.pos : l.readPos+1]
		for _, op := range twoCharOps {
			if pair == op {
				l.readChar()
				l.readChar()
				return op
			}
		}
	}
	switch l.ch {
	case '=', '<', '>', ',', '*', ';', '+', '-', '/', '%':
		op := string(l.ch)
		l.readChar()
		return op
	}
	return ""
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

// isIdentChar accepts dots so qualified names like games.id stay one token
func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '.'
}
