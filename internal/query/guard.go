package query

import (
	"errors"
	"strings"
)

// ErrNotReadOnly is returned for text that is not a single SELECT statement
var ErrNotReadOnly = errors.New("only a single SELECT statement is allowed")

var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "upsert": true,
	"drop": true, "alter": true, "create": true, "truncate": true,
	"attach": true, "detach": true, "pragma": true, "vacuum": true, "reindex": true,
	"analyze": true, "begin": true, "commit": true, "rollback": true, "savepoint": true,
}

// CheckReadOnly accepts one SELECT or WITH statement, optionally followed by
// a single trailing semicolon. Statement keywords that write or change
// connection state are rejected anywhere outside string literals.
func CheckReadOnly(text string) error {
	toks := Tokenize(text)
	if len(toks) == 0 || toks[0].Type == EOF {
		return ErrNotReadOnly
	}
	if !toks[0].Is("select") && !toks[0].Is("with") {
		return ErrNotReadOnly
	}

	for i, tok := range toks {
		switch tok.Type {
		case OP:
			if tok.Literal == ";" && toks[i+1].Type != EOF {
				return ErrNotReadOnly
			}
		case IDENT:
			if writeKeywords[strings.ToLower(tok.Literal)] {
				return ErrNotReadOnly
			}
		}
	}
	return nil
}
