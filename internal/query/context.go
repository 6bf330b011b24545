package query

import "strings"

// ContextSource tells where a PlayerContext came from
type ContextSource string

const (
	SourceNone         ContextSource = ""
	SourceResultClause ContextSource = "result_clause"
	SourceWhitePlayer  ContextSource = "white_player"
	SourceBlackPlayer  ContextSource = "black_player"
)

// PlayerContext is the player that promotion clauses without an explicit
// owner are attributed to
type PlayerContext struct {
	Player string        `json:"player,omitempty"`
	Source ContextSource `json:"source,omitempty"`
}

// Known reports whether a player was found
func (c PlayerContext) Known() bool {
	return c.Player != ""
}

// resolveContext is the first pass over a parsed query. The first player
// result clause wins, then a white_player comparison, then a black_player
// comparison anywhere in the text.
func resolveContext(q *Query) PlayerContext {
	var ctx PlayerContext
	q.Walk(func(g *Group) bool {
		if ctx.Known() {
			return false
		}
		if pr, ok := g.Clause.(PlayerResult); ok {
			ctx = PlayerContext{Player: pr.Player, Source: SourceResultClause}
			return false
		}
		return true
	})
	if ctx.Known() {
		return ctx
	}

	for _, src := range []ContextSource{SourceWhitePlayer, SourceBlackPlayer} {
		if name, ok := columnEquals(q.Tokens, string(src)); ok {
			return PlayerContext{Player: name, Source: src}
		}
	}
	return PlayerContext{}
}

// columnEquals finds the first "<column> = '<value>'" in toks, with the
// column optionally table-qualified
func columnEquals(toks []Token, column string) (string, bool) {
	for i := 0; i+2 < len(toks); i++ {
		t := toks[i]
		if t.Type != IDENT {
			continue
		}
		name := strings.ToLower(t.Literal)
		if name != column && !strings.HasSuffix(name, "."+column) {
			continue
		}
		if toks[i+1].Type == OP && toks[i+1].Literal == "=" && toks[i+2].Type == STRING && toks[i+2].Literal != "" {
			return toks[i+2].Literal, true
		}
	}
	return "", false
}
