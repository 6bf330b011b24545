package query

import (
	"fmt"
	"strings"
)

// Result is the outcome of rewriting one query
type Result struct {
	SQL     string        `json:"sql"`
	Clauses []Clause      `json:"-"`
	Context PlayerContext `json:"context"`
	// Ignored lists clause parts that were accepted but have no SQL form,
	// and clauses left verbatim because they could not be rendered
	Ignored []string `json:"ignored,omitempty"`
}

// ClauseStrings renders the recognized clauses in canonical form
func (r Result) ClauseStrings() []string {
	out := make([]string, len(r.Clauses))
	for i, c := range r.Clauses {
		out[i] = c.String()
	}
	return out
}

// Rewriter turns ChessQL into SQL. It holds no mutable state and is safe for
// concurrent use.
type Rewriter struct {
	reference string
}

// NewRewriter creates a rewriter. referencePlayer is the player "opponent"
// clauses are measured against.
func NewRewriter(referencePlayer string) *Rewriter {
	return &Rewriter{reference: strings.TrimSpace(referencePlayer)}
}

// Reference returns the configured reference player
func (r *Rewriter) Reference() string {
	return r.reference
}

// Rewrite replaces every recognized clause group with its SQL and copies
// everything else through unchanged.
//
// It runs in two passes: the first resolves the PlayerContext that owns
// promotion clauses, the second renders the clauses.
func (r *Rewriter) Rewrite(text string) Result {
	q := Parse(text)
	res := Result{Context: resolveContext(q)}

	var sb strings.Builder
	last := 0
	q.Walk(func(g *Group) bool {
		if g.Clause == nil {
			return true
		}
		frag, ok := r.render(g.Clause, res.Context, &res)
		if !ok {
			return false
		}
		res.Clauses = append(res.Clauses, g.Clause)
		sb.WriteString(text[last:g.Start])
		sb.WriteString(frag)
		last = g.End
		return false
	})
	sb.WriteString(text[last:])
	res.SQL = sb.String()
	return res
}

func (r *Rewriter) render(c Clause, ctx PlayerContext, res *Result) (string, bool) {
	switch c := c.(type) {
	case PlayerResult:
		return playerResultSQL(c), true
	case PieceEvent:
		if c.Owner.Opponent && r.reference == "" {
			res.Ignored = append(res.Ignored, fmt.Sprintf("%s: no reference player configured", c))
			return "", false
		}
		return pieceEventSQL(c, r.reference), true
	case SpecificCapture:
		return specificCaptureSQL(c), true
	case Promotion:
		if c.Bound != nil {
			res.Ignored = append(res.Ignored, fmt.Sprintf("%s: %s is not applied to promotions", c, c.Bound))
		}
		owner := c.Player
		if owner == "" {
			owner = ctx.Player
		}
		return promotionSQL(c, owner), true
	}
	return "", false
}

// Rewrite is a convenience wrapper around NewRewriter(referencePlayer).Rewrite
func Rewrite(text, referencePlayer string) Result {
	return NewRewriter(referencePlayer).Rewrite(text)
}
