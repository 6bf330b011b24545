package query

import (
	"fmt"
	"strconv"
	"strings"

	"chessql/internal/replay"
)

// Clause is a recognized chess predicate. The set of implementations is
// closed: PlayerResult, PieceEvent, SpecificCapture and Promotion.
type Clause interface {
	clause()
	String() string
}

// Outcome is a game result from one player's perspective
type Outcome string

const (
	Won  Outcome = "win"
	Lost Outcome = "loss"
	Drew Outcome = "draw"
)

var outcomeWords = map[string]Outcome{
	"won":  Won,
	"win":  Won,
	"lost": Lost,
	"loss": Lost,
	"drew": Drew,
	"draw": Drew,
}

// Event selects the classification flag of a capture
type Event string

const (
	Sacrificed Event = "sacrificed"
	Exchanged  Event = "exchanged"
)

// Column is the captures table flag column for the event
func (e Event) Column() string {
	if e == Exchanged {
		return "is_exchange"
	}
	return "is_sacrifice"
}

// Bound restricts matching captures by move number
type Bound struct {
	After bool
	Move  int
}

func (b Bound) String() string {
	if b.After {
		return "after move " + strconv.Itoa(b.Move)
	}
	return "before move " + strconv.Itoa(b.Move)
}

// Owner is the player a piece event is attributed to. The zero value means
// any player.
type Owner struct {
	Opponent bool
	Player   string
}

// Any reports whether no owner was given
func (o Owner) Any() bool {
	return !o.Opponent && o.Player == ""
}

func (o Owner) String() string {
	if o.Opponent {
		return "opponent"
	}
	return o.Player
}

// PlayerResult is "(alice won)"
type PlayerResult struct {
	Player  string
	Outcome Outcome
}

// PieceEvent is "(queen sacrificed)", "(alice knight exchanged before move 20)"
// or "(opponent rook sacrificed)". Piece is the captured piece.
type PieceEvent struct {
	Owner Owner
	Piece replay.Piece
	Event Event
	Bound *Bound
}

// SpecificCapture is "(knight captured rook)" or "(captured rook with knight)"
type SpecificCapture struct {
	Capturing replay.Piece
	Captured  replay.Piece
	Bound     *Bound
}

// Promotion is "(pawn promoted to queen x 2)". Player is empty unless the
// clause names one; Count is zero when no repetition was given.
type Promotion struct {
	Player string
	Piece  replay.Piece
	Count  int
	Bound  *Bound
}

func (PlayerResult) clause()    {}
func (PieceEvent) clause()      {}
func (SpecificCapture) clause() {}
func (Promotion) clause()       {}

func (c PlayerResult) String() string {
	return fmt.Sprintf("(%s %s)", c.Player, c.Outcome)
}

func (c PieceEvent) String() string {
	parts := []string{}
	if !c.Owner.Any() {
		parts = append(parts, c.Owner.String())
	}
	parts = append(parts, c.Piece.Name(), string(c.Event))
	if c.Bound != nil {
		parts = append(parts, c.Bound.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (c SpecificCapture) String() string {
	s := c.Capturing.Name() + " captured " + c.Captured.Name()
	if c.Bound != nil {
		s += " " + c.Bound.String()
	}
	return "(" + s + ")"
}

func (c Promotion) String() string {
	parts := []string{}
	if c.Player != "" {
		parts = append(parts, c.Player)
	}
	parts = append(parts, "pawn promoted to", c.Piece.Name())
	if c.Count > 0 {
		parts = append(parts, "x", strconv.Itoa(c.Count))
	}
	if c.Bound != nil {
		parts = append(parts, c.Bound.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// excluded words are never taken as player names
var excluded = map[string]bool{
	"won": true, "lost": true, "drew": true, "win": true, "loss": true, "draw": true,
	"and": true, "or": true, "where": true,
	"pawn": true, "bishop": true, "knight": true, "rook": true, "queen": true, "king": true,
	"promoted": true, "to": true, "exchanged": true, "sacrificed": true,
	"once": true, "twice": true, "thrice": true, "times": true, "time": true, "x": true,
	"captured": true, "took": true, "with": true, "before": true, "after": true, "move": true,
	"opponent": true,
}

var countWords = map[string]int{
	"once":   1,
	"twice":  2,
	"thrice": 3,
}

// matcher is a cursor over the tokens of one parenthesized group
type matcher struct {
	toks []Token
	i    int
}

func (m *matcher) peek() Token {
	if m.i < len(m.toks) {
		return m.toks[m.i]
	}
	return Token{Type: EOF}
}

func (m *matcher) done() bool {
	return m.i >= len(m.toks)
}

func (m *matcher) word(words ...string) bool {
	t := m.peek()
	for _, w := range words {
		if t.Is(w) {
			m.i++
			return true
		}
	}
	return false
}

func (m *matcher) piece() (replay.Piece, bool) {
	p, ok := pieceWord(m.peek())
	if ok {
		m.i++
	}
	return p, ok
}

func (m *matcher) number() (int, bool) {
	t := m.peek()
	if t.Type != NUMBER {
		return 0, false
	}
	n, err := strconv.Atoi(t.Literal)
	if err != nil {
		return 0, false
	}
	m.i++
	return n, true
}

func (m *matcher) player() (string, bool) {
	t := m.peek()
	switch {
	case t.Type == STRING && strings.TrimSpace(t.Literal) != "":
	case t.Type == IDENT && isPlayerIdent(t.Literal):
	default:
		return "", false
	}
	m.i++
	return t.Literal, true
}

// bound := ("before" | "after") "move" NUMBER
func (m *matcher) bound() (*Bound, bool) {
	save := m.i
	after := false
	switch {
	case m.word("before"):
	case m.word("after"):
		after = true
	default:
		return nil, false
	}
	if !m.word("move") {
		m.i = save
		return nil, false
	}
	n, ok := m.number()
	if !ok {
		m.i = save
		return nil, false
	}
	return &Bound{After: after, Move: n}, true
}

// count := "x" NUMBER ["times"] | "once" | "twice" | "thrice"
func (m *matcher) count() (int, bool) {
	t := m.peek()
	if n, ok := countWords[strings.ToLower(t.Literal)]; ok && t.Type == IDENT {
		m.i++
		return n, true
	}
	save := m.i
	if !m.word("x") {
		return 0, false
	}
	n, ok := m.number()
	if !ok || n < 1 {
		m.i = save
		return 0, false
	}
	m.word("times", "time")
	return n, true
}

func (m *matcher) optionalBound() (*Bound, bool) {
	if m.done() {
		return nil, true
	}
	b, ok := m.bound()
	return b, ok && m.done()
}

func pieceWord(t Token) (replay.Piece, bool) {
	if t.Type != IDENT {
		return replay.NoPiece, false
	}
	name := strings.ToLower(t.Literal)
	if p, ok := replay.PieceFromName(name); ok {
		return p, true
	}
	if strings.HasSuffix(name, "s") {
		return replay.PieceFromName(strings.TrimSuffix(name, "s"))
	}
	return replay.NoPiece, false
}

func isPlayerIdent(s string) bool {
	if excluded[strings.ToLower(s)] {
		return false
	}
	_, isPiece := pieceWord(Token{Type: IDENT, Literal: s})
	return !isPiece
}

// matchClause tries every clause production against the full content of a
// group. Productions are attempted from the most to the least specific so a
// leading player name is never mistaken for a piece owner of another shape.
func matchClause(toks []Token) (Clause, bool) {
	if len(toks) == 0 {
		return nil, false
	}
	for _, match := range []func(*matcher) (Clause, bool){
		matchPlayerResult,
		matchPromotion,
		matchSpecificCapture,
		matchPieceEvent,
	} {
		m := &matcher{toks: toks}
		if c, ok := match(m); ok {
			return c, true
		}
	}
	return nil, false
}

// player ("won" | "lost" | "drew" | "win" | "loss" | "draw")
func matchPlayerResult(m *matcher) (Clause, bool) {
	player, ok := m.player()
	if !ok {
		return nil, false
	}
	outcome, ok := outcomeWords[strings.ToLower(m.peek().Literal)]
	if !ok || m.peek().Type != IDENT {
		return nil, false
	}
	m.i++
	if !m.done() {
		return nil, false
	}
	return PlayerResult{Player: player, Outcome: outcome}, true
}

// [owner] piece event [bound] | event piece [bound]
func matchPieceEvent(m *matcher) (Clause, bool) {
	var c PieceEvent

	if ev, ok := eventWord(m.peek()); ok {
		m.i++
		p, ok := m.piece()
		if !ok {
			return nil, false
		}
		c.Piece, c.Event = p, ev
	} else {
		switch {
		case m.word("opponent"):
			c.Owner.Opponent = true
		default:
			if player, ok := m.player(); ok {
				c.Owner.Player = player
			}
		}
		p, ok := m.piece()
		if !ok {
			return nil, false
		}
		ev, ok := eventWord(m.peek())
		if !ok {
			return nil, false
		}
		m.i++
		c.Piece, c.Event = p, ev
	}

	b, ok := m.optionalBound()
	if !ok {
		return nil, false
	}
	c.Bound = b
	return c, true
}

// piece "captured" piece [bound] | ("captured" | "took") piece "with" piece [bound]
func matchSpecificCapture(m *matcher) (Clause, bool) {
	var c SpecificCapture

	if m.word("captured", "took") {
		captured, ok := m.piece()
		if !ok || !m.word("with") {
			return nil, false
		}
		capturing, ok := m.piece()
		if !ok {
			return nil, false
		}
		c.Capturing, c.Captured = capturing, captured
	} else {
		capturing, ok := m.piece()
		if !ok || !m.word("captured") {
			return nil, false
		}
		captured, ok := m.piece()
		if !ok {
			return nil, false
		}
		c.Capturing, c.Captured = capturing, captured
	}

	b, ok := m.optionalBound()
	if !ok {
		return nil, false
	}
	c.Bound = b
	return c, true
}

// [player] ["pawn"] "promoted" "to" piece [count] [bound], count and bound in
// either order
func matchPromotion(m *matcher) (Clause, bool) {
	var c Promotion

	if player, ok := m.player(); ok {
		c.Player = player
	}
	m.word("pawn", "pawns")
	if !m.word("promoted") || !m.word("to") {
		return nil, false
	}
	p, ok := m.piece()
	if !ok {
		return nil, false
	}
	c.Piece = p

	for !m.done() {
		if c.Count == 0 {
			if n, ok := m.count(); ok {
				c.Count = n
				continue
			}
		}
		if c.Bound == nil {
			if b, ok := m.bound(); ok {
				c.Bound = b
				continue
			}
		}
		return nil, false
	}
	return c, true
}

func eventWord(t Token) (Event, bool) {
	switch {
	case t.Is("sacrificed"):
		return Sacrificed, true
	case t.Is("exchanged"):
		return Exchanged, true
	}
	return "", false
}
