package replay

// Confidence grades how an origin square was chosen
type Confidence int

const (
	Unresolved    Confidence = iota // no candidate piece on the board
	Fallback                        // several candidates, first one taken
	Geometric                       // movement rules singled out a candidate
	Disambiguated                   // notation hint matched
	Exact                           // only one candidate, or explicit pawn file
)

func (c Confidence) String() string {
	switch c {
	case Exact:
		return "exact"
	case Disambiguated:
		return "disambiguated"
	case Geometric:
		return "geometric"
	case Fallback:
		return "fallback"
	default:
		return "unresolved"
	}
}

// Resolution is the origin square picked for a ply
type Resolution struct {
	Square     Square
	Confidence Confidence
}

// Found reports whether any square was chosen
func (r Resolution) Found() bool {
	return r.Confidence != Unresolved && r.Square.Valid()
}

// Resolve finds the square the moving piece of p most plausibly came from.
// It is a heuristic, not a legal move generator: ambiguous input degrades to
// the first candidate instead of failing.
func Resolve(b *Board, p Ply) Resolution {
	if p.Moving == Pawn && p.Capture && p.PawnFile >= 0 {
		for _, sq := range b.Find(Pawn, p.Side) {
			if sq.File == p.PawnFile && canReach(Pawn, sq, p.Dest, p.Side, true) {
				return Resolution{sq, Exact}
			}
		}
	}

	candidates := b.Find(p.Moving, p.Side)
	switch len(candidates) {
	case 0:
		return Resolution{NoSquare, Unresolved}
	case 1:
		return Resolution{candidates[0], Exact}
	}

	if !p.Hint.None() {
		for _, sq := range candidates {
			if (p.Hint.File >= 0 && sq.File == p.Hint.File) || (p.Hint.Rank >= 0 && sq.Rank == p.Hint.Rank) {
				return Resolution{sq, Disambiguated}
			}
		}
	}

	if p.Capture {
		for _, sq := range candidates {
			if canReach(p.Moving, sq, p.Dest, p.Side, true) {
				return Resolution{sq, Geometric}
			}
		}
	}

	for _, sq := range candidates {
		if canReach(p.Moving, sq, p.Dest, p.Side, false) {
			return Resolution{sq, Geometric}
		}
	}

	return Resolution{candidates[0], Fallback}
}

// canReach applies simplified per-piece movement rules, ignoring blockers.
// Pawns capture diagonally and otherwise advance straight.
func canReach(piece Piece, from, to Square, side Side, capture bool) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	df := abs(to.File - from.File)
	dr := abs(to.Rank - from.Rank)

	switch piece {
	case Pawn:
		forward := to.Rank - from.Rank
		start := 1
		if side == Black {
			forward = -forward
			start = 6
		}
		if capture {
			return df == 1 && forward == 1
		}
		if df != 0 {
			return false
		}
		return forward == 1 || (forward == 2 && from.Rank == start)
	case Knight:
		return (df == 2 && dr == 1) || (df == 1 && dr == 2)
	case Bishop:
		return df == dr
	case Rook:
		return df == 0 || dr == 0
	case Queen:
		return df == 0 || dr == 0 || df == dr
	case King:
		return df <= 1 && dr <= 1
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
