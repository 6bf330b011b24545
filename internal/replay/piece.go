// Package replay reconstructs capture events from algebraic move text and
// classifies them as sacrifices or exchanges.
package replay

// Side is the color of a player
type Side int

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// ParseSide maps "white"/"black" to a Side
func ParseSide(s string) (Side, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

// Piece is a piece type, independent of color
type Piece byte

const (
	NoPiece Piece = 0
	Pawn    Piece = 'P'
	Knight  Piece = 'N'
	Bishop  Piece = 'B'
	Rook    Piece = 'R'
	Queen   Piece = 'Q'
	King    Piece = 'K'
)

// Pieces lists all piece types in value order
var Pieces = []Piece{Pawn, Knight, Bishop, Rook, Queen, King}

var pieceNames = map[Piece]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

// Value returns the conventional material value of a piece. King is 0 and is
// excluded from sacrifice and exchange accounting.
func Value(p Piece) int {
	switch p {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// Symbol returns the single-letter uppercase symbol
func (p Piece) Symbol() string {
	if p == NoPiece {
		return ""
	}
	return string(p)
}

// Name returns the lowercase English name
func (p Piece) Name() string {
	return pieceNames[p]
}

func (p Piece) String() string {
	return p.Symbol()
}

// PieceFromSymbol maps K,Q,R,B,N,P (either case) to a Piece
func PieceFromSymbol(c byte) (Piece, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	p := Piece(c)
	if _, ok := pieceNames[p]; ok {
		return p, true
	}
	return NoPiece, false
}

// PieceFromName maps an English piece name to a Piece
func PieceFromName(name string) (Piece, bool) {
	for p, n := range pieceNames {
		if n == name {
			return p, true
		}
	}
	return NoPiece, false
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (p Piece) MarshalText() ([]byte, error) {
	return []byte(p.Symbol()), nil
}
