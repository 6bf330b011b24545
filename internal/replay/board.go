package replay

import "strings"

// Square indexes the board as file 0-7 (a-h) and rank 0-7 (1-8)
type Square struct {
	File int
	Rank int
}

// NoSquare marks an absent square
var NoSquare = Square{-1, -1}

// ParseSquare parses "e4" style coordinates
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return Square{File: int(s[0] - 'a'), Rank: int(s[1] - '1')}, true
}

// Valid reports whether the square lies on the board
func (sq Square) Valid() bool {
	return sq.File >= 0 && sq.File < 8 && sq.Rank >= 0 && sq.Rank < 8
}

func (sq Square) String() string {
	if !sq.Valid() {
		return ""
	}
	return string([]byte{byte('a' + sq.File), byte('1' + sq.Rank)})
}

// Occupant is a colored piece standing on a square
type Occupant struct {
	Piece Piece
	Side  Side
}

// Empty reports whether no piece is present
func (o Occupant) Empty() bool {
	return o.Piece == NoPiece
}

// Board is an 8x8 grid holding at most one occupant per square
type Board struct {
	squares [8][8]Occupant
}

var backRank = [8]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting position
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset restores the starting position
func (b *Board) Reset() {
	b.squares = [8][8]Occupant{}
	for f := 0; f < 8; f++ {
		b.squares[f][0] = Occupant{backRank[f], White}
		b.squares[f][1] = Occupant{Pawn, White}
		b.squares[f][6] = Occupant{Pawn, Black}
		b.squares[f][7] = Occupant{backRank[f], Black}
	}
}

// At returns the occupant of sq, empty if sq is off the board
func (b *Board) At(sq Square) Occupant {
	if !sq.Valid() {
		return Occupant{}
	}
	return b.squares[sq.File][sq.Rank]
}

// Place puts an occupant on sq, replacing whatever was there
func (b *Board) Place(sq Square, o Occupant) {
	if sq.Valid() {
		b.squares[sq.File][sq.Rank] = o
	}
}

// Vacate empties sq
func (b *Board) Vacate(sq Square) {
	b.Place(sq, Occupant{})
}

// Move relocates the occupant of from to to
func (b *Board) Move(from, to Square) {
	o := b.At(from)
	b.Vacate(from)
	b.Place(to, o)
}

// Find returns every square holding the given piece and side, files a-h
// then ranks 1-8
func (b *Board) Find(p Piece, side Side) []Square {
	var out []Square
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			o := b.squares[f][r]
			if o.Piece == p && o.Side == side {
				out = append(out, Square{f, r})
			}
		}
	}
	return out
}

// String renders the board rank 8 first, uppercase white and lowercase black
func (b *Board) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			o := b.squares[f][r]
			switch {
			case o.Empty():
				sb.WriteByte('.')
			case o.Side == Black:
				sb.WriteByte(byte(o.Piece) + ('a' - 'A'))
			default:
				sb.WriteByte(byte(o.Piece))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (sq Square) MarshalText() ([]byte, error) {
	return []byte(sq.String()), nil
}
