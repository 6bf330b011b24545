package replay

import "strings"

// Castle identifies a castling ply
type Castle int

const (
	NoCastle Castle = iota
	CastleKingside
	CastleQueenside
)

// Hint is a disambiguation hint taken from notation such as Nbd2 or R1a3.
// A value of -1 means the coordinate was not given.
type Hint struct {
	File int
	Rank int
}

// None reports whether the hint carries no information
func (h Hint) None() bool {
	return h.File < 0 && h.Rank < 0
}

var noHint = Hint{-1, -1}

// Ply is one side's move within a move-number slot
type Ply struct {
	MoveNumber int
	Side       Side
	Token      string
	Moving     Piece // piece that leaves the origin square
	Piece      Piece // effective piece after promotion
	Promotion  Piece
	Dest       Square
	Capture    bool
	Castle     Castle
	Hint       Hint
	PawnFile   int // source file of a pawn capture, -1 otherwise
}

// ParsePly parses a single SAN token. It returns false when the token is
// empty or no destination square can be extracted.
func ParsePly(token string, side Side, moveNumber int) (Ply, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Ply{}, false
	}

	p := Ply{
		MoveNumber: moveNumber,
		Side:       side,
		Token:      token,
		Dest:       NoSquare,
		Hint:       noHint,
		PawnFile:   -1,
	}

	bare := stripMarkers(token)
	switch bare {
	case "O-O", "0-0":
		p.Castle = CastleKingside
		p.Moving, p.Piece = King, King
		return p, true
	case "O-O-O", "0-0-0":
		p.Castle = CastleQueenside
		p.Moving, p.Piece = King, King
		return p, true
	}

	p.Moving = Pawn
	if lead, ok := PieceFromSymbol(token[0]); ok && token[0] >= 'A' && token[0] <= 'Z' && lead != Pawn {
		p.Moving = lead
	}
	p.Piece = p.Moving

	if i := strings.LastIndexByte(bare, '='); i >= 0 && i+1 < len(bare) {
		promo := bare[i+1:]
		if len(promo) == 1 {
			if pc, ok := PieceFromSymbol(promo[0]); ok && promo[0] >= 'A' && promo[0] <= 'Z' {
				p.Promotion = pc
				p.Piece = pc
			}
		}
	}

	p.Capture = strings.ContainsRune(token, 'x')
	p.Dest = destination(token)
	if !p.Dest.Valid() {
		return Ply{}, false
	}

	if p.Moving == Pawn && p.Capture {
		if len(bare) >= 2 && isFile(bare[0]) && bare[1] == 'x' {
			p.PawnFile = int(bare[0] - 'a')
		}
	}

	if p.Moving != Pawn && len(bare) > 3 {
		switch c := bare[1]; {
		case isFile(c):
			p.Hint.File = int(c - 'a')
		case isRank(c):
			p.Hint.Rank = int(c - '1')
		}
	}

	return p, true
}

// destination strips the leading piece letter and check markers, then takes the
// square after x for pawn captures, otherwise the first file-rank pair
func destination(token string) Square {
	clean := token
	if len(clean) > 0 && strings.IndexByte("KQRBN", clean[0]) >= 0 {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("+", "", "#", "").Replace(clean)

	if strings.ContainsRune(clean, 'x') && len(clean) >= 4 {
		if isFile(clean[0]) && clean[1] == 'x' && isFile(clean[2]) && isRank(clean[3]) {
			sq, _ := ParseSquare(clean[2:4])
			return sq
		}
	}

	for i := 0; i+1 < len(clean); i++ {
		if isFile(clean[i]) && isRank(clean[i+1]) {
			sq, _ := ParseSquare(clean[i : i+2])
			return sq
		}
	}
	return NoSquare
}

// stripMarkers removes trailing check, mate and annotation glyphs
func stripMarkers(token string) string {
	return strings.TrimRight(token, "+#!?")
}

func isFile(c byte) bool { return c >= 'a' && c <= 'h' }
func isRank(c byte) bool { return c >= '1' && c <= '8' }
