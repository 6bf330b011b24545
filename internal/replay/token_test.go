package replay

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sq(s string) Square {
	v, ok := ParseSquare(s)
	if !ok {
		panic("bad square " + s)
	}
	return v
}

func TestParsePly(t *testing.T) {
	tests := []struct {
		token string
		side  Side
		want  Ply
	}{
		{"Nbd2", White, Ply{Token: "Nbd2", Moving: Knight, Piece: Knight, Dest: sq("d2"), Hint: Hint{1, -1}, PawnFile: -1}},
		{"R1a3", Black, Ply{Token: "R1a3", Side: Black, Moving: Rook, Piece: Rook, Dest: sq("a3"), Hint: Hint{-1, 0}, PawnFile: -1}},
		{"exd5", White, Ply{Token: "exd5", Moving: Pawn, Piece: Pawn, Dest: sq("d5"), Capture: true, Hint: noHint, PawnFile: 4}},
		{"Qe2+", White, Ply{Token: "Qe2+", Moving: Queen, Piece: Queen, Dest: sq("e2"), Hint: noHint, PawnFile: -1}},
		{"Kxf7", Black, Ply{Token: "Kxf7", Side: Black, Moving: King, Piece: King, Dest: sq("f7"), Capture: true, Hint: noHint, PawnFile: -1}},
		{"bxa8=Q+", White, Ply{Token: "bxa8=Q+", Moving: Pawn, Piece: Queen, Promotion: Queen, Dest: sq("a8"), Capture: true, Hint: noHint, PawnFile: 1}},
		{"e1=N", Black, Ply{Token: "e1=N", Side: Black, Moving: Pawn, Piece: Knight, Promotion: Knight, Dest: sq("e1"), Hint: noHint, PawnFile: -1}},
		{"O-O", White, Ply{Token: "O-O", Moving: King, Piece: King, Castle: CastleKingside, Dest: NoSquare, Hint: noHint, PawnFile: -1}},
		{"O-O-O+", Black, Ply{Token: "O-O-O+", Side: Black, Moving: King, Piece: King, Castle: CastleQueenside, Dest: NoSquare, Hint: noHint, PawnFile: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			tt.want.MoveNumber = 7
			got, ok := ParsePly(tt.token, tt.side, 7)
			if !ok {
				t.Fatalf("ParsePly(%q) returned false", tt.token)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePly(%q) mismatch (-want +got):\n%s", tt.token, diff)
			}
		})
	}
}

func TestParsePlyRejects(t *testing.T) {
	for _, token := range []string{"", "   ", "??", "xyz", "Nx"} {
		if _, ok := ParsePly(token, White, 1); ok {
			t.Errorf("ParsePly(%q) should fail", token)
		}
	}
}

func TestPieceLookup(t *testing.T) {
	if p, ok := PieceFromName("knight"); !ok || p != Knight {
		t.Errorf("PieceFromName(knight) = %v, %v", p, ok)
	}
	if p, ok := PieceFromSymbol('q'); !ok || p != Queen {
		t.Errorf("PieceFromSymbol(q) = %v, %v", p, ok)
	}
	if _, ok := PieceFromSymbol('X'); ok {
		t.Error("PieceFromSymbol(X) should fail")
	}

	values := map[Piece]int{Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9, King: 0}
	for p, want := range values {
		if got := Value(p); got != want {
			t.Errorf("Value(%s) = %d, want %d", p, got, want)
		}
	}
}
