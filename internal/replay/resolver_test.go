package replay

import "testing"

func boardWith(pieces map[string]Occupant) *Board {
	b := &Board{}
	for s, o := range pieces {
		b.Place(sq(s), o)
	}
	return b
}

func TestResolve(t *testing.T) {
	wn := Occupant{Knight, White}
	wr := Occupant{Rook, White}
	wp := Occupant{Pawn, White}

	tests := []struct {
		name  string
		board map[string]Occupant
		token string
		want  string
		conf  Confidence
	}{
		{"single candidate", map[string]Occupant{"g1": wn}, "Nf3", "g1", Exact},
		{"pawn capture file", map[string]Occupant{"c4": wp, "e4": wp}, "exd5", "e4", Exact},
		{"file hint", map[string]Occupant{"b1": wn, "f3": wn}, "Nbd2", "b1", Disambiguated},
		{"rank hint", map[string]Occupant{"a1": wr, "a5": wr}, "R1a3", "a1", Disambiguated},
		{"movement rules", map[string]Occupant{"a8": wr, "h1": wr}, "Rd1", "h1", Geometric},
		{"capture movement rules", map[string]Occupant{"a1": wn, "e5": wn}, "Nxf7", "e5", Geometric},
		{"fallback to first", map[string]Occupant{"a1": wn, "h8": wn}, "Nd4", "a1", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParsePly(tt.token, White, 1)
			if !ok {
				t.Fatalf("ParsePly(%q) failed", tt.token)
			}
			res := Resolve(boardWith(tt.board), p)
			if !res.Found() {
				t.Fatalf("Resolve(%q) found nothing", tt.token)
			}
			if res.Square.String() != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.token, res.Square, tt.want)
			}
			if res.Confidence != tt.conf {
				t.Errorf("Resolve(%q) confidence = %s, want %s", tt.token, res.Confidence, tt.conf)
			}
		})
	}
}

func TestResolveUnresolved(t *testing.T) {
	p, _ := ParsePly("Nf3", White, 1)
	res := Resolve(&Board{}, p)
	if res.Found() {
		t.Errorf("expected no origin on empty board, got %s", res.Square)
	}
	if res.Confidence != Unresolved {
		t.Errorf("confidence = %s, want unresolved", res.Confidence)
	}
}

func TestCanReachPawn(t *testing.T) {
	tests := []struct {
		from, to string
		side     Side
		capture  bool
		want     bool
	}{
		{"e2", "e4", White, false, true},
		{"e3", "e5", White, false, false},
		{"e7", "e5", Black, false, true},
		{"e4", "e3", White, false, false},
		{"e4", "d5", White, true, true},
		{"e4", "d3", White, true, false},
		{"e5", "d4", Black, true, true},
	}
	for _, tt := range tests {
		if got := canReach(Pawn, sq(tt.from), sq(tt.to), tt.side, tt.capture); got != tt.want {
			t.Errorf("canReach(P %s->%s %s capture=%v) = %v, want %v", tt.from, tt.to, tt.side, tt.capture, got, tt.want)
		}
	}
}
