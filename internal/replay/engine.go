package replay

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	resultSuffix = regexp.MustCompile(`\s+(1-0|0-1|1/2-1/2|\*)\s*$`)
	moveNumber   = regexp.MustCompile(`(\d+)\.`)
)

// CaptureEvent describes one capturing ply
type CaptureEvent struct {
	MoveNumber     int        `json:"moveNumber"`
	Side           Side       `json:"side"`
	CapturingPiece Piece      `json:"capturingPiece"`
	CapturedPiece  Piece      `json:"capturedPiece"`
	From           Square     `json:"from"`
	FromConfidence Confidence `json:"fromConfidence"`
	To             Square     `json:"to"`
	Notation       string     `json:"notation"`
	PieceValue     int        `json:"pieceValue"`
	CapturedValue  int        `json:"capturedValue"`
	IsExchange     bool       `json:"isExchange"`
	IsSacrifice    bool       `json:"isSacrifice"`
}

// Replayer drives a board through a game's move text. A Replayer is not safe
// for concurrent use; give each goroutine its own.
type Replayer struct {
	board *Board
}

// NewReplayer creates a replayer with a fresh board
func NewReplayer() *Replayer {
	return &Replayer{board: NewBoard()}
}

// Board exposes the position reached by the last replay
func (r *Replayer) Board() *Board {
	return r.board
}

// Replay resets the board and replays moveText, returning capture events in
// move order. Both numbered ("1. e4 e5") and bare ("e4 e5") forms are accepted.
func Replay(moveText string) []CaptureEvent {
	return NewReplayer().Replay(moveText)
}

// Replay resets the board and replays moveText
func (r *Replayer) Replay(moveText string) []CaptureEvent {
	r.board.Reset()
	moveText = resultSuffix.ReplaceAllString(moveText, "")

	var events []CaptureEvent
	for _, slot := range splitSlots(moveText) {
		if ev, ok := r.apply(slot.white, White, slot.number); ok {
			events = append(events, ev)
		}
		if ev, ok := r.apply(slot.black, Black, slot.number); ok {
			events = append(events, ev)
		}
	}
	return events
}

type moveSlot struct {
	number int
	white  string
	black  string
}

func splitSlots(text string) []moveSlot {
	var slots []moveSlot

	if !moveNumber.MatchString(text) {
		tokens := moveTokens(text)
		for i := 0; i < len(tokens); i += 2 {
			s := moveSlot{number: i/2 + 1, white: tokens[i]}
			if i+1 < len(tokens) {
				s.black = tokens[i+1]
			}
			slots = append(slots, s)
		}
		return slots
	}

	marks := moveNumber.FindAllStringSubmatchIndex(text, -1)
	for i, m := range marks {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		tokens := moveTokens(text[m[1]:end])
		s := moveSlot{number: n}
		if len(tokens) > 0 {
			s.white = tokens[0]
		}
		if len(tokens) > 1 {
			s.black = tokens[1]
		}
		slots = append(slots, s)
	}
	return slots
}

func moveTokens(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if strings.Trim(f, ".") == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// apply parses and plays a single token. Unparseable plies and captures onto
// an empty square leave the board untouched and produce no event.
func (r *Replayer) apply(token string, side Side, number int) (CaptureEvent, bool) {
	p, ok := ParsePly(token, side, number)
	if !ok {
		return CaptureEvent{}, false
	}

	if p.Castle != NoCastle {
		r.castle(side, p.Castle)
		return CaptureEvent{}, false
	}

	res := Resolve(r.board, p)

	var (
		ev       CaptureEvent
		captured bool
	)
	if p.Capture {
		target := r.board.At(p.Dest)
		if target.Empty() {
			return CaptureEvent{}, false
		}
		from := NoSquare
		if res.Found() {
			from = res.Square
		}
		ev = CaptureEvent{
			MoveNumber:     number,
			Side:           side,
			CapturingPiece: p.Piece,
			CapturedPiece:  target.Piece,
			From:           from,
			FromConfidence: res.Confidence,
			To:             p.Dest,
			Notation:       p.Token,
			PieceValue:     Value(p.Piece),
			CapturedValue:  Value(target.Piece),
		}
		captured = true
	}

	if res.Found() {
		r.board.Vacate(res.Square)
	}
	r.board.Place(p.Dest, Occupant{Piece: p.Piece, Side: side})

	return ev, captured
}

func (r *Replayer) castle(side Side, c Castle) {
	rank := 0
	if side == Black {
		rank = 7
	}
	king := Square{4, rank}
	if c == CastleKingside {
		r.board.Vacate(king)
		r.board.Vacate(Square{7, rank})
		r.board.Place(Square{6, rank}, Occupant{King, side})
		r.board.Place(Square{5, rank}, Occupant{Rook, side})
		return
	}
	r.board.Vacate(king)
	r.board.Vacate(Square{0, rank})
	r.board.Place(Square{2, rank}, Occupant{King, side})
	r.board.Place(Square{3, rank}, Occupant{Rook, side})
}
