package replay

// ClassificationWindow is the number of consecutive move numbers, starting at
// the capture's own, searched for compensating recaptures
const ClassificationWindow = 2

const (
	sacrificeThreshold = 2
	exchangeTolerance  = 1
)

// Classify sets IsSacrifice and IsExchange on every event in place.
//
// For a capture of value v on move m, compensation is the value the losing
// side captured back within moves [m, m+ClassificationWindow-1]. A capture is a
// sacrifice when v exceeds compensation by sacrificeThreshold or more, and an
// exchange when some material came back and the difference is within
// exchangeTolerance. King captures carry no value and are never flagged.
func Classify(events []CaptureEvent) {
	byMove := make(map[int][]int, len(events))
	for i := range events {
		events[i].IsSacrifice = false
		events[i].IsExchange = false
		byMove[events[i].MoveNumber] = append(byMove[events[i].MoveNumber], i)
	}

	for i := range events {
		ev := &events[i]
		v := Value(ev.CapturedPiece)
		if v == 0 {
			continue
		}
		losing := ev.Side.Opponent()

		comp := 0
		for m := ev.MoveNumber; m < ev.MoveNumber+ClassificationWindow; m++ {
			for _, j := range byMove[m] {
				if j == i || events[j].Side != losing {
					continue
				}
				comp += Value(events[j].CapturedPiece)
			}
		}

		diff := v - comp
		ev.IsSacrifice = diff >= sacrificeThreshold
		ev.IsExchange = abs(diff) <= exchangeTolerance && comp > 0
	}
}

// ReferenceSide returns the side played by reference. Black is returned when
// reference does not match the white player, including when neither matches.
func ReferenceSide(whitePlayer, blackPlayer, reference string) Side {
	if reference != "" && whitePlayer == reference {
		return White
	}
	return Black
}

// Analysis is the classified replay of one game
type Analysis struct {
	Events        []CaptureEvent
	ReferenceSide Side
}

// Analyze replays moveText on a fresh board and classifies the captures
func Analyze(moveText, whitePlayer, blackPlayer, reference string) Analysis {
	return NewReplayer().Analyze(Job{
		MoveText:  moveText,
		White:     whitePlayer,
		Black:     blackPlayer,
		Reference: reference,
	})
}

// Job is one game queued for analysis
type Job struct {
	MoveText  string
	White     string
	Black     string
	Reference string
}

// Analyze replays a job on r's board and classifies the captures
func (r *Replayer) Analyze(j Job) Analysis {
	events := r.Replay(j.MoveText)
	Classify(events)
	return Analysis{
		Events:        events,
		ReferenceSide: ReferenceSide(j.White, j.Black, j.Reference),
	}
}

// Stats summarizes the captures of a game
type Stats struct {
	TotalCaptures     int            `json:"totalCaptures"`
	Exchanges         int            `json:"exchanges"`
	Sacrifices        int            `json:"sacrifices"`
	CapturesByPiece   map[string]int `json:"capturesByPiece"`
	ExchangesByPiece  map[string]int `json:"exchangesByPiece"`
	SacrificesByPiece map[string]int `json:"sacrificesByPiece"`
}

// Summarize counts classified events, keyed by capturing piece symbol
func Summarize(events []CaptureEvent) Stats {
	s := Stats{
		TotalCaptures:     len(events),
		CapturesByPiece:   map[string]int{},
		ExchangesByPiece:  map[string]int{},
		SacrificesByPiece: map[string]int{},
	}
	for _, ev := range events {
		sym := ev.CapturingPiece.Symbol()
		s.CapturesByPiece[sym]++
		if ev.IsExchange {
			s.Exchanges++
			s.ExchangesByPiece[sym]++
		}
		if ev.IsSacrifice {
			s.Sacrifices++
			s.SacrificesByPiece[sym]++
		}
	}
	return s
}
