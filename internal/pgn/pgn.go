// Package pgn splits PGN text into games and extracts the tag pairs and
// move text needed for ingestion.
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`^\[(\w+)\s+"([^"]*)"\]`)

// Game is one parsed PGN game
type Game struct {
	Tags     map[string]string
	TagOrder []string
	// MoveText is the main line with comments, variations and NAGs removed
	MoveText string
	PGN      string
}

// Tag returns a tag value or ""
func (g *Game) Tag(name string) string {
	return g.Tags[name]
}

func (g *Game) White() string       { return g.Tags["White"] }
func (g *Game) Black() string       { return g.Tags["Black"] }
func (g *Game) Result() string      { return g.Tags["Result"] }
func (g *Game) Date() string        { return g.Tags["Date"] }
func (g *Game) Event() string       { return g.Tags["Event"] }
func (g *Game) Site() string        { return g.Tags["Site"] }
func (g *Game) Round() string       { return g.Tags["Round"] }
func (g *Game) ECO() string         { return g.Tags["ECO"] }
func (g *Game) Opening() string     { return g.Tags["Opening"] }
func (g *Game) TimeControl() string { return g.Tags["TimeControl"] }
func (g *Game) WhiteElo() string    { return g.Tags["WhiteElo"] }
func (g *Game) BlackElo() string    { return g.Tags["BlackElo"] }
func (g *Game) Variant() string     { return g.Tags["Variant"] }
func (g *Game) Termination() string { return g.Tags["Termination"] }

// WhiteResult is the game result from white's point of view
func (g *Game) WhiteResult() PlayerResult {
	return ResultFor(g.Result(), true)
}

// BlackResult is the game result from black's point of view
func (g *Game) BlackResult() PlayerResult {
	return ResultFor(g.Result(), false)
}

// Speed classifies the TimeControl tag
func (g *Game) Speed() Speed {
	return SpeedOf(g.TimeControl())
}

// LichessID extracts the game id from a lichess Site tag
func (g *Game) LichessID() string {
	return LichessID(g.Site())
}

// ChessComID extracts the game id from a chess.com Link or Site tag
func (g *Game) ChessComID() string {
	if id := ChessComID(g.Tag("Link")); id != "" {
		return id
	}
	return ChessComID(g.Site())
}

// Parse reads every game in r. Blocks without any tag pair are dropped.
func Parse(r io.Reader) ([]*Game, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		games   []*Game
		block   []string
		inMoves bool
	)
	flush := func() {
		if g := parseBlock(block); g != nil {
			games = append(games, g)
		}
		block = block[:0]
		inMoves = false
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		isTag := strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")

		// A tag pair after move text starts the next game, with or
		// without a separating blank line.
		if isTag && inMoves {
			flush()
		}
		if trimmed != "" && !isTag {
			inMoves = true
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pgn: %w", err)
	}
	flush()

	return games, nil
}

// ParseString is Parse over an in-memory string
func ParseString(s string) ([]*Game, error) {
	return Parse(strings.NewReader(s))
}

func parseBlock(lines []string) *Game {
	g := &Game{Tags: map[string]string{}}
	var moves []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if m := tagPattern.FindStringSubmatch(trimmed); m != nil {
				if _, seen := g.Tags[m[1]]; !seen {
					g.TagOrder = append(g.TagOrder, m[1])
				}
				g.Tags[m[1]] = m[2]
			}
			continue
		}
		moves = append(moves, trimmed)
	}

	if len(g.Tags) == 0 {
		return nil
	}

	g.MoveText = CleanMoveText(strings.Join(moves, "\n"))
	g.PGN = strings.TrimSpace(strings.Join(lines, "\n"))
	return g
}
