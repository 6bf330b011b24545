package pgn

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// PlayerResult is a game outcome seen from one side
type PlayerResult string

const (
	ResultWin     PlayerResult = "win"
	ResultLoss    PlayerResult = "loss"
	ResultDraw    PlayerResult = "draw"
	ResultUnknown PlayerResult = "unknown"
)

// ResultFor maps a Result tag to the outcome for white or black
func ResultFor(result string, white bool) PlayerResult {
	switch strings.TrimSpace(result) {
	case "1-0":
		if white {
			return ResultWin
		}
		return ResultLoss
	case "0-1":
		if white {
			return ResultLoss
		}
		return ResultWin
	case "1/2-1/2", "½-½":
		return ResultDraw
	default:
		return ResultUnknown
	}
}

// Speed is the time-control category of a game
type Speed string

const (
	SpeedUnknown        Speed = ""
	SpeedUltraBullet    Speed = "ultraBullet"
	SpeedBullet         Speed = "bullet"
	SpeedBlitz          Speed = "blitz"
	SpeedRapid          Speed = "rapid"
	SpeedClassical      Speed = "classical"
	SpeedCorrespondence Speed = "correspondence"
)

// Estimated-duration upper bounds in seconds, initial + 40*increment
const (
	ultraBulletLimit = 29
	bulletLimit      = 179
	blitzLimit       = 479
	rapidLimit       = 1499
	estimatedMoves   = 40
)

var timeControlPattern = regexp.MustCompile(`^(\d+)\+(\d+)$`)

// SpeedOf classifies a TimeControl tag. A bare number of seconds is read as
// no increment; "-" marks correspondence play.
func SpeedOf(timeControl string) Speed {
	tc := strings.TrimSpace(timeControl)
	switch {
	case tc == "":
		return SpeedUnknown
	case tc == "-":
		return SpeedCorrespondence
	case strings.HasPrefix(tc, "1/"):
		// chess.com daily games, "1/<seconds per move>"
		return SpeedCorrespondence
	}

	var initial, increment int
	if m := timeControlPattern.FindStringSubmatch(tc); m != nil {
		initial, _ = strconv.Atoi(m[1])
		increment, _ = strconv.Atoi(m[2])
	} else if n, err := strconv.Atoi(tc); err == nil {
		initial = n
	} else {
		return SpeedUnknown
	}

	switch estimated := initial + estimatedMoves*increment; {
	case estimated <= ultraBulletLimit:
		return SpeedUltraBullet
	case estimated <= bulletLimit:
		return SpeedBullet
	case estimated <= blitzLimit:
		return SpeedBlitz
	case estimated <= rapidLimit:
		return SpeedRapid
	default:
		return SpeedClassical
	}
}

// LichessID returns the 8-character game id of a lichess.org game URL
func LichessID(site string) string {
	u, err := url.Parse(strings.TrimSpace(site))
	if err != nil || !strings.HasSuffix(u.Hostname(), "lichess.org") {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	id := strings.SplitN(path, "/", 2)[0]
	if len(id) > 8 {
		// player-perspective links append four more characters
		id = id[:8]
	}
	return id
}

// ChessComID returns the numeric id of a chess.com game URL
func ChessComID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || !strings.HasSuffix(u.Hostname(), "chess.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "game" {
		return ""
	}
	id := parts[len(parts)-1]
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return ""
	}
	return id
}
