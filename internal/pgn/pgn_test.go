package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGames = `[Event "Rated Blitz game"]
[Site "https://lichess.org/AbCdEfGh"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[TimeControl "180+2"]

1. e4 { [%clk 0:03:00] } e5 2. Nf3 (2. f4 exf4) 2... Nc6 $1 3. Bb5!? a6 1-0

[Event "Casual"]
[Site "https://www.chess.com/game/live/123456789"]
[White "carol"]
[Black "alice"]
[Result "1/2-1/2"]
[TimeControl "-"]

1. d4 d5 ; quiet opening
2. c4 1/2-1/2
`

func TestParseSplitsGames(t *testing.T) {
	games, err := ParseString(twoGames)
	require.NoError(t, err)
	require.Len(t, games, 2)

	g := games[0]
	assert.Equal(t, "alice", g.White())
	assert.Equal(t, "bob", g.Black())
	assert.Equal(t, "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0", g.MoveText)
	assert.Equal(t, ResultWin, g.WhiteResult())
	assert.Equal(t, ResultLoss, g.BlackResult())
	assert.Equal(t, SpeedBlitz, g.Speed())
	assert.Equal(t, "AbCdEfGh", g.LichessID())
	assert.Equal(t, "", g.ChessComID())
	assert.Equal(t, []string{"Event", "Site", "White", "Black", "Result", "TimeControl"}, g.TagOrder)
	assert.Contains(t, g.PGN, "[%clk 0:03:00]")

	g = games[1]
	assert.Equal(t, "1. d4 d5 2. c4 1/2-1/2", g.MoveText)
	assert.Equal(t, ResultDraw, g.WhiteResult())
	assert.Equal(t, ResultDraw, g.BlackResult())
	assert.Equal(t, SpeedCorrespondence, g.Speed())
	assert.Equal(t, "123456789", g.ChessComID())
	assert.Equal(t, "", g.LichessID())
}

func TestParseWithoutBlankSeparator(t *testing.T) {
	input := "[White \"a\"]\n1. e4 e5 *\n[White \"b\"]\n1. d4 *\n"
	games, err := ParseString(input)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "a", games[0].White())
	assert.Equal(t, "b", games[1].White())
	assert.Equal(t, "1. d4 *", games[1].MoveText)
}

func TestParseDropsUntaggedBlocks(t *testing.T) {
	games, err := ParseString("1. e4 e5\n\n")
	require.NoError(t, err)
	assert.Empty(t, games)

	games, err = ParseString("")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestCleanMoveText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1. e4 e5", "1. e4 e5"},
		{"1. e4 {best by test} e5", "1. e4 e5"},
		{"1. e4 (1. d4 d5 (1... Nf6)) 1... e5", "1. e4 e5"},
		{"1. e4 $2 e5 $14", "1. e4 e5"},
		{"1. e4! e5?? 2. Qh5!? Nc6 3. Qxf7#", "1. e4 e5 2. Qh5 Nc6 3. Qxf7#"},
		{"1. e4 ; comment\ne5", "1. e4 e5"},
		{"1. e4 {unterminated", "1. e4"},
		{"12... Nf6 13. O-O", "Nf6 13. O-O"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanMoveText(tt.in), "CleanMoveText(%q)", tt.in)
	}
}

func TestSpeedOf(t *testing.T) {
	tests := map[string]Speed{
		"":         SpeedUnknown,
		"garbage":  SpeedUnknown,
		"-":        SpeedCorrespondence,
		"1/259200": SpeedCorrespondence,
		"15+0":     SpeedUltraBullet,
		"29+0":     SpeedUltraBullet,
		"60+0":     SpeedBullet,
		"120+1":    SpeedBullet,
		"180+0":    SpeedBlitz,
		"180+2":    SpeedBlitz,
		"600+0":    SpeedRapid,
		"900+10":   SpeedRapid,
		"900+15":   SpeedClassical,
		"1800+0":   SpeedClassical,
		"300":      SpeedBlitz,
	}
	for tc, want := range tests {
		assert.Equal(t, want, SpeedOf(tc), "SpeedOf(%q)", tc)
	}
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultLoss, ResultFor("0-1", true))
	assert.Equal(t, ResultWin, ResultFor("0-1", false))
	assert.Equal(t, ResultUnknown, ResultFor("*", true))
	assert.Equal(t, ResultUnknown, ResultFor("", false))
}

func TestPlatformIDs(t *testing.T) {
	assert.Equal(t, "AbCdEfGh", LichessID("https://lichess.org/AbCdEfGhIjKl"))
	assert.Equal(t, "AbCdEfGh", LichessID("https://lichess.org/AbCdEfGh/black"))
	assert.Equal(t, "", LichessID("https://lichess.org/"))
	assert.Equal(t, "", LichessID("Moscow RUS"))
	assert.Equal(t, "42", ChessComID("https://www.chess.com/game/daily/42"))
	assert.Equal(t, "", ChessComID("https://www.chess.com/member/alice"))
}
