package query

import (
	"fmt"
	"strings"
)

var files = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// Quote renders s as a SQL string literal
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func playerResultSQL(c PlayerResult) string {
	p := Quote(c.Player)
	o := Quote(string(c.Outcome))
	return fmt.Sprintf("((white_player = %s AND white_result = %s) OR (black_player = %s AND black_result = %s))", p, o, p, o)
}

func boundSQL(b *Bound) string {
	if b == nil {
		return ""
	}
	if b.After {
		return fmt.Sprintf(" AND c.move_number >= %d", b.Move)
	}
	return fmt.Sprintf(" AND c.move_number <= %d", b.Move)
}

// losingSideSQL restricts captures to those made against player
func losingSideSQL(player string) string {
	p := Quote(player)
	return fmt.Sprintf(" AND ((games.white_player = %s AND c.side = 'black') OR (games.black_player = %s AND c.side = 'white'))", p, p)
}

// capturingSideSQL restricts captures to those made by player
func capturingSideSQL(player string) string {
	p := Quote(player)
	return fmt.Sprintf(" AND ((games.white_player = %s AND c.side = 'white') OR (games.black_player = %s AND c.side = 'black'))", p, p)
}

func pieceEventSQL(c PieceEvent, reference string) string {
	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1 FROM captures c WHERE c.game_id = games.id")
	fmt.Fprintf(&sb, " AND c.captured_piece = %s AND c.%s = 1", Quote(c.Piece.Symbol()), c.Event.Column())
	switch {
	case c.Owner.Opponent:
		sb.WriteString(capturingSideSQL(reference))
	case c.Owner.Player != "":
		sb.WriteString(losingSideSQL(c.Owner.Player))
	}
	sb.WriteString(boundSQL(c.Bound))
	sb.WriteString(")")
	return sb.String()
}

func specificCaptureSQL(c SpecificCapture) string {
	return fmt.Sprintf("EXISTS (SELECT 1 FROM captures c WHERE c.game_id = games.id AND c.capturing_piece = %s AND c.captured_piece = %s%s)",
		Quote(c.Capturing.Symbol()), Quote(c.Captured.Symbol()), boundSQL(c.Bound))
}

// promotionSQL matches promotion notation in the move text. With an owner,
// white promotions are "<file>8=X" and black ones "<file>1=X"; without one
// any "=X" counts.
func promotionSQL(c Promotion, owner string) string {
	sym := c.Piece.Symbol()
	if owner == "" {
		pattern := "=" + sym
		if c.Count > 0 {
			return fmt.Sprintf("EXISTS (SELECT 1 FROM games g2 WHERE g2.id = games.id AND (LENGTH(g2.moves) - LENGTH(REPLACE(g2.moves, %s, ''))) / LENGTH(%s) >= %d)",
				Quote(pattern), Quote(pattern), c.Count)
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM games g2 WHERE g2.id = games.id AND g2.moves LIKE %s)", Quote("%"+pattern+"%"))
	}

	p := Quote(owner)
	white := promotionSideSQL("8", sym, c.Count)
	black := promotionSideSQL("1", sym, c.Count)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM games g2 WHERE g2.id = games.id AND ((g2.white_player = %s AND %s) OR (g2.black_player = %s AND %s)))",
		p, white, p, black)
}

func promotionSideSQL(rank, sym string, count int) string {
	likes := make([]string, len(files))
	for i, f := range files {
		likes[i] = "g2.moves LIKE " + Quote("%"+f+rank+"="+sym+"%")
	}
	anyFile := "(" + strings.Join(likes, " OR ") + ")"
	if count == 0 {
		return anyFile
	}
	marker := Quote(rank + "=" + sym)
	return fmt.Sprintf("((LENGTH(g2.moves) - LENGTH(REPLACE(g2.moves, %s, ''))) / 3 >= %d AND %s)", marker, count, anyFile)
}

// MoveSearchSQL is the statement behind a /pattern/ query. The pattern is
// bound as the single argument.
const MoveSearchSQL = "SELECT * FROM games WHERE moves LIKE ?"

// IsMoveSearch reports whether text is a /pattern/ move search
func IsMoveSearch(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) >= 2 && strings.HasPrefix(text, "/") && strings.HasSuffix(text, "/")
}

// LikePattern converts a /pattern/ move search into a LIKE pattern: ".*"
// becomes "%", "." becomes "_" and a backslash makes the next character
// literal.
func LikePattern(text string) string {
	text = strings.TrimSpace(text)
	if IsMoveSearch(text) {
		text = text[1 : len(text)-1]
	}

	var sb strings.Builder
	sb.WriteByte('%')
	for i := 0; i < len(text); i++ {
		switch ch := text[i]; {
		case ch == '\\' && i+1 < len(text):
			i++
			sb.WriteByte(text[i])
		case ch == '.' && i+1 < len(text) && text[i+1] == '*':
			i++
			sb.WriteByte('%')
		case ch == '.':
			sb.WriteByte('_')
		default:
			sb.WriteByte(ch)
		}
	}
	sb.WriteByte('%')
	return sb.String()
}
