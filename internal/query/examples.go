package query

// Example is a sample query with a short description
type Example struct {
	Category    string `json:"category"`
	Query       string `json:"query"`
	Description string `json:"description"`
}

var examples = []Example{
	{"metadata", "SELECT white_player, black_player, result FROM games", "All games with players and result"},
	{"metadata", "SELECT * FROM games WHERE eco_code = 'B10'", "Games in the Caro-Kann"},
	{"metadata", "SELECT white_player, COUNT(*) AS games FROM games GROUP BY white_player ORDER BY games DESC", "Games per white player"},
	{"metadata", "SELECT white_player, black_player, white_elo FROM games ORDER BY CAST(white_elo AS INTEGER) DESC", "Games sorted by white rating"},

	{"moves", "/e4.*c5/", "Games where e4 is later followed by c5"},
	{"moves", "/O-O-O/", "Games with queenside castling"},
	{"moves", `/Qh5\+/`, "Games with Qh5 check"},

	{"captures", "SELECT white_player FROM games WHERE (queen captured queen)", "A queen took a queen"},
	{"captures", "SELECT * FROM games WHERE (knight captured rook before move 20)", "A knight took a rook before move 20"},
	{"captures", "SELECT COUNT(*) FROM games WHERE (captured bishop with pawn)", "A pawn took a bishop"},

	{"events", "SELECT * FROM games WHERE (queen sacrificed)", "A queen was sacrificed"},
	{"events", "SELECT * FROM games WHERE (pawn exchanged before move 10)", "Early pawn exchanges"},
	{"events", "SELECT * FROM games WHERE (rook sacrificed after move 15)", "Late rook sacrifices"},
	{"events", "SELECT * FROM games WHERE (opponent queen sacrificed)", "The reference player's opponent sacrificed a queen"},

	{"results", "SELECT COUNT(*) FROM games WHERE (player won)", "Wins by a player"},
	{"results", "SELECT * FROM games WHERE (player drew) ORDER BY date_played DESC", "Draws, newest first"},
	{"results", "SELECT * FROM games WHERE (player won) AND (queen sacrificed)", "Wins with a queen sacrifice"},

	{"promotions", "SELECT * FROM games WHERE (pawn promoted to queen)", "Any queen promotion"},
	{"promotions", "SELECT * FROM games WHERE (pawn promoted to queen x 2)", "Two or more queen promotions"},
	{"promotions", "SELECT * FROM games WHERE (player won) AND (pawn promoted to knight)", "Wins with an underpromotion by the winner"},
	{"promotions", "SELECT * FROM games WHERE white_player = 'player' AND (promoted to queen twice)", "White promoted to a queen twice"},
}

// Examples returns sample queries covering every clause shape
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}
