package commands

import (
	"fmt"
	"os"
	"strconv"

	"chessql/internal/client/api"
	"chessql/internal/client/display"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "ingest",
		ShortName:   "n",
		Group:       groupGames,
		Description: "Upload a PGN file",
		Usage:       "ingest <file.pgn> [account] [lichess|chesscom]",
		Handler:     ingestHandler,
	})

	r.Register(&Command{
		Name:        "game",
		ShortName:   "g",
		Group:       groupGames,
		Description: "Show a stored game",
		Usage:       "game <gameId>",
		Handler:     gameHandler,
	})

	r.Register(&Command{
		Name:        "captures",
		ShortName:   "c",
		Group:       groupGames,
		Description: "List the captures of a game",
		Usage:       "captures <gameId>",
		Handler:     capturesHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Group:       groupGames,
		Description: "Delete a game",
		Usage:       "delete <gameId>",
		Handler:     deleteGameHandler,
	})
}

func gameID(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game ID: %s", args[0])
	}
	return id, nil
}

func ingestHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ingest <file.pgn> [account] [lichess|chesscom]")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	req := &api.IngestRequest{PGN: string(data)}
	if len(args) > 1 {
		req.Account = args[1]
	}
	if len(args) > 2 {
		req.Platform = args[2]
	}

	resp, err := s.Client.Ingest(req)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sIngested %s%s\n", display.Green, args[0], display.Reset)
	fmt.Fprintf(s.Out, "  Parsed: %d, inserted: %d, duplicates: %d, failed: %d, captures: %d\n",
		resp.Parsed, resp.Inserted, resp.Duplicates, resp.Failed, resp.Captures)
	for _, e := range resp.Errors {
		fmt.Fprintf(s.Out, "  %s%s%s\n", display.Red, e, display.Reset)
	}
	return nil
}

func gameHandler(s *Session, args []string) error {
	id, err := gameID(args, "game <gameId>")
	if err != nil {
		return err
	}

	resp, err := s.Client.GetGame(id)
	if err != nil {
		return err
	}

	g := resp.Game
	fmt.Fprintf(s.Out, "%s#%d %s - %s  %s%s\n", display.Cyan, g.ID, g.WhitePlayer, g.BlackPlayer, g.Result, display.Reset)
	fmt.Fprintf(s.Out, "  Date: %s  Speed: %s  Opening: %s %s\n", g.DatePlayed, g.Speed, g.ECO, g.Opening)
	fmt.Fprintf(s.Out, "  Reference side: %s\n", g.ReferenceSide)
	fmt.Fprintf(s.Out, "  %s\n", g.Moves)
	fmt.Fprintf(s.Out, "  Captures: %d (exchanges %d, sacrifices %d)\n",
		resp.Stats.TotalCaptures, resp.Stats.Exchanges, resp.Stats.Sacrifices)
	return nil
}

func capturesHandler(s *Session, args []string) error {
	id, err := gameID(args, "captures <gameId>")
	if err != nil {
		return err
	}

	captures, err := s.Client.GetCaptures(id)
	if err != nil {
		return err
	}
	if len(captures) == 0 {
		fmt.Fprintln(s.Out, "No captures")
		return nil
	}

	rows := make([][]string, len(captures))
	for i, c := range captures {
		flag := ""
		switch {
		case c.IsSacrifice:
			flag = "sacrifice"
		case c.IsExchange:
			flag = "exchange"
		}
		rows[i] = []string{strconv.Itoa(c.MoveNumber), c.Side, c.MoveNotation, c.CapturingPiece, c.CapturedPiece, c.FromSquare, c.ToSquare, flag}
	}
	display.Table(s.Out, []string{"Move", "Side", "Notation", "Piece", "Captured", "From", "To", "Flags"}, rows)
	return nil
}

func deleteGameHandler(s *Session, args []string) error {
	id, err := gameID(args, "delete <gameId>")
	if err != nil {
		return err
	}
	if err := s.Client.DeleteGame(id); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%sGame %d deleted%s\n", display.Green, id, display.Reset)
	return nil
}
