package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chessql/internal/server/service"

	"github.com/chzyer/readline"
)

// Terminal color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func prompt(text string) string {
	return colorYellow + text + " > " + colorReset
}

// replSession holds the settings a REPL user changes between queries
type replSession struct {
	svc       *service.Service
	reference string
	format    string
	limit     int
	page      int
	last      string
}

func runREPL(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	reference := fs.String("reference", "", "Reference player for player clauses")
	history := fs.String("history", ".chessql_history", "History file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := open(*path, openOptions{reference: *reference})
	if err != nil {
		return err
	}
	defer e.close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt("chessql"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	s := &replSession{
		svc:       e.svc,
		reference: *reference,
		format:    formatTable,
		limit:     20,
		page:      1,
	}

	fmt.Fprintf(stdout, "%sChessQL%s on %s\n", colorCyan, colorReset, *path)
	fmt.Fprintf(stdout, "Type 'help' for commands\n\n")

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Interrupt clears the line
			continue
		}
		if s.execute(context.Background(), line) {
			return nil
		}
	}
}

func (s *replSession) prompt() string {
	if s.reference == "" {
		return prompt("chessql")
	}
	return prompt("chessql [" + s.reference + "]")
}

// execute runs one REPL line and reports whether the session should end
func (s *replSession) execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "exit", "quit", "x":
		return true
	case "help", "?":
		s.help()
	case ":ref":
		s.reference = arg
		fmt.Fprintf(stdout, "reference player: %s\n", orNone(arg))
	case ":format":
		if err = checkFormat(arg); err == nil {
			s.format = arg
		}
	case ":limit":
		var n int
		if n, err = strconv.Atoi(arg); err == nil && n > 0 {
			s.limit = n
		} else {
			err = fmt.Errorf("limit must be a positive number")
		}
	case ":next":
		err = s.turnPage(ctx, 1)
	case ":prev":
		err = s.turnPage(ctx, -1)
	case ":explain":
		printRewrite(s.svc.Rewrite(arg, s.reference))
	case ":examples":
		err = runExamples()
	case ":show":
		err = s.show(ctx, arg)
	case ":stats":
		err = s.stats(ctx)
	default:
		s.last, s.page = line, 1
		err = s.run(ctx)
	}

	if err != nil {
		fmt.Fprintf(stdout, "%serror: %v%s\n", colorRed, err, colorReset)
	}
	return false
}

func (s *replSession) run(ctx context.Context) error {
	res, err := s.svc.ExecuteQuery(ctx, s.last, service.QueryOptions{
		PageNo:    s.page,
		Limit:     s.limit,
		Reference: s.reference,
	})
	if err != nil {
		return err
	}
	return printResult(res, s.format)
}

func (s *replSession) turnPage(ctx context.Context, delta int) error {
	if s.last == "" {
		return fmt.Errorf("no previous query")
	}
	if s.page+delta < 1 {
		return fmt.Errorf("already on the first page")
	}
	s.page += delta
	return s.run(ctx)
}

func (s *replSession) show(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("usage: :show <game id>")
	}
	detail, err := s.svc.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("game %d: %w", id, err)
	}
	g := detail.Game
	fmt.Fprintf(stdout, "%s - %s  %s  %s\n%s\n", g.WhitePlayer, g.BlackPlayer, g.Result, g.DatePlayed, g.Moves)
	fmt.Fprintf(stdout, "captures %d, exchanges %d, sacrifices %d\n",
		detail.Stats.TotalCaptures, detail.Stats.Exchanges, detail.Stats.Sacrifices)
	return nil
}

func (s *replSession) stats(ctx context.Context) error {
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "games %d, players %d, captures %d, exchanges %d, sacrifices %d\n",
		stats.TotalGames, stats.UniquePlayers, stats.TotalCaptures, stats.Exchanges, stats.Sacrifices)
	return nil
}

func (s *replSession) help() {
	fmt.Fprint(stdout, `Enter a ChessQL query or a /pattern/ move search. Commands:
  :ref NAME        set the reference player (empty clears)
  :format FORMAT   table, csv or json
  :limit N         rows per page
  :next, :prev     page through the last query
  :explain QUERY   show the rewritten SQL
  :show ID         show a game
  :stats           database totals
  :examples        sample queries
  exit             leave
`)
}
