// Package cli implements the offline database commands of chessql-server:
// schema management, ingestion, queries, accounts and API users.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"chessql/internal/logging"
	"chessql/internal/query"
	"chessql/internal/server/dedup"
	"chessql/internal/server/processor"
	"chessql/internal/server/service"
	"chessql/internal/server/storage"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// stdout receives command output; tests swap it
var stdout io.Writer = os.Stdout

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, ingest, query, show, stats, examples, repl, account, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "query":
		return runQuery(args[1:])
	case "show":
		return runShow(args[1:])
	case "stats":
		return runStats(args[1:])
	case "examples":
		return runExamples()
	case "repl":
		return runREPL(args[1:])
	case "account":
		if len(args) < 2 {
			return fmt.Errorf("account subcommand required: add, list, remove")
		}
		return runAccount(args[1], args[2:])
	case "user":
		if len(args) < 2 {
			return fmt.Errorf("user subcommand required: add, delete, list, set-password")
		}
		return runUser(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// env is an opened database with its service
type env struct {
	svc   *service.Service
	queue *processor.ReplayQueue
}

func (e *env) close() {
	if e.queue != nil {
		e.queue.Shutdown(shutdownTimeout)
	}
	e.svc.Shutdown(shutdownTimeout)
}

type openOptions struct {
	dedupPath string
	reference string
	workers   int
}

// open connects to an existing database. The duplicate index and replay
// workers are only opened when the command ingests.
func open(path string, opts openOptions) (*env, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s (run db init first): %w", path, err)
	}

	log := cliLogger()
	store, err := storage.NewStore(path, false, logging.Component(log, "storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	cfg := service.Config{
		Store:           store,
		ReferencePlayer: opts.reference,
		Logger:          logging.Component(log, "service"),
	}
	e := &env{}

	if opts.dedupPath != "" {
		idx, err := dedup.Open(opts.dedupPath)
		if err != nil {
			store.Close()
			return nil, err
		}
		cfg.Dedup = idx
	}
	if opts.workers > 0 {
		e.queue = processor.NewReplayQueue(opts.workers, logging.Component(log, "replay"))
		cfg.Analyzer = e.queue
	}

	e.svc = service.New(cfg)
	return e, nil
}

func cliLogger() zerolog.Logger {
	level := os.Getenv("CHESSQL_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log, err := logging.New(logging.Options{Level: level, Dev: true})
	if err != nil {
		return zerolog.Nop()
	}
	return log
}

// defaultDedupPath keeps the duplicate index next to the database
func defaultDedupPath(dbPath string) string {
	return dbPath + ".dedup"
}

// signalContext is cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, cliLogger())
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(stdout, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	dedupPath := fs.String("dedup-path", "", "Duplicate index directory (default <path>.dedup)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *dedupPath == "" {
		*dedupPath = defaultDedupPath(*path)
	}

	store, err := storage.NewStore(*path, false, cliLogger())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	if err := os.RemoveAll(*dedupPath); err != nil {
		return fmt.Errorf("failed to delete duplicate index: %w", err)
	}

	fmt.Fprintf(stdout, "Database deleted: %s\n", *path)
	return nil
}

func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	input := fs.String("input", "", "PGN file or directory (required)")
	pattern := fs.String("pattern", service.DefaultIngestPattern, "File pattern when -input is a directory")
	account := fs.String("account", "", "Associate games with this account")
	platform := fs.String("platform", query.PlatformLichess, "Account platform: lichess or chesscom")
	reference := fs.String("reference", "", "Reference player (defaults to the account)")
	dedupPath := fs.String("dedup-path", "", "Duplicate index directory (default <path>.dedup)")
	workers := fs.Int("workers", 4, "Replay worker count")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *input == "" {
		return fmt.Errorf("input file or directory required")
	}
	if *dedupPath == "" && *path != "" {
		*dedupPath = defaultDedupPath(*path)
	}

	e, err := open(*path, openOptions{dedupPath: *dedupPath, reference: *reference, workers: *workers})
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := signalContext()
	defer cancel()

	opts := service.IngestOptions{Account: *account, Platform: *platform, Reference: *reference}

	info, err := os.Stat(*input)
	if err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}

	var report *service.IngestReport
	if info.IsDir() {
		report, err = e.svc.IngestDir(ctx, *input, *pattern, opts)
	} else {
		report, err = e.svc.IngestFile(ctx, *input, opts)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestReport(report)
	return nil
}

func printIngestReport(r *service.IngestReport) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Batch:\t%s\n", r.BatchID)
	fmt.Fprintf(w, "Parsed:\t%d\n", r.Parsed)
	fmt.Fprintf(w, "Inserted:\t%d\n", r.Inserted)
	fmt.Fprintf(w, "Duplicates:\t%d\n", r.Duplicates)
	fmt.Fprintf(w, "Failed:\t%d\n", r.Failed)
	fmt.Fprintf(w, "Captures:\t%d\n", r.Captures)
	w.Flush()

	for _, e := range r.Errors {
		fmt.Fprintf(stdout, "  error: %s\n", e)
	}
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	q := fs.String("q", "", "ChessQL query or /pattern/ move search (required)")
	format := fs.String("format", formatTable, "Output format: table, csv, json")
	limit := fs.Int("limit", service.DefaultQueryLimit, "Rows per page")
	page := fs.Int("page", 1, "Page number")
	account := fs.String("account", "", "Only games of this account")
	platform := fs.String("platform", "", "Only games from this platform (with -account: the account's platform)")
	reference := fs.String("reference", "", "Reference player for player clauses")
	explain := fs.Bool("explain", false, "Print the rewritten SQL without running it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*q) == "" {
		return fmt.Errorf("query required")
	}
	if err := checkFormat(*format); err != nil {
		return err
	}

	e, err := open(*path, openOptions{reference: *reference})
	if err != nil {
		return err
	}
	defer e.close()

	if *explain {
		printRewrite(e.svc.Rewrite(*q, *reference))
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := service.QueryOptions{PageNo: *page, Limit: *limit, Reference: *reference, Platform: *platform}
	if *account != "" {
		acc, err := e.svc.GetAccount(ctx, *account, *platform)
		if err != nil {
			return fmt.Errorf("account %s: %w", *account, err)
		}
		opts.AccountID = &acc.ID
		opts.Platform = ""
	}

	res, err := e.svc.ExecuteQuery(ctx, *q, opts)
	if err != nil {
		return err
	}
	return printResult(res, *format)
}

func printRewrite(res query.Result) {
	fmt.Fprintf(stdout, "SQL: %s\n", res.SQL)
	for _, c := range res.ClauseStrings() {
		fmt.Fprintf(stdout, "  clause: %s\n", c)
	}
	if res.Context.Known() {
		fmt.Fprintf(stdout, "  player: %s (%s)\n", res.Context.Player, res.Context.Source)
	}
	for _, ig := range res.Ignored {
		fmt.Fprintf(stdout, "  ignored: %s\n", ig)
	}
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	id := fs.Int64("id", 0, "Game ID (required)")
	withPGN := fs.Bool("pgn", false, "Print the original PGN")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id <= 0 {
		return fmt.Errorf("game id required")
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	detail, err := e.svc.GetGame(context.Background(), *id)
	if err != nil {
		return fmt.Errorf("game %d: %w", *id, err)
	}

	g := detail.Game
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Game:\t%d\n", g.ID)
	fmt.Fprintf(w, "White:\t%s (%s)\n", g.WhitePlayer, orNone(g.WhiteElo))
	fmt.Fprintf(w, "Black:\t%s (%s)\n", g.BlackPlayer, orNone(g.BlackElo))
	fmt.Fprintf(w, "Result:\t%s\n", g.Result)
	fmt.Fprintf(w, "Date:\t%s\n", orNone(g.DatePlayed))
	fmt.Fprintf(w, "Event:\t%s\n", orNone(g.Event))
	fmt.Fprintf(w, "Opening:\t%s %s\n", g.ECO, g.Opening)
	fmt.Fprintf(w, "Speed:\t%s (%s)\n", orNone(g.Speed), orNone(g.TimeControl))
	fmt.Fprintf(w, "Reference side:\t%s\n", g.ReferenceSide)
	w.Flush()

	fmt.Fprintf(stdout, "\nCaptures: %d (exchanges %d, sacrifices %d)\n",
		detail.Stats.TotalCaptures, detail.Stats.Exchanges, detail.Stats.Sacrifices)

	if len(detail.Captures) > 0 {
		w = tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Move\tSide\tNotation\tPiece\tCaptured\tFrom\tTo\tFlags")
		fmt.Fprintln(w, strings.Repeat("-", 72))
		for _, c := range detail.Captures {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				c.MoveNumber,
				c.Side,
				c.MoveNotation,
				c.CapturingPiece,
				c.CapturedPiece,
				fromSquare(c),
				c.ToSquare,
				captureFlags(c),
			)
		}
		w.Flush()
	}

	if *withPGN {
		fmt.Fprintf(stdout, "\n%s\n", g.PGN)
	}
	return nil
}

func fromSquare(c storage.CaptureRecord) string {
	if c.FromSquare == "" {
		return "?"
	}
	if c.FromConfidence != "" && c.FromConfidence != "exact" {
		return c.FromSquare + "~"
	}
	return c.FromSquare
}

func captureFlags(c storage.CaptureRecord) string {
	switch {
	case c.IsSacrifice:
		return "sacrifice"
	case c.IsExchange:
		return "exchange"
	}
	return ""
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	stats, err := e.svc.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Games:\t%d\n", stats.TotalGames)
	fmt.Fprintf(w, "Players:\t%d\n", stats.UniquePlayers)
	results := make([]string, 0, len(stats.Results))
	for r := range stats.Results {
		results = append(results, r)
	}
	sort.Strings(results)
	for _, r := range results {
		fmt.Fprintf(w, "  %s:\t%d\n", orNone(r), stats.Results[r])
	}
	fmt.Fprintf(w, "Captures:\t%d\n", stats.TotalCaptures)
	fmt.Fprintf(w, "Exchanges:\t%d\n", stats.Exchanges)
	fmt.Fprintf(w, "Sacrifices:\t%d\n", stats.Sacrifices)
	return w.Flush()
}

func runExamples() error {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tQuery\tDescription")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, ex := range query.Examples() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ex.Category, ex.Query, ex.Description)
	}
	return w.Flush()
}
