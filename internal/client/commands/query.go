package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"chessql/internal/client/api"
	"chessql/internal/client/display"
)

func (r *Registry) registerQueryCommands() {
	r.Register(&Command{
		Name:        "query",
		ShortName:   "q",
		Group:       groupQuery,
		Description: "Run a ChessQL query or /pattern/ move search",
		Usage:       "query <text>",
		Handler:     queryHandler,
	})

	r.Register(&Command{
		Name:        "next",
		ShortName:   ">",
		Group:       groupQuery,
		Description: "Next page of the last query",
		Usage:       "next",
		Handler:     func(s *Session, _ []string) error { return s.turnPage(1) },
	})

	r.Register(&Command{
		Name:        "prev",
		ShortName:   "<",
		Group:       groupQuery,
		Description: "Previous page of the last query",
		Usage:       "prev",
		Handler:     func(s *Session, _ []string) error { return s.turnPage(-1) },
	})

	r.Register(&Command{
		Name:        "ref",
		Group:       groupQuery,
		Description: "Set the reference player",
		Usage:       "ref [player]",
		Handler:     refHandler,
	})

	r.Register(&Command{
		Name:        "examples",
		ShortName:   "e",
		Group:       groupQuery,
		Description: "List example queries",
		Usage:       "examples",
		Handler:     examplesHandler,
	})

	r.Register(&Command{
		Name:        "stats",
		ShortName:   "s",
		Group:       groupQuery,
		Description: "Show database totals",
		Usage:       "stats",
		Handler:     statsHandler,
	})

	r.Register(&Command{
		Name:        "accounts",
		ShortName:   "a",
		Group:       groupQuery,
		Description: "List, add or remove platform accounts",
		Usage:       "accounts [add|remove <username> [lichess|chesscom]]",
		Handler:     accountsHandler,
	})
}

func queryHandler(s *Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: query <text>")
	}
	s.LastQuery = strings.Join(args, " ")
	s.Page = 1
	return s.runQuery()
}

func (s *Session) turnPage(delta int) error {
	if s.LastQuery == "" {
		return fmt.Errorf("no previous query")
	}
	if s.Page+delta < 1 {
		return fmt.Errorf("already on the first page")
	}
	s.Page += delta
	return s.runQuery()
}

func (s *Session) runQuery() error {
	resp, err := s.Client.Query(&api.QueryRequest{
		Query:     s.LastQuery,
		PageNo:    s.Page,
		Limit:     s.Limit,
		Reference: s.Reference,
	})
	if err != nil {
		return err
	}

	if resp.SQL != "" && resp.SQL != resp.Query {
		fmt.Fprintf(s.Out, "%sSQL: %s%s\n", display.Magenta, resp.SQL, display.Reset)
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(s.Out, "No rows")
		return nil
	}

	var header []string
	rows := make([][]string, 0, len(resp.Results))
	for _, raw := range resp.Results {
		cols, vals, err := orderedRow(raw)
		if err != nil {
			return err
		}
		if header == nil {
			header = cols
		}
		rows = append(rows, vals)
	}
	display.Table(s.Out, header, rows)
	fmt.Fprintf(s.Out, "%d of %d row(s), page %d/%d\n", resp.Count, resp.TotalCount, resp.PageNo, resp.TotalPages)
	return nil
}

// orderedRow decodes a result object keeping its key order
func orderedRow(raw json.RawMessage) ([]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("malformed result row")
	}

	var cols, vals []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		cols = append(cols, key)
		if v == nil {
			vals = append(vals, "NULL")
		} else {
			vals = append(vals, fmt.Sprint(v))
		}
	}
	return cols, vals, nil
}

func refHandler(s *Session, args []string) error {
	if len(args) == 0 {
		s.Reference = ""
		fmt.Fprintln(s.Out, "Reference player cleared")
		return nil
	}
	s.Reference = args[0]
	fmt.Fprintf(s.Out, "Reference player: %s\n", s.Reference)
	return nil
}

func examplesHandler(s *Session, args []string) error {
	examples, err := s.Client.Examples()
	if err != nil {
		return err
	}
	rows := make([][]string, len(examples))
	for i, ex := range examples {
		rows[i] = []string{ex.Category, ex.Query, ex.Description}
	}
	display.Table(s.Out, []string{"Category", "Query", "Description"}, rows)
	return nil
}

func statsHandler(s *Session, args []string) error {
	stats, err := s.Client.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sDatabase:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  Games:      %d\n", stats.TotalGames)
	fmt.Fprintf(s.Out, "  Players:    %d\n", stats.UniquePlayers)
	results := make([]string, 0, len(stats.Results))
	for r := range stats.Results {
		results = append(results, r)
	}
	sort.Strings(results)
	for _, r := range results {
		fmt.Fprintf(s.Out, "    %-8s %d\n", r, stats.Results[r])
	}
	fmt.Fprintf(s.Out, "  Captures:   %d\n", stats.TotalCaptures)
	fmt.Fprintf(s.Out, "  Exchanges:  %d\n", stats.Exchanges)
	fmt.Fprintf(s.Out, "  Sacrifices: %d\n", stats.Sacrifices)
	return nil
}

func accountsHandler(s *Session, args []string) error {
	if len(args) == 0 {
		accounts, err := s.Client.ListAccounts()
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Fprintln(s.Out, "No accounts")
			return nil
		}
		rows := make([][]string, len(accounts))
		for i, a := range accounts {
			rows[i] = []string{fmt.Sprint(a.ID), a.Username, a.Platform, fmt.Sprint(a.GamesCount)}
		}
		display.Table(s.Out, []string{"ID", "Username", "Platform", "Games"}, rows)
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: accounts [add|remove <username> [lichess|chesscom]]")
	}
	platform := "lichess"
	if len(args) > 2 {
		platform = args[2]
	}

	switch args[0] {
	case "add":
		acc, err := s.Client.CreateAccount(args[1], platform)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "%sAccount %s (%s) added%s\n", display.Green, acc.Username, acc.Platform, display.Reset)
	case "remove":
		resp, err := s.Client.DeleteAccount(args[1], platform)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "%sAccount %s removed, %d game(s) deleted%s\n", display.Green, resp.Username, resp.GamesDeleted, display.Reset)
	default:
		return fmt.Errorf("unknown accounts action: %s", args[0])
	}
	return nil
}
