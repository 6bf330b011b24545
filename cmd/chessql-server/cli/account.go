package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"chessql/internal/query"
)

func runAccount(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runAccountAdd(args)
	case "list":
		return runAccountList(args)
	case "remove":
		return runAccountRemove(args)
	default:
		return fmt.Errorf("unknown account subcommand: %s", subcommand)
	}
}

func runAccountAdd(args []string) error {
	fs := flag.NewFlagSet("account add", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Platform username (required)")
	platform := fs.String("platform", query.PlatformLichess, "Platform: lichess or chesscom")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	acc, err := e.svc.CreateAccount(context.Background(), *username, *platform)
	if err != nil {
		return fmt.Errorf("failed to add account: %w", err)
	}

	fmt.Fprintf(stdout, "Account added: %s (%s, id %d)\n", acc.Username, acc.Platform, acc.ID)
	return nil
}

func runAccountList(args []string) error {
	fs := flag.NewFlagSet("account list", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	accounts, err := e.svc.ListAccounts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Fprintln(stdout, "No accounts found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUsername\tPlatform\tGames\tCreated\tLast Sync")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, a := range accounts {
		lastSync := "never"
		if a.LastSyncAt != nil {
			lastSync = a.LastSyncAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			a.ID,
			a.Username,
			a.Platform,
			a.GamesCount,
			a.CreatedAt.Format("2006-01-02 15:04"),
			lastSync,
		)
	}
	w.Flush()

	fmt.Fprintf(stdout, "\nTotal accounts: %d\n", len(accounts))
	return nil
}

func runAccountRemove(args []string) error {
	fs := flag.NewFlagSet("account remove", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Platform username (required)")
	platform := fs.String("platform", query.PlatformLichess, "Platform: lichess or chesscom")
	dedupPath := fs.String("dedup-path", "", "Duplicate index directory (default <path>.dedup)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}
	if *dedupPath == "" && *path != "" {
		*dedupPath = defaultDedupPath(*path)
	}

	e, err := open(*path, openOptions{dedupPath: *dedupPath})
	if err != nil {
		return err
	}
	defer e.close()

	deleted, err := e.svc.DeleteAccount(context.Background(), *username, *platform)
	if err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}

	fmt.Fprintf(stdout, "Account removed: %s (%d game(s) deleted)\n", strings.ToLower(*username), deleted)
	return nil
}
