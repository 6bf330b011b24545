// Package main implements an interactive debugging client for the ChessQL API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessql/internal/client/commands"
	"chessql/internal/client/display"

	"github.com/chzyer/readline"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "API base URL")
	reference := flag.String("reference", "", "Reference player for player clauses")
	history := flag.String("history", ".chessql_client_history", "History file")
	flag.Parse()

	s := commands.NewSession(*url)
	s.Reference = *reference

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chessql"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChessQL Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		if errors.Is(registry.Execute(line), commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	var parts []string
	if s.Username != "" {
		parts = append(parts, display.Magenta+s.Username+display.Reset)
	}
	if s.Reference != "" && s.Reference != s.Username {
		parts = append(parts, "ref:"+s.Reference)
	}
	if s.LastQuery != "" {
		parts = append(parts, fmt.Sprintf("p%d", s.Page))
	}

	prompt := "chessql"
	if len(parts) > 0 {
		prompt += display.Yellow + " [" + display.Reset + strings.Join(parts, " ") + display.Yellow + "]"
	}
	return display.Prompt(prompt)
}
