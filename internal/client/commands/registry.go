package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"chessql/internal/client/display"
)

// ErrExit ends the client loop
var ErrExit = errors.New("exit")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Group       string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
	ordered  []*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerAuthCommands()
	r.registerGameCommands()
	r.registerQueryCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Group:       groupUtility,
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Group:       groupUtility,
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     func(*Session, []string) error { return ErrExit },
	})

	return r
}

const (
	groupAuth    = "Auth Commands"
	groupGames   = "Game Commands"
	groupQuery   = "Query Commands"
	groupUtility = "Utility Commands"
)

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.ordered = append(r.ordered, cmd)
}

// Execute runs one input line. It returns ErrExit when the user leaves.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		fmt.Fprintf(r.session.Out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintf(r.session.Out, "Type 'help' for available commands\n")
		return nil
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, parts[1:])
	if err != nil && !errors.Is(err, ErrExit) {
		fmt.Fprintf(r.session.Out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
		return nil
	}
	return err
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.Out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(s.Out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	groups := map[string][]*Command{}
	for _, cmd := range r.ordered {
		groups[cmd.Group] = append(groups[cmd.Group], cmd)
	}
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	fmt.Fprintf(s.Out, "\n%sAvailable Commands:%s\n", display.Cyan, display.Reset)
	for _, g := range names {
		fmt.Fprintf(s.Out, "\n%s%s:%s\n", display.Yellow, g, display.Reset)
		for _, cmd := range groups[g] {
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s] ", cmd.ShortName)
			}
			fmt.Fprintf(s.Out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	fmt.Fprintf(s.Out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(s.Out, "Add '-v' to any command for verbose output\n")
	return nil
}
