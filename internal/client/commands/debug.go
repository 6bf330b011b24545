package commands

import (
	"fmt"
	"strings"
	"time"

	"chessql/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Group:       groupUtility,
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Group:       groupUtility,
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Group:       groupUtility,
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})
}

func healthHandler(s *Session, args []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  Status:  %s\n", resp.Status)
	fmt.Fprintf(s.Out, "  Time:    %s\n", time.Unix(resp.Time, 0).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.Out, "  Storage: %s\n", resp.Storage)
	fmt.Fprintf(s.Out, "  Games:   %d\n", resp.Games)
	fmt.Fprintf(s.Out, "  Workers: %d\n", resp.Workers)
	return nil
}

func urlHandler(s *Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.Out, "Current API URL: %s\n", s.Client.BaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	s.Client.SetBaseURL(url)

	fmt.Fprintf(s.Out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(s *Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}
	return s.Client.RawRequest(strings.ToUpper(args[0]), args[1], body)
}
