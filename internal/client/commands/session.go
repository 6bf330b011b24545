package commands

import (
	"bufio"
	"io"
	"os"
	"strings"

	"chessql/internal/client/api"
)

// Session is the client state shared by all commands
type Session struct {
	Client    *api.Client
	UserID    string
	Username  string
	Reference string
	Verbose   bool

	// Paging state of the last query
	LastQuery string
	Page      int
	Limit     int

	Out io.Writer
	In  *bufio.Scanner
}

func NewSession(baseURL string) *Session {
	c := api.New(baseURL)
	return &Session{
		Client: c,
		Page:   1,
		Limit:  20,
		Out:    c.Out,
		In:     bufio.NewScanner(os.Stdin),
	}
}

// prompt reads one trimmed line after printing label
func (s *Session) prompt(label string) string {
	io.WriteString(s.Out, label)
	if !s.In.Scan() {
		return ""
	}
	return strings.TrimSpace(s.In.Text())
}
