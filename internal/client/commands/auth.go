package commands

import (
	"fmt"
	"os"

	"chessql/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "r",
		Group:       groupAuth,
		Description: "Register a new user",
		Usage:       "register [username] [password]",
		Handler:     registerHandler,
	})

	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Group:       groupAuth,
		Description: "Login with credentials",
		Usage:       "login [username|email] [password]",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Group:       groupAuth,
		Description: "End the server session",
		Usage:       "logout",
		Handler:     logoutHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Group:       groupAuth,
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
}

func (s *Session) readPassword(label string) (string, error) {
	fmt.Fprint(s.Out, label)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(s.Out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// credentials takes name and password from args, prompting for what is missing
func (s *Session) credentials(args []string, nameLabel string) (string, string, error) {
	var name, password string
	if len(args) > 0 {
		name = args[0]
	} else {
		name = s.prompt(display.Yellow + nameLabel + display.Reset)
	}
	if len(args) > 1 {
		password = args[1]
	} else {
		pw, err := s.readPassword(display.Yellow + "Password: " + display.Reset)
		if err != nil {
			return "", "", err
		}
		password = pw
	}
	if name == "" || password == "" {
		return "", "", fmt.Errorf("username and password required")
	}
	return name, password, nil
}

func registerHandler(s *Session, args []string) error {
	username, password, err := s.credentials(args, "Username: ")
	if err != nil {
		return err
	}

	var email string
	if len(args) < 2 {
		email = s.prompt(display.Yellow + "Email (optional): " + display.Reset)
	}

	resp, err := s.Client.Register(username, password, email)
	if err != nil {
		return err
	}
	s.signIn(resp.Token, resp.UserID, resp.Username)

	fmt.Fprintf(s.Out, "%sRegistered successfully%s\n", display.Green, display.Reset)
	fmt.Fprintf(s.Out, "User ID: %s\n", resp.UserID)
	return nil
}

func loginHandler(s *Session, args []string) error {
	identifier, password, err := s.credentials(args, "Username or Email: ")
	if err != nil {
		return err
	}

	resp, err := s.Client.Login(identifier, password)
	if err != nil {
		return err
	}
	s.signIn(resp.Token, resp.UserID, resp.Username)

	fmt.Fprintf(s.Out, "%sLogged in as %s%s\n", display.Green, resp.Username, display.Reset)
	fmt.Fprintf(s.Out, "Token expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (s *Session) signIn(token, userID, username string) {
	s.Client.SetToken(token)
	s.UserID = userID
	s.Username = username
	if s.Reference == "" {
		s.Reference = username
	}
}

func logoutHandler(s *Session, args []string) error {
	if s.Client.AuthToken == "" {
		return fmt.Errorf("not authenticated")
	}
	if err := s.Client.Logout(); err != nil {
		return err
	}
	s.UserID = ""
	s.Username = ""

	fmt.Fprintf(s.Out, "%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s *Session, args []string) error {
	if s.Client.AuthToken == "" {
		fmt.Fprintf(s.Out, "%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.Client.GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  User ID:  %s\n", user.UserID)
	fmt.Fprintf(s.Out, "  Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Fprintf(s.Out, "  Email:    %s\n", user.Email)
	}
	fmt.Fprintf(s.Out, "  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	if user.LastLoginAt != nil {
		fmt.Fprintf(s.Out, "  Last Login: %s\n", user.LastLoginAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
