package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

const minPasswordLength = 8

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "set-password":
		return runUserSetPassword(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// readPassword takes the flag value, or prompts when interactive
func readPassword(flagValue string, interactive bool, prompt string) (string, error) {
	var password string
	switch {
	case interactive && flagValue != "":
		return "", fmt.Errorf("cannot use -interactive with -password")
	case interactive:
		fmt.Fprint(stdout, prompt)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(pw)
	case flagValue != "":
		password = flagValue
	default:
		return "", fmt.Errorf("password required: use -password or -interactive")
	}

	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

func runUserAdd(args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password (optional, use -interactive to prompt)")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}

	pw, err := readPassword(*password, *interactive, "Enter password: ")
	if err != nil {
		return err
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.svc.CreateUser(*username, *email, pw)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User created successfully:\n")
	fmt.Fprintf(stdout, "  ID: %s\n", user.UserID)
	fmt.Fprintf(stdout, "  Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Fprintf(stdout, "  Email: %s\n", user.Email)
	}
	return nil
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" && *userID == "" {
		return fmt.Errorf("either -username or -id required")
	}
	if *username != "" && *userID != "" {
		return fmt.Errorf("specify either -username or -id, not both")
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	targetID := *userID
	if targetID == "" {
		user, err := e.svc.GetUserByName(*username)
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		targetID = user.UserID
	}

	if err := e.svc.DeleteUser(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Fprintf(stdout, "User deleted: %s\n", targetID)
	return nil
}

func runUserSetPassword(args []string) error {
	fs := flag.NewFlagSet("user set-password", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}

	pw, err := readPassword(*password, *interactive, "Enter new password: ")
	if err != nil {
		return err
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.svc.GetUserByName(*username)
	if err != nil {
		return fmt.Errorf("user not found: %s", *username)
	}
	if err := e.svc.SetPassword(user.UserID, pw); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Fprintf(stdout, "Password updated for user: %s\n", user.Username)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := open(*path, openOptions{})
	if err != nil {
		return err
	}
	defer e.close()

	users, err := e.svc.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(stdout, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tEmail\tCreated\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.UserID[:8]+"...",
			u.Username,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			lastLogin,
		)
	}
	w.Flush()

	fmt.Fprintf(stdout, "\nTotal users: %d\n", len(users))
	return nil
}
