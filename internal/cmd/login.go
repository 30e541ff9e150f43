package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/config"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/session"
)

// RunInteractiveLogin prompts for credentials, calls the login API and
// persists the session. Off a terminal both values are read as lines from in.
func RunInteractiveLogin(env *Env, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password, err := readPassword(env, reader, out)
	if err != nil {
		return err
	}

	client := api.NewClient(env.Settings.BaseURL, "", env.Settings.Timeout)
	client.SetLogger(env.Log)
	cfg, err := session.Login(client, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "logged in as %s (%s)\n", cfg.Username, cfg.Role)
	fmt.Fprintf(out, "scopes: %s\n", scopeList(scope.Allowed(cfg.ScenarioID)))
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

func readPassword(env *Env, reader *bufio.Reader, out io.Writer) (string, error) {
	if env.Interactive {
		var password string
		err := huh.NewInput().
			Title("password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return "", fmt.Errorf("login aborted")
		}
		return password, err
	}
	fmt.Fprint(out, "password: ")
	password, _ := reader.ReadString('\n')
	return strings.TrimRight(password, "\r\n"), nil
}

func scopeList(scopes []scope.Scope) string {
	parts := make([]string, 0, len(scopes))
	for _, s := range scopes {
		parts = append(parts, fmt.Sprintf("%s (%s)", s, s.Domain()))
	}
	return strings.Join(parts, ", ")
}

// LoginCmd returns the `kbconsole login` command.
func LoginCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the knowledge-base backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.Init(); err != nil {
				return err
			}
			return RunInteractiveLogin(env, env.In, cmd.OutOrStdout())
		},
	}
}

// LogoutCmd returns the `kbconsole logout` command.
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

// WhoamiCmd returns the `kbconsole whoami` command.
func WhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in operator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("not logged in: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "user: %s (#%d)\n", cfg.Username, cfg.UserID)
			if cfg.FullName != "" {
				fmt.Fprintf(w, "name: %s\n", cfg.FullName)
			}
			fmt.Fprintf(w, "role: %s\n", cfg.Role)
			fmt.Fprintf(w, "scenario: %d\n", cfg.ScenarioID)
			fmt.Fprintf(w, "scopes: %s\n", scopeList(scope.Allowed(cfg.ScenarioID)))
			return nil
		},
	}
}
