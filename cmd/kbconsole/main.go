package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/kbconsole/internal/cmd"
	"github.com/gravitrone/kbconsole/internal/ui"
)

func main() {
	env := cmd.NewEnv()
	root := cmd.NewRootCmd(env, func() error {
		return runTUI(env)
	})

	err := root.Execute()
	_ = env.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(env *cmd.Env) error {
	sess, err := env.Session()
	if err != nil {
		if !env.Interactive {
			fmt.Println("not logged in. run 'kbconsole login' first.")
		}
		return err
	}
	s, err := env.Scope(sess)
	if err != nil {
		return err
	}

	app := ui.NewApp(sess, ui.Options{Scope: s, PageSize: env.PageSize(), Log: env.Log})
	env.Log.Info().Str("user", sess.Config.Username).Str("scope", s.String()).Msg("console started")

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	if sess.Ended() {
		fmt.Println("session ended. run 'kbconsole login' to sign in again.")
	}
	return nil
}
