package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gravitrone/kbconsole/internal/config"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/logging"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/session"
)

// errNeedsYes is returned for a destructive command that cannot prompt.
var errNeedsYes = errors.New("confirmation required: re-run with --yes or from a terminal")

// Env carries what every command needs: resolved settings, the logger and
// the terminal it talks to.
type Env struct {
	Viper    *viper.Viper
	Settings *config.Settings
	Log      zerolog.Logger

	In          io.Reader
	Interactive bool

	settingsFile string
	scopeFlag    string
	yes          bool
	logFile      *logging.Log
}

// NewEnv creates an env bound to the process terminal.
func NewEnv() *Env {
	return &Env{
		Viper:       config.NewViper(),
		Log:         logging.Nop(),
		In:          os.Stdin,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Bind registers the persistent flags on root and loads settings and the
// logger before any command runs.
func (e *Env) Bind(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&e.settingsFile, "config", "", "settings file (default ~/.kbconsole/settings.yaml)")
	flags.String("base-url", "", "backend base URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&e.scopeFlag, "scope", "", "business scope (water, bus, bike)")
	flags.BoolVarP(&e.yes, "yes", "y", false, "skip confirmation prompts")
	_ = e.Viper.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = e.Viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return e.Init()
	}
}

// Init resolves settings and opens the log file. Safe to call twice.
func (e *Env) Init() error {
	if e.Settings != nil {
		return nil
	}
	settings, err := config.LoadSettings(e.Viper, e.settingsFile)
	if err != nil {
		return err
	}
	log, err := logging.New().FromPath(settings.LogFile).Level(settings.LogLevel).Make()
	if err != nil {
		return err
	}
	e.Settings = settings
	e.logFile = log
	e.Log = log.Logger
	e.Log.Debug().Str("base_url", settings.BaseURL).Msg("settings loaded")
	return nil
}

// Close releases the log file.
func (e *Env) Close() error {
	return e.logFile.Close()
}

// Session opens the saved operator session.
func (e *Env) Session() (*session.Session, error) {
	if err := e.Init(); err != nil {
		return nil, err
	}
	return session.Open(e.Settings, e.Log)
}

// Scope resolves --scope against the session.
func (e *Env) Scope(s *session.Session) (scope.Scope, error) {
	return s.Scope(e.scopeFlag)
}

// Confirmer approves everything under --yes, asks on a terminal, and
// refuses otherwise.
func (e *Env) Confirmer() confirm.Confirmer {
	switch {
	case e.yes:
		return confirm.Yes
	case e.Interactive:
		return confirm.Terminal{}
	default:
		return confirm.Func(func(confirm.Prompt) (bool, error) {
			return false, errNeedsYes
		})
	}
}

// PageSize is the configured list page size.
func (e *Env) PageSize() int {
	if e.Settings == nil {
		return 20
	}
	return e.Settings.PageSize
}

// guarded reports err through the session guard so a rejected token ends
// the session.
func guarded(s *session.Session, err error) error {
	if err == nil {
		return nil
	}
	return s.Guard(err)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
