package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/config"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/validate"
)

var (
	// ErrSessionEnded is reported once the backend rejects the saved token.
	ErrSessionEnded = errors.New("session expired: run 'kbconsole login'")
	// ErrInvalidCredentials is returned for a rejected login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(username, password string) (*api.LoginResponse, error)
}

type credentials struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates and persists the session file.
func Login(auth Authenticator, username, password string) (*config.Config, error) {
	in := credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	resp, err := auth.Login(in.Username, in.Password)
	if err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	cfg := &config.Config{
		AccessToken:  resp.AccessToken,
		UserID:       resp.User.ID,
		Username:     resp.User.Username,
		FullName:     resp.User.FullName,
		Role:         resp.User.Role,
		ScenarioID:   resp.User.ScenarioID,
		DefaultScope: scope.Default(resp.User.ScenarioID).String(),
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

// Logout removes the session file.
func Logout() error {
	return config.Remove()
}

// Session is a loaded operator session and the client bound to it.
type Session struct {
	Config *config.Config
	Client *api.Client

	log   zerolog.Logger
	mu    sync.Mutex
	ended bool
}

// Open loads the saved session and builds a client for it.
func Open(settings *config.Settings, log zerolog.Logger) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}
	client := api.NewClient(settings.BaseURL, cfg.AccessToken, settings.Timeout)
	client.SetLogger(log)
	return &Session{Config: cfg, Client: client, log: log}, nil
}

// New wraps an existing config and client.
func New(cfg *config.Config, client *api.Client) *Session {
	return &Session{Config: cfg, Client: client, log: zerolog.Nop()}
}

// Scopes lists the scopes the operator may act on.
func (s *Session) Scopes() []scope.Scope {
	return scope.Allowed(s.Config.ScenarioID)
}

// Scope resolves the working scope: raw when given, else the saved default,
// else the scenario's first scope. It fails for a scope outside the
// operator's scenario.
func (s *Session) Scope(raw string) (scope.Scope, error) {
	if raw == "" {
		raw = s.Config.DefaultScope
	}
	if raw == "" {
		return scope.Default(s.Config.ScenarioID), nil
	}
	sc, err := scope.Parse(raw)
	if err != nil {
		return "", err
	}
	if err := scope.Check(sc, s.Config.ScenarioID); err != nil {
		return "", err
	}
	return sc, nil
}

// Guard ends the session when err is an unauthorized response: the token is
// dropped from the client and the session file, and ErrSessionEnded is
// returned. Other errors pass through.
func (s *Session) Guard(err error) error {
	if err == nil || !api.IsUnauthorized(err) {
		return err
	}
	s.mu.Lock()
	first := !s.ended
	s.ended = true
	s.mu.Unlock()

	if first {
		s.Client.SetToken("")
		if rmErr := config.Remove(); rmErr != nil {
			s.log.Warn().Err(rmErr).Msg("remove session file")
		}
		s.log.Info().Msg("session ended by server")
	}
	return fmt.Errorf("%w (%w)", ErrSessionEnded, err)
}

// Ended reports whether Guard has ended the session.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
