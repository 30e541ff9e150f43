package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	dirMode  os.FileMode = 0o700
	fileMode os.FileMode = 0o600
)

var (
	// ErrNoToken is returned by Load when the session file holds no token.
	ErrNoToken = errors.New("config missing access_token")
	// ErrInsecure is returned by Load when other users can read the session
	// file.
	ErrInsecure = errors.New("config permissions too open")
)

// Config is the operator session stored at ~/.kbconsole/config. It is
// written by login and cleared by logout or a 401.
type Config struct {
	AccessToken  string `yaml:"access_token"`
	UserID       int    `yaml:"user_id"`
	Username     string `yaml:"username"`
	FullName     string `yaml:"full_name,omitempty"`
	Role         string `yaml:"role"`
	ScenarioID   int    `yaml:"scenario_id"`
	DefaultScope string `yaml:"default_scope,omitempty"`
}

// Dir is the directory holding the session, settings and log files.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kbconsole")
}

// Path is the session file.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// Load reads the session. The file must exist, be private to the user and
// carry a token.
func Load() (*Config, error) {
	path := Path()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}
	if perm := info.Mode().Perm(); perm != fileMode {
		return nil, fmt.Errorf("%w: %04o (want %04o)", ErrInsecure, perm, fileMode)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AccessToken == "" {
		return nil, ErrNoToken
	}
	return cfg, nil
}

// Save replaces the session file atomically through a 0600 temp file in
// the same directory.
func (c *Config) Save() error {
	dir := Dir()
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), Path()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func Remove() error {
	err := os.Remove(Path())
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove config: %w", err)
}
