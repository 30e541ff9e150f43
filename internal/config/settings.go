package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. KBCONSOLE_BASE_URL.
const EnvPrefix = "KBCONSOLE"

// Setting keys.
const (
	KeyBaseURL  = "base_url"
	KeyTimeout  = "timeout"
	KeyPageSize = "page_size"
	KeyLogFile  = "log_file"
	KeyLogLevel = "log_level"
)

// MaxPageSize is the largest page the backend serves.
const MaxPageSize = 100

// Settings are non-secret runtime options read from settings.yaml, the
// environment and flags.
type Settings struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
	LogFile  string
	LogLevel string
}

// NewViper returns a viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, "http://127.0.0.1:8011")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyPageSize, 20)
	v.SetDefault(KeyLogFile, filepath.Join(Dir(), "kbconsole.log"))
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads the settings file (file, or ~/.kbconsole/settings.yaml
// when empty) into v and returns the resolved values. A missing default
// file is fine; a missing explicit file is not.
func LoadSettings(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	s := &Settings{
		BaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		Timeout:  v.GetDuration(KeyTimeout),
		PageSize: v.GetInt(KeyPageSize),
		LogFile:  strings.TrimSpace(v.GetString(KeyLogFile)),
		LogLevel: strings.TrimSpace(v.GetString(KeyLogLevel)),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("settings: %s is required", KeyBaseURL)
	}
	if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("settings: %s must be an http(s) URL, got %q", KeyBaseURL, s.BaseURL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("settings: %s must be positive", KeyTimeout)
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return fmt.Errorf("settings: %s must be between 1 and %d, got %d", KeyPageSize, MaxPageSize, s.PageSize)
	}
	return nil
}
