package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0600

// Builder assembles a zerolog logger. The TUI owns stdout, so the default
// sink is a file.
type Builder struct {
	writer io.Writer
	path   string
	level  string
}

// Log is a built logger plus the file it writes to, if any.
type Log struct {
	File   *os.File
	Logger zerolog.Logger
}

// New starts a builder.
func New() *Builder {
	return &Builder{}
}

// FromPath appends log lines to the file at path.
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromWriter writes log lines to w. Ignored when a path is set.
func (b *Builder) FromWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

// Level sets the minimum level by name ("debug", "info", ...).
func (b *Builder) Level(level string) *Builder {
	b.level = level
	return b
}

// Make opens the sink and returns the logger.
func (b *Builder) Make() (*Log, error) {
	out := &Log{}
	writer := b.writer
	if b.path != "" {
		if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out.File = f
		writer = zerolog.SyncWriter(f)
	}
	if writer == nil {
		writer = io.Discard
	}

	level := zerolog.InfoLevel
	if name := strings.TrimSpace(b.level); name != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(name))
		if err != nil {
			if out.File != nil {
				_ = out.File.Close()
			}
			return nil, fmt.Errorf("parse log level %q: %w", name, err)
		}
		level = parsed
	}

	out.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return out, nil
}

// Close releases the log file.
func (l *Log) Close() error {
	if l == nil || l.File == nil {
		return nil
	}
	return l.File.Close()
}

// Nop returns a logger that drops everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
