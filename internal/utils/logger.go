package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/quantmind-br/repozip/internal/config"
	"github.com/rs/zerolog"
)

// Logger tags zerolog output with the component and repository a line
// belongs to
type Logger struct {
	zerolog.Logger
}

// LoggerOptions configures NewLogger
type LoggerOptions struct {
	// Level is any zerolog level name; unknown names mean info
	Level string
	// Format is "json" for one object per line, anything else is the
	// human-readable console format
	Format string
	// Output defaults to stderr so stdout stays free for command output
	Output  io.Writer
	Verbose bool
}

// NewLogger builds a Logger from opts
func NewLogger(opts LoggerOptions) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	if !strings.EqualFold(opts.Format, "json") {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.TimeOnly,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	return &Logger{
		Logger: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

// NewLoggerFromConfig builds the process logger from the logging section.
// verbose forces debug output.
func NewLoggerFromConfig(cfg config.LoggingConfig, verbose bool) *Logger {
	return NewLogger(LoggerOptions{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Verbose: verbose,
	})
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level, falling back to info
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithRepo returns a logger tagged with owner/repo
func (l *Logger) WithRepo(owner, repo string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("repo", owner+"/"+repo).Logger(),
	}
}
