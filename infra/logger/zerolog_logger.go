package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the global log level and output format.
type Config struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string `json:"level"`
	// Format is "console" or "json". Empty defers to APP_ENV.
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging: unknown format %s", c.Format)
	}
}

var (
	outMu  sync.RWMutex
	output io.Writer = os.Stdout
	format string
)

// Configure applies cfg process-wide. Loggers created afterwards use it.
func Configure(cfg Config) error {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	zerolog.SetGlobalLevel(lvl)
	outMu.Lock()
	format = strings.ToLower(cfg.Format)
	outMu.Unlock()
	return nil
}

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	outMu.Lock()
	output = w
	outMu.Unlock()
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger. Console output is used when the
// configured format is "console" or, with no format set, when APP_ENV=dev.
// All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	outMu.RLock()
	w, f := output, format
	outMu.RUnlock()
	console := f == "console" || (f == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev")
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
