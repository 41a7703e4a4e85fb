// Package logger adapts logrus to the ports.Logger interface.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/doeshing/jarvis-go/internal/ports"
)

// Options configures a Logger.
type Options struct {
	// Level is a logrus level name; empty means "warn".
	Level string
	// Verbose forces debug level.
	Verbose bool
	// File enables rotating file output instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Output overrides the destination (tests).
	Output io.Writer
}

// Logger is a logrus-backed ports.Logger.
type Logger struct {
	entry  *logrus.Logger
	closer io.Closer
}

// New builds a Logger from options.
func New(opts Options) *Logger {
	base := logrus.New()
	base.SetFormatter(&lineFormatter{})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = logrus.WarnLevel
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	base.SetLevel(level)

	l := &Logger{entry: base}
	switch {
	case opts.Output != nil:
		base.SetOutput(opts.Output)
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err == nil {
			rotating := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    positive(opts.MaxSizeMB, 10),
				MaxBackups: opts.MaxBackups,
			}
			base.SetOutput(rotating)
			l.closer = rotating
		} else {
			base.SetOutput(os.Stderr)
		}
	default:
		base.SetOutput(os.Stderr)
	}
	return l
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(Options{Output: io.Discard})
}

// Writer exposes an io.Writer at info level, used for gin's access log.
func (l *Logger) Writer() *io.PipeWriter {
	return l.entry.Writer()
}

// Close releases the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	l.entry.WithFields(fields).WithError(err).Error(msg)
}

// lineFormatter renders: [2025-12-23 20:14:04] [warn ] message | key=value, key=value
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := entry.Buffer
	if buffer == nil {
		buffer = &bytes.Buffer{}
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	fmt.Fprintf(buffer, "[%s] [%-5s] %s", entry.Time.Format("2006-01-02 15:04:05"), level, strings.TrimRight(entry.Message, "\r\n"))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buffer.WriteString(" |")
		for i, k := range keys {
			if i > 0 {
				buffer.WriteString(",")
			}
			fmt.Fprintf(buffer, " %s=%v", k, entry.Data[k])
		}
	}
	buffer.WriteString("\n")
	return buffer.Bytes(), nil
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

var _ ports.Logger = (*Logger)(nil)
