package logging

import (
	"io"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
)

type stdLogger struct {
	out  *log.Logger
	file *lumberjack.Logger
}

var logger Logger = newStdLogger(os.Stderr)

func newStdLogger(w io.Writer) stdLogger {
	return stdLogger{out: log.New(w, "", log.LstdFlags)}
}

// SetOutput sends log messages to w, closing any open log file.
func SetOutput(w io.Writer) {
	logger.Shutdown()
	logger = newStdLogger(w)
}

type LogConfig struct {
	Logfile string
	MaxSize int `toml:"max_log_size"`
	MaxAge  int `toml:"max_log_age"`
	Level   string
}

// SetLogger applies the configured level and, when a log file is named,
// sends log messages to it with size and age based rotation.
func (c *LogConfig) SetLogger() error {
	if c == nil {
		return nil
	}
	m, err := ParseMode(c.Level)
	if err != nil {
		return err
	}
	SetLogMode(m)
	if c.Logfile == "" {
		return nil
	}
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	logger.Shutdown()
	logger = stdLogger{out: log.New(l, "", log.LstdFlags), file: l}
	return nil
}

// --- Logger implementation ----

func (slog stdLogger) Debugf(format string, args ...interface{}) {
	slog.out.Printf("   DEBUG "+format, args...)
}

func (slog stdLogger) Infof(format string, args ...interface{}) {
	slog.out.Printf("    INFO "+format, args...)
}

func (slog stdLogger) Warningf(format string, args ...interface{}) {
	slog.out.Printf(" WARNING "+format, args...)
}

func (slog stdLogger) Errorf(format string, args ...interface{}) {
	slog.out.Printf("   ERROR "+format, args...)
}

func (slog stdLogger) Criticalf(format string, args ...interface{}) {
	slog.out.Printf("CRITICAL "+format, args...)
}

func (slog stdLogger) Shutdown() {
	if slog.file != nil {
		slog.file.Close()
	}
}
