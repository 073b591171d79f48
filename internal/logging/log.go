// Package logging wires up the rotating-file backend shared by the
// crawler and its command-line entrypoint, following the
// decred/slog plus jrick/logrotate pairing used throughout this
// codebase's ecosystem.
package logging

import (
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator is nil until InitLogRotator is called, matching the package
// lazily-initialized singleton used by dcrd-family daemons.
var logRotator *rotator.Rotator

// logWriter forwards Write to stdout and, once InitLogRotator has run, to
// the log rotator as well. Backend is built on it from the start so that
// subsystem loggers created before InitLogRotator still pick up the
// rotated file afterwards.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// Backend is the slog.Backend every subsystem logger in this module is
// built from.
var Backend = slog.NewBackend(logWriter{})

// InitLogRotator initializes the rotating log file at logFile. Subsequent
// log output is written both to stdout and to the rotated file. It must be
// called at most once, before any subsystem logger is used in anger.
func InitLogRotator(logFile string) error {
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("logging: failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// Logger returns a new subsystem logger at the given tag (e.g. "CRWL",
// "PEER") sharing Backend.
func Logger(tag string) slog.Logger {
	l := Backend.Logger(tag)
	l.SetLevel(slog.LevelInfo)
	return l
}
