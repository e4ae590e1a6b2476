// Package logging configures the process-wide logrus logger. The terminal UI
// owns stdout, so logs go to a file or nowhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const DebugEnvVar = "STACKAREA_DEBUG"

// Enabled reports whether logging should be switched on for the given flag
// value.
func Enabled(path string) bool {
	return path != "" || os.Getenv(DebugEnvVar) != ""
}

// Setup routes logrus output. With an empty path and no STACKAREA_DEBUG, all
// output is discarded. STACKAREA_DEBUG alone logs to stderr, which is only
// useful for the non-interactive commands. The returned closer releases the
// log file, if one was opened.
func Setup(path string) (io.Closer, error) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if !Enabled(path) {
		logrus.SetOutput(io.Discard)
		logrus.SetLevel(logrus.WarnLevel)
		return io.NopCloser(nil), nil
	}

	logrus.SetLevel(logrus.DebugLevel)
	if path == "" {
		logrus.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logrus.SetOutput(f)
	logrus.RegisterExitHandler(func() { _ = f.Close() })
	return f, nil
}
