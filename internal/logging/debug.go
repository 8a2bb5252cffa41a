// This file configures the debug log shared by all packages.

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// SetupDebugLog sends the standard logrus logger to path at the given level
// and returns a function that closes the file. An empty path discards all
// log output, which keeps the terminal clear while the TUI is running.
func SetupDebugLog(path, level string) (func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	if path == "" {
		logrus.SetOutput(io.Discard)
		return func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		logrus.SetOutput(io.Discard)
		return nil, fmt.Errorf("failed to create debug log: %w", err)
	}
	logrus.SetOutput(f)

	return func() error {
		logrus.SetOutput(io.Discard)
		return f.Close()
	}, nil
}
