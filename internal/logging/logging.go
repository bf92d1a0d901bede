package logging

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the service logger. The returned logger is passed to
// components explicitly; nothing in this repo logs through a global.
func New(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
}
