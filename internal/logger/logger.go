// Package logger provides the process-wide structured logger.
//
// Every call takes a message followed by alternating key/value pairs:
//
//	logger.Info("movie created", "id", movie.ID, "title", movie.Title)
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

const rootName = "reelbase"

var (
	mu   sync.RWMutex
	root = hclog.New(&hclog.LoggerOptions{
		Name:   rootName,
		Level:  hclog.Info,
		Output: os.Stderr,
	})
)

// Configure replaces the root logger. Unknown levels fall back to info;
// format "json" switches to JSON output.
func Configure(level, format string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}

	l := hclog.New(&hclog.LoggerOptions{
		Name:            rootName,
		Level:           lvl,
		Output:          output,
		JSONFormat:      strings.EqualFold(format, "json"),
		IncludeLocation: lvl <= hclog.Debug,
	})

	mu.Lock()
	root = l
	mu.Unlock()
	return l
}

// L returns the root logger.
func L() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Named returns a sub-logger of the root logger.
func Named(name string) hclog.Logger {
	return L().Named(name)
}

func Info(msg string, args ...interface{}) {
	L().Info(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	L().Warn(msg, args...)
}

func Error(msg string, args ...interface{}) {
	L().Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	L().Debug(msg, args...)
}

func Trace(msg string, args ...interface{}) {
	L().Trace(msg, args...)
}
