package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"nawabs/internal/paths"
)

// Logger keeps the subset of log.Logger used across the tool, enabling easy
// testing with no-op or recording implementations.
type Logger interface {
	Printf(format string, v ...any)
}

// Noop discards everything.
type Noop struct{}

func (Noop) Printf(string, ...any) {}

// New creates a logger that writes to a timestamped file inside the
// workspace's logs directory. The returned closer should be closed when
// logging is no longer needed.
func New(pp paths.WorkspacePaths, command string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(pp.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + "-" + command + ".log"
	filePath := filepath.Join(pp.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return logger, file, nil
}

// Tee fans Printf calls out to several loggers, skipping nil entries.
type Tee []Logger

func (t Tee) Printf(format string, v ...any) {
	for _, l := range t {
		if l != nil {
			l.Printf(format, v...)
		}
	}
}
