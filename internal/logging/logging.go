// Package logging provides the per-run log file. Every major step and every
// failure is appended here with a timestamp; the tool never deletes it.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLogger writes the timestamped log file for a single run. It is threaded
// explicitly through every component rather than held as ambient state.
type RunLogger struct {
	*zap.SugaredLogger
	path string
	file *os.File
}

// NewRunLogger creates a log file named deploy_YYYYMMDD_HHMMSS.log in the
// working directory and opens it append-only for the duration of the run.
func NewRunLogger() (*RunLogger, error) {
	path := fmt.Sprintf("deploy_%s.log", time.Now().Format("20060102_150405"))
	return NewRunLoggerAt(path)
}

// NewRunLoggerAt opens a run log at an explicit path.
func NewRunLoggerAt(path string) (*RunLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(file),
		zapcore.InfoLevel,
	)

	logger := zap.New(core)
	return &RunLogger{
		SugaredLogger: logger.Sugar(),
		path:          path,
		file:          file,
	}, nil
}

// Path returns the log file location for operator reference.
func (l *RunLogger) Path() string {
	return l.path
}

// Close flushes and closes the log file.
func (l *RunLogger) Close() error {
	_ = l.Sync()
	return l.file.Close()
}
