// Package dbg provides the orchestrator's verbose tracing log, written to
// logs/main.log (spec "Produced files"). It is off by default; ordinary
// progress output is printed at call sites instead.
package dbg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug is a build flag, can be overridden at build time:
// go build -ldflags "-X .../internal/dbg.EnableDebug=true"
var EnableDebug = "false"

var (
	output io.Writer
	file   *os.File
	mu     sync.Mutex
)

// InitLogFile opens logs/main.log (relative to workDir) for verbose tracing
// and returns its path. Call CloseLogFile when the run ends.
func InitLogFile(workDir string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	logDir := filepath.Join(workDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "main.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open main.log: %w", err)
	}

	file = f
	output = f
	return logPath, nil
}

// CloseLogFile closes the log file if one is open.
func CloseLogFile() error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		err := file.Close()
		file, output = nil, nil
		return err
	}
	return nil
}

// Enabled reports whether verbose tracing is turned on.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Log writes a timestamped, component-tagged trace line when tracing is
// enabled and a log file is open; it is a no-op otherwise.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "[%s][%s] "+format+"\n", append([]interface{}{ts, component}, args...)...)
}

// LogWorker traces Instance Worker activity.
func LogWorker(format string, args ...interface{}) { Log("WORKER", format, args...) }

// LogScheduler traces Pass Scheduler / Retry Controller activity.
func LogScheduler(format string, args ...interface{}) { Log("SCHED", format, args...) }

// LogManifest traces Manifest Patcher activity.
func LogManifest(format string, args ...interface{}) { Log("MANIFEST", format, args...) }
