package obs

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// LogLevel gates what the process logs. The gate sits in front of the shared
// logger so one flag applies to every call site.
type LogLevel int32

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var ErrUnknownLogLevel = errors.New("unknown log level")

var (
	logLevel = int32(LogLevelInfo)

	logFileMu sync.Mutex
	logFile   *os.File
)

// ParseLogLevel accepts debug, info, warn, warning and error, case-insensitive.
func ParseLogLevel(raw string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, errors.Wrapf(ErrUnknownLogLevel, "level: %s", raw)
	}
}

// SetLogLevel applies the gate process-wide.
func SetLogLevel(l LogLevel) {
	atomic.StoreInt32(&logLevel, int32(l))
}

// SetLogFile mirrors every emitted line into the given file, appending.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()
	return nil
}

// CloseLogFile detaches and closes the mirror file, if any.
func CloseLogFile() error {
	logFileMu.Lock()
	f := logFile
	logFile = nil
	logFileMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

func logEnabled(l LogLevel) bool {
	return int32(l) >= atomic.LoadInt32(&logLevel)
}

func mirror(level string, format string, args []any) {
	logFileMu.Lock()
	f := logFile
	if f != nil {
		fmt.Fprintf(f, "%s %s %s\n",
			time.Now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
	}
	logFileMu.Unlock()
}

func Debugf(format string, args ...any) {
	if !logEnabled(LogLevelDebug) {
		return
	}
	logs.Debugf(format, args...)
	mirror("DEBUG", format, args)
}

func Infof(format string, args ...any) {
	if !logEnabled(LogLevelInfo) {
		return
	}
	logs.Infof(format, args...)
	mirror("INFO", format, args)
}

func Warnf(format string, args ...any) {
	if !logEnabled(LogLevelWarn) {
		return
	}
	logs.Warnf(format, args...)
	mirror("WARN", format, args)
}

func Errorf(format string, args ...any) {
	if !logEnabled(LogLevelError) {
		return
	}
	logs.Errorf(format, args...)
	mirror("ERROR", format, args)
}
