package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragenboats logger.ILogger)
// --------------------------------------------------------------------------

// lvbLogger writes one line per entry: level, logger name and message
type lvbLogger struct {
	name  string
	level atomic.Int32
	out   *log.Logger
}

var levelTags = map[logger.LogLevel]string{
	logger.CRITICAL: "CRIT",
	logger.ERROR:    "ERROR",
	logger.WARNING:  "WARN",
	logger.INFO:     "INFO",
	logger.DEBUG:    "DEBUG",
}

func (l *lvbLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *lvbLogger) logf(level logger.LogLevel, format string, args ...interface{}) {
	if logger.LogLevel(l.level.Load()) < level {
		return
	}
	l.out.Printf("%-5s | %-15s | %s", levelTags[level], l.name, fmt.Sprintf(format, args...))
}

func (l *lvbLogger) Debugf(format string, args ...interface{}) {
	l.logf(logger.DEBUG, format, args...)
}

func (l *lvbLogger) Infof(format string, args ...interface{}) {
	l.logf(logger.INFO, format, args...)
}

func (l *lvbLogger) Warningf(format string, args ...interface{}) {
	l.logf(logger.WARNING, format, args...)
}

func (l *lvbLogger) Errorf(format string, args ...interface{}) {
	l.logf(logger.ERROR, format, args...)
}

// Panicf always panics, the entry is logged first
func (l *lvbLogger) Panicf(format string, args ...interface{}) {
	l.logf(logger.CRITICAL, format, args...)
	panic(fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// logOutput is where all loggers created by CreateLogger write to
var logOutput io.Writer = os.Stdout

// CreateLogger is the dragonboat logger factory of dLVB
func CreateLogger(pkgName string) logger.ILogger {
	l := &lvbLogger{
		name: pkgName,
		out:  log.New(logOutput, "", log.Ldate|log.Ltime),
	}
	l.SetLevel(logger.INFO)
	return l
}

// ParseLogLevel converts debug, info, warn or error to a logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s (expected one of debug, info, warn, error)", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// dragonboat's own loggers, they stay at warning unless debug logging is requested
var raftLoggers = []string{"raft", "raftdb", "rsm", "transport", "dragonboat", "grpc", "util", "logdb"}

// dLVB loggers
var appLoggers = []string{"ldlm", "backend", "lifecycle", "workq", "rpc", "transport/rpc"}

// InitLoggers installs the custom logger factory and sets the level of all loggers.
// It must be called at most once per process, dragonboat panics on a second factory.
func InitLoggers(config ServerConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	raftLevel := min(level, logger.WARNING)
	if level == logger.DEBUG {
		raftLevel = logger.DEBUG
	}
	for _, name := range raftLoggers {
		logger.GetLogger(name).SetLevel(raftLevel)
	}
	for _, name := range appLoggers {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}
