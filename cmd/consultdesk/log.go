package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/consultdesk/consultdesk/internal/billing"
	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/middleware"
	"github.com/consultdesk/consultdesk/internal/scheduler"
	"github.com/consultdesk/consultdesk/internal/services"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/consultdesk/consultdesk/internal/timetrack"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter writes to standard output and, once initialized, to the log
// rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// Loggers per subsystem. All of them write to the single backend. When
// adding a subsystem, add its logger here and to subsystemLoggers.
var (
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is closed on shutdown.
	logRotator *rotator.Rotator

	log       = backendLog.Logger("CDSK")
	storeLog  = backendLog.Logger("STOR")
	timeLog   = backendLog.Logger("TIME")
	billLog   = backendLog.Logger("BILL")
	httpLog   = backendLog.Logger("HTTP")
	schedLog  = backendLog.Logger("SCHD")
	notifyLog = backendLog.Logger("NTFY")
)

func init() {
	store.UseLogger(storeLog)
	timetrack.UseLogger(timeLog)
	billing.UseLogger(billLog)
	handlers.UseLogger(httpLog)
	middleware.UseLogger(httpLog)
	scheduler.UseLogger(schedLog)
	services.UseLogger(notifyLog)
}

var subsystemLoggers = map[string]slog.Logger{
	"CDSK": log,
	"STOR": storeLog,
	"TIME": timeLog,
	"BILL": billLog,
	"HTTP": httpLog,
	"SCHD": schedLog,
	"NTFY": notifyLog,
}

// initLogRotator makes logFile one of the log outputs, rolling it over in
// the same directory.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}

	logRotator = r
	return nil
}

func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}

func validLogLevel(logLevel string) bool {
	_, ok := slog.LevelFromString(logLevel)
	return ok
}

// parseAndSetDebugLevels applies a debug level string. It is either a
// single level for every subsystem or a comma separated list of
// subsystem=level pairs.
func parseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}
		setLogLevels(debugLevel)
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%v]", pair)
		}

		subsysID, logLevel := fields[0], fields[1]
		if _, exists := subsystemLoggers[subsysID]; !exists {
			return fmt.Errorf("the specified subsystem [%v] is invalid", subsysID)
		}
		if !validLogLevel(logLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", logLevel)
		}
		setLogLevel(subsysID, logLevel)
	}
	return nil
}
