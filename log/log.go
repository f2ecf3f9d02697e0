/*
 * Copyright (c) 2019-2024 The aurum developers
 */

// Package log wires every subsystem logger to a shared btclog backend that
// writes to standard error and, once InitLogRotator has been called, to a
// rotating log file.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
	"github.com/mattn/go-colorable"
)

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if logRotator != nil {
		logRotator.Write(p)
	}
	colorableWrite.Write(p)
	return len(p), nil
}

var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.  The backend must not be used before the log rotator has
	// been initialized, or data races and/or nil pointer dereferences
	// will occur.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	// Stderr is used rather than stdout so daemon supervisors capture
	// runtime panics in the same stream.
	colorableWrite = colorable.NewColorableStderr()

	mtx sync.Mutex

	// subsystemLoggers maps each subsystem identifier to its associated
	// logger.
	subsystemLoggers = map[string]btclog.Logger{}
)

// New returns the logger for the given subsystem tag, creating it on first
// use.  Loggers obtained before InitLogRotator only write to standard error.
func New(tag string) btclog.Logger {
	mtx.Lock()
	defer mtx.Unlock()

	if logger, ok := subsystemLoggers[tag]; ok {
		return logger
	}
	logger := backendLog.Logger(tag)
	subsystemLoggers[tag] = logger
	return logger
}

// InitLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory.  It must be called before
// the package-global log rotator variables are used.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}
	logRotator = r
	return nil
}

// SetLogLevel sets the logging level for the provided subsystem.  Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	mtx.Lock()
	defer mtx.Unlock()

	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	mtx.Lock()
	defer mtx.Unlock()

	level, _ := btclog.LevelFromString(logLevel)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}

// SupportedSubsystems returns a sorted slice of the registered subsystems.
func SupportedSubsystems() []string {
	mtx.Lock()
	defer mtx.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.  The levels can be specified either as a single level applied to
// all subsystems or as a comma separated list of subsystem=level pairs.
func ParseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if _, ok := btclog.LevelFromString(debugLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is invalid",
				debugLevel)
		}
		SetLogLevels(debugLevel)
		return nil
	}

	// Split the specified string into subsystem/level pairs and set the
	// levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return fmt.Errorf("the specified debug level contains an "+
				"invalid subsystem/level pair [%v]", logLevelPair)
		}
		fields := strings.Split(logLevelPair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level has an invalid "+
				"format [%v] -- use format subsystem1=level1,subsystem2=level2",
				logLevelPair)
		}
		subsysID, logLevel := fields[0], fields[1]
		if _, ok := btclog.LevelFromString(logLevel); !ok {
			return fmt.Errorf("the specified debug level [%v] is invalid",
				logLevel)
		}
		SetLogLevel(subsysID, logLevel)
	}
	return nil
}

// Close shuts down the log rotator.
func Close() {
	if logRotator != nil {
		logRotator.Close()
	}
}
