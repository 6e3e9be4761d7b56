package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	debugLogger *log.Logger
	logFile     *os.File
	mu          sync.Mutex
)

// SetupLogger opens (or appends to) the debug log at logFilePath.
// Calling it again while a log is open is a no-op.
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	debugLogger = log.New(f, "", log.LstdFlags)
	debugLogger.Printf("--- shapecluster debug log started at %s ---", time.Now().Format(time.RFC3339))
	return nil
}

// SetupWriter routes debug output to w. Tests use it to capture log lines.
func SetupWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	debugLogger = log.New(w, "", 0)
}

// CloseLogger closes the log file and disables debug output
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		debugLogger.Printf("--- shapecluster debug log closed at %s ---", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
	}
	debugLogger = nil
}

// Enabled reports whether a debug log is configured
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugLogger != nil
}

// LogInfo logs an information message, falling back to the standard logger
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("INFO: "+format, args...)
	} else {
		log.Printf("INFO: "+format, args...)
	}
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("ERROR: "+format, args...)
	}
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		debugLogger.Printf("WARNING: "+format, args...)
	}
}

// LogImageLoaded logs the outcome of loading one image
func LogImageLoaded(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()

	if debugLogger != nil {
		if success {
			debugLogger.Printf("LOADED: %s", path)
		} else {
			debugLogger.Printf("FAILED: %s - Error: %s", path, errMsg)
		}
	}
}
