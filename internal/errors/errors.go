package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/seedjournal/internal/logger"
)

// ErrNotFound is returned when an update targets a habit or completion id
// that does not exist. Deletes of missing ids are silent no-ops instead.
var ErrNotFound = errors.New("record not found")

// ErrMalformedImport is returned when an import payload contains none of
// the recognized top-level collections (habits, completions, settings).
var ErrMalformedImport = errors.New("malformed import payload: no habits, completions, or settings present")

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
