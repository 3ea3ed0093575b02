package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/riseroll/internal/logger"
)

// ErrNotInitialized is returned when the database has not been created yet.
var ErrNotInitialized = stderrors.New("storage not initialized")

// Format formats an error message with a consistent "Error: " prefix
// and appends a hint for errors the user can fix themselves.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, ErrNotInitialized) {
		return fmt.Sprintf("Error: %v (run 'riseroll init' first)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}
