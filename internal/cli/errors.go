// Package cli provides shared configuration and utilities for the sqltemplate CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Exit codes.
const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitConfig    = 2
	ExitTree      = 3
	ExitDBConnect = 4
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var errorLabel = color.New(color.FgRed, color.Bold)

// ExitWithError prints the error and exits with the appropriate code.
func ExitWithError(err error) {
	code := ExitGeneral
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}
	_, _ = errorLabel.Fprint(os.Stderr, "Error:")
	fmt.Fprintln(os.Stderr, "", err.Error())
	os.Exit(code)
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// TreeError creates an ExitError with ExitTree code, used when a query tree
// cannot be read or compiled.
func TreeError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitTree, Message: msg, Err: err}
}

// DBConnectError creates an ExitError with ExitDBConnect code.
func DBConnectError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDBConnect, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}
