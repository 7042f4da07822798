// Package errors provides the structured error type (ArchiverError) used for
// category-based classification of pipeline failures and CLI exit codes.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an archiver error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig        ErrorCategory = "config"
	CategoryValidation    ErrorCategory = "validation"
	CategoryExportOptions ErrorCategory = "export_options"

	// External tool errors
	CategoryBuild   ErrorCategory = "build"
	CategoryPackage ErrorCategory = "package"

	// Archive and artifact errors
	CategoryArchive     ErrorCategory = "archive"
	CategoryApplication ErrorCategory = "application"
	CategoryFileSystem  ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryToolchain ErrorCategory = "toolchain"
	CategoryInternal  ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// Sentinels for the fatal pipeline conditions. Constructors in this package
// chain them into the cause so callers can use errors.Is.
var (
	ErrBuild                  = stdErrors.New("build command failed")
	ErrEmptyArchive           = stdErrors.New("archive is empty")
	ErrPackage                = stdErrors.New("package command failed")
	ErrMalformedExportOptions = stdErrors.New("malformed export options")
	ErrMissingApplication     = stdErrors.New("application bundle not found")
	ErrConfigNotFound         = stdErrors.New("no such file")
)

// ArchiverError is a structured error with category, severity, captured tool
// output and context.
type ArchiverError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Output   string        `json:"output,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ArchiverError
type ContextFields map[string]any

// Error implements the error interface
func (e *ArchiverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ArchiverError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ArchiverError) WithContext(key string, value any) *ArchiverError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithOutput attaches captured process output.
func (e *ArchiverError) WithOutput(output string) *ArchiverError {
	e.Output = output
	return e
}

// New creates a new ArchiverError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ArchiverError {
	return &ArchiverError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ArchiverError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ArchiverError {
	return &ArchiverError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As extracts an *ArchiverError from anywhere in the chain.
func As(err error) (*ArchiverError, bool) {
	var ae *ArchiverError
	if stdErrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ae, ok := As(err); ok {
		return ae.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an ArchiverError
func GetCategory(err error) ErrorCategory {
	if ae, ok := As(err); ok {
		return ae.Category
	}
	return CategoryInternal
}

// CapturedOutput returns the tool output carried by err, if any.
func CapturedOutput(err error) string {
	if ae, ok := As(err); ok {
		return ae.Output
	}
	return ""
}
