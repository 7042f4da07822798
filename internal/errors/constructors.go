package errors

import "fmt"

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ArchiverError {
	return Wrap(ErrConfigNotFound, CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *ArchiverError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Pipeline errors

// BuildFailed reports a non-zero exit of the build tool.
func BuildFailed(output string, cause error) *ArchiverError {
	return Wrap(chain(ErrBuild, cause), CategoryBuild, SeverityFatal, "build failed").
		WithOutput(output)
}

// EmptyArchive reports an archive with no content, or an export that produced no ipa.
func EmptyArchive(path string) *ArchiverError {
	return Wrap(ErrEmptyArchive, CategoryArchive, SeverityFatal, "archive contains no products").
		WithContext("path", path)
}

// PackageFailed reports a non-zero exit of the export/package tool.
func PackageFailed(output string, cause error) *ArchiverError {
	return Wrap(chain(ErrPackage, cause), CategoryPackage, SeverityFatal, "packaging failed").
		WithOutput(output)
}

// MalformedExportOptions reports an unparsable user export document.
func MalformedExportOptions(path string, cause error) *ArchiverError {
	return Wrap(chain(ErrMalformedExportOptions, cause), CategoryExportOptions, SeverityFatal, "export options could not be parsed").
		WithContext("path", path)
}

// MissingApplication reports a macOS archive without an .app bundle.
func MissingApplication(archivePath string) *ArchiverError {
	return Wrap(ErrMissingApplication, CategoryApplication, SeverityFatal, "couldn't find application in archive").
		WithContext("path", archivePath)
}

func FileSystemError(operation, path string, cause error) *ArchiverError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

// ToolchainUndetected reports that the installed Xcode could not be identified.
func ToolchainUndetected(output string, cause error) *ArchiverError {
	return Wrap(cause, CategoryToolchain, SeverityWarning, "could not detect Xcode version").
		WithOutput(output)
}

// Internal errors

func InternalError(message string, cause error) *ArchiverError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}

func chain(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
