package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if ae, ok := As(err); ok {
		return a.exitCodeFromArchiver(ae)
	}

	return 1
}

// exitCodeFromArchiver maps ArchiverError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromArchiver(err *ArchiverError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig, CategoryExportOptions:
		return 7 // Configuration error
	case CategoryToolchain:
		return 8 // External system error
	case CategoryBuild:
		return 11
	case CategoryPackage:
		return 12
	case CategoryArchive, CategoryApplication, CategoryFileSystem:
		return 13 // Artifact error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if ae, ok := As(err); ok {
		return a.formatArchiver(ae)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatArchiver formats an ArchiverError for display. Captured tool output
// is always shown so a failure can be diagnosed without re-running.
func (a *CLIErrorAdapter) formatArchiver(err *ArchiverError) string {
	var b strings.Builder
	if a.verbose {
		b.WriteString(err.Error())
	} else {
		switch err.Category {
		case CategoryConfig, CategoryValidation:
			b.WriteString(err.Message)
		default:
			fmt.Fprintf(&b, "%s: %s", err.Category, err.Message)
		}
		if p, ok := err.Context["path"]; ok {
			fmt.Fprintf(&b, " (%v)", p)
		}
	}
	if out := strings.TrimSpace(err.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(a.stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if ae, ok := As(err); ok {
		return ae.Category == CategoryInternal || ae.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if ae, ok := As(err); ok {
		level := a.slogLevelFromSeverity(ae.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(ae.Category)),
		}
		for k, v := range ae.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		a.logger.LogAttrs(context.Background(), level, ae.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
