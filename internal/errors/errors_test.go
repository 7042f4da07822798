package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestArchiverError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ArchiverError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestArchiverError_WithContext(t *testing.T) {
	err := New(CategoryArchive, SeverityFatal, "empty").
		WithContext("path", "/tmp/App.xcarchive").
		WithContext("entries", 0)

	if err.Context["path"] != "/tmp/App.xcarchive" {
		t.Errorf("Context[path] = %v", err.Context["path"])
	}
	if err.Context["entries"] != 0 {
		t.Errorf("Context[entries] = %v", err.Context["entries"])
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	cause := stdErrors.New("exit status 65")
	tests := []struct {
		name     string
		err      error
		sentinel error
		category ErrorCategory
	}{
		{"build", BuildFailed("** ARCHIVE FAILED **", cause), ErrBuild, CategoryBuild},
		{"package", PackageFailed("error: exportArchive", cause), ErrPackage, CategoryPackage},
		{"empty archive", EmptyArchive("/a"), ErrEmptyArchive, CategoryArchive},
		{"export options", MalformedExportOptions("/x.plist", cause), ErrMalformedExportOptions, CategoryExportOptions},
		{"missing app", MissingApplication("/a"), ErrMissingApplication, CategoryApplication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("stage: %w", tt.err)
			if !stdErrors.Is(wrapped, tt.sentinel) {
				t.Fatalf("expected errors.Is(%v, %v)", wrapped, tt.sentinel)
			}
			if GetCategory(wrapped) != tt.category {
				t.Fatalf("GetCategory = %s, want %s", GetCategory(wrapped), tt.category)
			}
		})
	}
}

func TestCapturedOutput(t *testing.T) {
	err := fmt.Errorf("outer: %w", BuildFailed("line1\nline2", nil))
	if got := CapturedOutput(err); got != "line1\nline2" {
		t.Fatalf("CapturedOutput = %q", got)
	}
	if CapturedOutput(stdErrors.New("plain")) != "" {
		t.Fatal("expected no output for plain error")
	}
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stdErrors.New("x"), 1},
		{ValidationFailed("scheme", "required"), 2},
		{ConfigNotFound("x.yaml"), 7},
		{BuildFailed("", nil), 11},
		{PackageFailed("", nil), 12},
		{EmptyArchive("/a"), 13},
		{InternalError("boom", nil), 10},
	}
	for _, tt := range tests {
		if got := a.ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCLIErrorAdapter_FormatIncludesOutput(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	msg := a.FormatError(PackageFailed("error: no signing identity\n", nil))
	if !strings.HasPrefix(msg, "package: packaging failed") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "no signing identity") {
		t.Fatalf("expected captured output in %q", msg)
	}

	msg = a.FormatError(EmptyArchive("/tmp/A.xcarchive"))
	if !strings.Contains(msg, "/tmp/A.xcarchive") {
		t.Fatalf("expected path in %q", msg)
	}
}
