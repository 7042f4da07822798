package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "xcarchiver "+Version) {
		t.Errorf("String() = %q, want prefix %q", got, "xcarchiver "+Version)
	}
	if !strings.Contains(got, GitCommit) || !strings.Contains(got, BuildTime) {
		t.Errorf("String() = %q is missing build metadata", got)
	}
}

func TestBuildInfo(t *testing.T) {
	// Build info variables should exist (even if set to "unknown")
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Error("build metadata should be initialized")
	}
}
