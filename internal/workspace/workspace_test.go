package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_CreateAndCleanup(t *testing.T) {
	mgr := NewManager(t.TempDir())

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	wsPath := mgr.GetPath()
	if !strings.HasPrefix(filepath.Base(wsPath), "xcarchiver-") {
		t.Errorf("unexpected workspace name: %s", wsPath)
	}
	if err := mgr.Create(); err != nil || mgr.GetPath() != wsPath {
		t.Fatalf("second Create() must be a no-op, got %q, %v", mgr.GetPath(), err)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("workspace still exists after cleanup: %s", wsPath)
	}
	if mgr.GetPath() != "" {
		t.Errorf("GetPath() should be empty after cleanup")
	}
}

func TestManager_TempPathIsUniqueAndLazy(t *testing.T) {
	mgr := NewManager(t.TempDir())

	a, err := mgr.TempPath(".out")
	if err != nil {
		t.Fatalf("TempPath() failed: %v", err)
	}
	b, err := mgr.TempPath(".out")
	if err != nil {
		t.Fatalf("TempPath() failed: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct paths, got %s twice", a)
	}
	if !strings.HasSuffix(a, ".out") || filepath.Dir(a) != mgr.GetPath() {
		t.Errorf("unexpected temp path %s", a)
	}
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Errorf("TempPath must not create the path")
	}
}

func TestManager_Keep(t *testing.T) {
	mgr := NewManager(t.TempDir()).Keep(true)
	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	wsPath := mgr.GetPath()
	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(wsPath); err != nil {
		t.Errorf("kept workspace was removed: %v", err)
	}
}
