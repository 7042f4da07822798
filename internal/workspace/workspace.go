package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
)

// Manager owns one scratch directory per run.
type Manager struct {
	mu      sync.Mutex
	baseDir string
	root    string
	keep    bool
}

// NewManager creates a manager rooted under baseDir (the system temp dir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Keep makes Cleanup leave the scratch directory in place.
func (m *Manager) Keep(keep bool) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keep = keep
	return m
}

// Create makes the scratch directory. Calling it again is a no-op.
func (m *Manager) Create() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked()
}

func (m *Manager) createLocked() error {
	if m.root != "" {
		return nil
	}
	root := filepath.Join(m.baseDir, "xcarchiver-"+uuid.NewString())
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.root = root
	slog.Debug("Created workspace", logfields.Path(root))
	return nil
}

// GetPath returns the scratch directory, or "" before Create.
func (m *Manager) GetPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// TempPath returns a fresh, not yet existing path inside the scratch
// directory ending in suffix. The workspace is created on first use.
func (m *Manager) TempPath(suffix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createLocked(); err != nil {
		return "", err
	}
	return filepath.Join(m.root, uuid.NewString()+suffix), nil
}

// Cleanup removes the scratch directory unless Keep(true) was set.
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == "" {
		return nil
	}
	if m.keep {
		slog.Info("Keeping temporary files", logfields.Path(m.root))
		return nil
	}
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.root))
	m.root = ""
	return nil
}
