// Package buildcmd generates the xcodebuild invocation that produces the
// archive, and owns the archive and build locations for a run.
package buildcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
)

// Generator builds the archive command for one run. ArchivePath and BuildPath
// are computed on first use and stable for the life of the instance.
type Generator struct {
	cfg *config.Config
	now func() time.Time

	once        sync.Once
	buildPath   string
	archivePath string
	logPath     string
}

// New creates a generator reading cfg.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, now: time.Now}
}

// WithClock overrides the time source used for dated paths.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) resolve() {
	g.once.Do(func() {
		ts := g.now()
		g.buildPath = g.cfg.BuildPath
		if g.buildPath == "" {
			g.buildPath = filepath.Join(homeDir(), "Library", "Developer", "Xcode", "Archives", ts.Format("2006-01-02"))
		}
		g.archivePath = g.cfg.ArchivePath
		if g.archivePath == "" {
			name := fmt.Sprintf("%s %s.xcarchive", g.cfg.OutputName, ts.Format("2006-01-02 15.04.05"))
			g.archivePath = filepath.Join(g.buildPath, name)
		}
		dir := g.cfg.BuildLogPath
		if dir == "" {
			dir = filepath.Join(homeDir(), "Library", "Logs", "xcarchiver")
		}
		g.logPath = filepath.Join(dir, fmt.Sprintf("%s-%s.log", g.cfg.OutputName, g.cfg.Scheme))
	})
}

// BuildPath is the directory holding archives for this run.
func (g *Generator) BuildPath() string {
	g.resolve()
	return g.buildPath
}

// ArchivePath is the .xcarchive produced by the build command.
func (g *Generator) ArchivePath() string {
	g.resolve()
	return g.archivePath
}

// BuildLogPath is the file the build output is tee'd into.
func (g *Generator) BuildLogPath() string {
	g.resolve()
	return g.logPath
}

// Generate returns the archive command. The log directory is created so the
// tee in the pipe suffix cannot fail.
func (g *Generator) Generate() (command.Command, error) {
	g.resolve()
	if err := os.MkdirAll(filepath.Dir(g.logPath), 0o750); err != nil {
		return nil, fmt.Errorf("create build log directory: %w", err)
	}

	xcodebuild := g.cfg.Tooling.Xcodebuild
	if xcodebuild == "" {
		xcodebuild = "xcodebuild"
	}
	cmd := command.Command{"set -o pipefail &&", xcodebuild}
	if g.cfg.Workspace != "" {
		cmd = append(cmd, command.Flag("-workspace", g.cfg.Workspace))
	} else {
		cmd = append(cmd, command.Flag("-project", g.cfg.Project))
	}
	cmd = append(cmd, command.Flag("-scheme", g.cfg.Scheme))
	if g.cfg.Configuration != "" {
		cmd = append(cmd, command.Flag("-configuration", g.cfg.Configuration))
	}
	if g.cfg.SDK != "" {
		cmd = append(cmd, command.Flag("-sdk", g.cfg.SDK))
	}
	if g.cfg.Destination != "" {
		cmd = append(cmd, command.Flag("-destination", g.cfg.Destination))
	}
	if g.cfg.ArchiveEnabled() {
		cmd = append(cmd, command.Flag("-archivePath", g.archivePath))
	}
	if g.cfg.XCArgs != "" {
		cmd = append(cmd, g.cfg.XCArgs)
	}
	if g.cfg.ArchiveEnabled() {
		cmd = append(cmd, "archive")
	} else {
		cmd = append(cmd, "build")
	}
	cmd = append(cmd, "| tee "+command.Escape(g.logPath))
	return cmd, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
