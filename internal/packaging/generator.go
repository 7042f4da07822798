// Package packaging generates the command that turns an .xcarchive into a
// distributable package, and locates the artifacts that command produces.
//
// Two strategies exist. The legacy one drives PackageApplication directly on
// the archived .app; the modern one runs `xcodebuild -exportArchive` with a
// synthesized export options plist. A run picks one strategy and uses a fresh
// instance of it, so every cached path belongs to exactly one run.
package packaging

import (
	"fmt"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	"git.home.luguber.info/inful/xcarchiver/internal/fsutil"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
	"git.home.luguber.info/inful/xcarchiver/internal/workspace"
)

// ArchiveLocator exposes where the build step put the archive.
type ArchiveLocator interface {
	ArchivePath() string
	BuildPath() string
}

// Generator is the capability set shared by both strategies. Paths a strategy
// does not produce are returned as "".
type Generator interface {
	Strategy() toolchain.Strategy
	Generate() (command.Command, error)
	IPAPath() (string, error)
	DSYMPath() string
	ManifestPath() string
	AppThinningPath() string
	AppThinningSizeReportPath() string
	AppsPath() string
}

// New returns a generator for strategy.
func New(strategy toolchain.Strategy, cfg *config.Config, archive ArchiveLocator, ws *workspace.Manager) (Generator, error) {
	switch strategy {
	case toolchain.StrategyLegacy:
		return NewLegacy(cfg, archive), nil
	case toolchain.StrategyModern:
		return NewModern(cfg, archive, ws)
	default:
		return nil, fmt.Errorf("unknown packaging strategy %q", strategy)
	}
}

// dsymIn returns the last *.app.dSYM inside the archive, or "".
func dsymIn(archivePath string) string {
	return fsutil.LastMatchRecursive(archivePath, "*.app.dSYM")
}

func xcrun(cfg *config.Config) string {
	if cfg.Tooling.Xcrun != "" {
		return cfg.Tooling.Xcrun
	}
	return "/usr/bin/xcrun"
}
