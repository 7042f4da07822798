package packaging

import (
	"path/filepath"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/fsutil"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
)

// LegacyGenerator packages the archived .app with PackageApplication.
type LegacyGenerator struct {
	cfg     *config.Config
	archive ArchiveLocator
}

func NewLegacy(cfg *config.Config, archive ArchiveLocator) *LegacyGenerator {
	return &LegacyGenerator{cfg: cfg, archive: archive}
}

func (g *LegacyGenerator) Strategy() toolchain.Strategy { return toolchain.StrategyLegacy }

func (g *LegacyGenerator) Generate() (command.Command, error) {
	app := g.AppPath()
	if app == "" {
		return nil, derrors.MissingApplication(g.archive.ArchivePath())
	}
	ipa, _ := g.IPAPath()

	packager := g.cfg.Tooling.PackageApplication
	if packager == "" {
		packager = "PackageApplication"
	}
	cmd := command.Command{
		xcrun(g.cfg) + " " + packager + " -v",
		command.Escape(app),
		command.Flag("-o", ipa),
		"exportFormat ipa",
	}
	if g.cfg.ProvisioningProfilePath != "" {
		cmd = append(cmd, command.Flag("--embed", g.cfg.ProvisioningProfilePath))
	}
	if g.cfg.CodesigningIdentity != "" {
		cmd = append(cmd, command.Flag("--sign", g.cfg.CodesigningIdentity))
	}
	return append(cmd, ""), nil
}

// AppPath finds the application bundle: first under Products/Applications,
// otherwise the last one anywhere in the archive.
func (g *LegacyGenerator) AppPath() string {
	archive := g.archive.ArchivePath()
	if app := fsutil.FirstMatch(filepath.Join(archive, "Products", "Applications"), "*.app"); app != "" {
		return app
	}
	return fsutil.LastMatchRecursive(archive, "*.app")
}

// IPAPath is a pure formula inside the build directory and never fails.
func (g *LegacyGenerator) IPAPath() (string, error) {
	return filepath.Join(g.archive.BuildPath(), g.cfg.OutputName+".ipa"), nil
}

func (g *LegacyGenerator) DSYMPath() string { return dsymIn(g.archive.ArchivePath()) }

func (g *LegacyGenerator) ManifestPath() string              { return "" }
func (g *LegacyGenerator) AppThinningPath() string           { return "" }
func (g *LegacyGenerator) AppThinningSizeReportPath() string { return "" }
func (g *LegacyGenerator) AppsPath() string                  { return "" }
