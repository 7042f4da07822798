package packaging

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/exportoptions"
	"git.home.luguber.info/inful/xcarchiver/internal/fsutil"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
	"git.home.luguber.info/inful/xcarchiver/internal/workspace"
)

const (
	manifestName       = "manifest.plist"
	appThinningName    = "app-thinning.plist"
	sizeReportName     = "App Thinning Size Report.txt"
	appsFolderName     = "Apps"
	exportOutputSuffix = ".export_output"
	exportConfigSuffix = "_config.plist"
)

// ModernGenerator exports the archive with `xcodebuild -exportArchive`.
type ModernGenerator struct {
	cfg     *config.Config
	archive ArchiveLocator

	outputPath string
	configPath string

	ipaOnce sync.Once
	ipaPath string
	ipaErr  error
}

// NewModern reserves the scratch export directory and options plist path.
// Both stay fixed for the life of the generator.
func NewModern(cfg *config.Config, archive ArchiveLocator, ws *workspace.Manager) (*ModernGenerator, error) {
	outputPath, err := ws.TempPath(exportOutputSuffix)
	if err != nil {
		return nil, err
	}
	configPath, err := ws.TempPath(exportConfigSuffix)
	if err != nil {
		return nil, err
	}
	return &ModernGenerator{cfg: cfg, archive: archive, outputPath: outputPath, configPath: configPath}, nil
}

func (g *ModernGenerator) Strategy() toolchain.Strategy { return toolchain.StrategyModern }

// Generate writes the export options plist and returns the export command.
// The plist is rewritten on every call.
func (g *ModernGenerator) Generate() (command.Command, error) {
	if g.cfg.ProvisioningProfilePath != "" {
		slog.Warn("provisioning_profile_path is ignored by xcodebuild -exportArchive; configure signing in the project or export options",
			logfields.Path(g.cfg.ProvisioningProfilePath))
	}

	doc, err := exportoptions.SynthesizeAndBackfill(g.cfg)
	if err != nil {
		return nil, err
	}
	if err := doc.WriteFile(g.configPath); err != nil {
		return nil, derrors.FileSystemError("write export options", g.configPath, err)
	}

	xcodebuild := g.cfg.Tooling.Xcodebuild
	if xcodebuild == "" {
		xcodebuild = "xcodebuild"
	}
	return command.Command{
		xcrun(g.cfg) + " " + xcodebuild + " -exportArchive",
		command.Flag("-exportOptionsPlist", g.configPath),
		command.Flag("-archivePath", g.archive.ArchivePath()),
		command.Flag("-exportPath", g.outputPath),
		"",
	}, nil
}

// TemporaryOutputPath is the directory xcodebuild exports into.
func (g *ModernGenerator) TemporaryOutputPath() string { return g.outputPath }

// ConfigPath is where the export options plist is written.
func (g *ModernGenerator) ConfigPath() string { return g.configPath }

// IPAPath resolves the exported package on first call and caches the result.
// A single top-level ipa is renamed to <output_name>.ipa; failing that the
// generic variant from the Apps folder (the shortest file name) is copied
// there. With neither present the export is treated as empty.
func (g *ModernGenerator) IPAPath() (string, error) {
	g.ipaOnce.Do(func() {
		g.ipaPath, g.ipaErr = g.resolveIPA()
	})
	return g.ipaPath, g.ipaErr
}

func (g *ModernGenerator) resolveIPA() (string, error) {
	target := filepath.Join(g.outputPath, g.cfg.OutputName+".ipa")

	matches, _ := filepath.Glob(filepath.Join(g.outputPath, "*.ipa"))
	if len(matches) > 0 {
		src := matches[len(matches)-1]
		if src != target {
			if err := os.Rename(src, target); err != nil {
				return "", derrors.FileSystemError("rename ipa", src, err)
			}
		}
		return target, nil
	}

	variants, _ := filepath.Glob(filepath.Join(g.AppsPath(), "*.ipa"))
	if len(variants) == 0 {
		return "", derrors.EmptyArchive(g.outputPath)
	}
	generic := variants[0]
	for _, v := range variants[1:] {
		if len(filepath.Base(v)) < len(filepath.Base(generic)) {
			generic = v
		}
	}
	if generic != target {
		if err := fsutil.CopyFile(generic, target); err != nil {
			return "", derrors.FileSystemError("copy ipa", generic, err)
		}
	}
	return target, nil
}

func (g *ModernGenerator) DSYMPath() string { return dsymIn(g.archive.ArchivePath()) }

func (g *ModernGenerator) ManifestPath() string {
	return filepath.Join(g.outputPath, manifestName)
}

func (g *ModernGenerator) AppThinningPath() string {
	return filepath.Join(g.outputPath, appThinningName)
}

func (g *ModernGenerator) AppThinningSizeReportPath() string {
	return filepath.Join(g.outputPath, sizeReportName)
}

func (g *ModernGenerator) AppsPath() string {
	return filepath.Join(g.outputPath, appsFolderName)
}
