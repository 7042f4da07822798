package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/fsutil"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
	"git.home.luguber.info/inful/xcarchiver/internal/version"
)

// GeneratedByAttribute marks archives produced by this tool.
const GeneratedByAttribute = "info.xcarchiver.generated_by"

// stageCleanup removes an ipa left at the legacy staging path by an earlier run.
func stageCleanup(_ context.Context, rs *RunState) error {
	ipa, err := rs.Package.IPAPath()
	if err != nil {
		return err
	}
	if err := os.Remove(ipa); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return derrors.FileSystemError("remove stale ipa", ipa, err)
	}
	return nil
}

// buildLogLocator is implemented by build generators that tee their output
// into a log file.
type buildLogLocator interface {
	BuildLogPath() string
}

func stageBuild(ctx context.Context, rs *RunState) error {
	r := rs.runner
	cmd, err := rs.Build.Generate()
	if err != nil {
		return err
	}
	if rs.Config.Verbose {
		command.PrintTable(r.out, cmd, "Generated Build Command")
	}
	_, err = r.exec.Execute(ctx, cmd, command.ExecOptions{
		PrintAll:     true,
		PrintCommand: !rs.Config.Silent,
		OnError: func(output string, err error) error {
			buildErr := derrors.BuildFailed(output, err)
			if l, ok := rs.Build.(buildLogLocator); ok {
				slog.Error("Build failed, the full output is in the build log", logfields.Path(l.BuildLogPath()))
				buildErr = buildErr.WithContext("log", l.BuildLogPath())
			}
			return buildErr
		},
	})
	if err != nil {
		return err
	}

	if !rs.Config.ArchiveEnabled() {
		slog.Info("Successfully built the app")
		return nil
	}
	archive := rs.Build.ArchivePath()
	slog.Info("Successfully stored the archive", logfields.Path(archive))
	if err := tagArchive(ctx, rs, archive); err != nil {
		return newWarnStageError(StageBuilding, fmt.Errorf("tag archive %s: %w", archive, err))
	}
	return nil
}

// tagArchive records the generating tool on the archive as an extended attribute.
func tagArchive(ctx context.Context, rs *RunState, archive string) error {
	tag := command.Command{
		"xattr -w",
		GeneratedByAttribute,
		command.Escape("xcarchiver " + version.Version),
		command.Escape(archive),
	}
	_, err := rs.runner.exec.Execute(ctx, tag, command.ExecOptions{})
	return err
}

// stageVerify fails when the build reported success but left an empty archive.
func stageVerify(_ context.Context, rs *RunState) error {
	archive := rs.Build.ArchivePath()
	if fsutil.IsEmptyDir(archive) {
		return derrors.EmptyArchive(archive)
	}
	return nil
}

// exportLocator is implemented by generators that export into scratch space.
type exportLocator interface {
	TemporaryOutputPath() string
	ConfigPath() string
}

func stagePackage(ctx context.Context, rs *RunState) error {
	r := rs.runner
	out := rs.Config.OutputDirectory
	if err := os.MkdirAll(out, 0o750); err != nil {
		return derrors.FileSystemError("create output directory", out, err)
	}
	cmd, err := rs.Package.Generate()
	if err != nil {
		return err
	}
	if ex, ok := rs.Package.(exportLocator); ok {
		slog.Debug("Exporting archive",
			slog.String("export_path", ex.TemporaryOutputPath()),
			slog.String("options_plist", ex.ConfigPath()))
	}
	if rs.Config.Verbose {
		command.PrintTable(r.out, cmd, "Generated Package Command")
	}
	_, err = r.exec.Execute(ctx, cmd, command.ExecOptions{
		PrintCommand: !rs.Config.Silent,
		OnError: func(output string, err error) error {
			return derrors.PackageFailed(output, err)
		},
	})
	return err
}

func stageRelocate(_ context.Context, rs *RunState) error {
	if err := compressDSYMs(rs); err != nil {
		return err
	}
	if rs.Config.Platform == config.PlatformMac {
		return relocateMacApp(rs)
	}
	return relocatePackage(rs)
}

func compressDSYMs(rs *RunState) error {
	dsym := rs.Package.DSYMPath()
	if dsym == "" {
		return nil
	}
	out := filepath.Join(rs.Config.OutputDirectory, rs.Config.OutputName+".app.dSYM.zip")
	created, err := fsutil.ZipDSYMs(dsym, out)
	if err != nil {
		return derrors.FileSystemError("compress dSYM", dsym, err)
	}
	if created {
		rs.Artifacts.DSYMZip = out
		slog.Info("Successfully exported and compressed dSYM file", logfields.Path(out))
	}
	return nil
}

func relocatePackage(rs *RunState) error {
	out := rs.Config.OutputDirectory
	ipa, err := rs.Package.IPAPath()
	if err != nil {
		return err
	}
	dst, err := fsutil.MoveReplace(ipa, out)
	if err != nil {
		return derrors.FileSystemError("move ipa", ipa, err)
	}
	rs.Artifacts.Package = dst
	slog.Info("Successfully exported and signed the ipa file", logfields.Path(dst))

	if rs.Strategy != toolchain.StrategyModern {
		return nil
	}
	optional := []struct {
		src  string
		dest *string
	}{
		{rs.Package.ManifestPath(), &rs.Artifacts.Manifest},
		{rs.Package.AppThinningPath(), &rs.Artifacts.AppThinning},
		{rs.Package.AppThinningSizeReportPath(), &rs.Artifacts.AppThinningSizeReport},
		{rs.Package.AppsPath(), &rs.Artifacts.Apps},
	}
	for _, o := range optional {
		if o.src == "" || !fsutil.Exists(o.src) {
			continue
		}
		moved, err := fsutil.MoveReplace(o.src, out)
		if err != nil {
			return derrors.FileSystemError("move artifact", o.src, err)
		}
		*o.dest = moved
		slog.Debug("Relocated artifact", logfields.Path(moved))
	}
	return nil
}

func relocateMacApp(rs *RunState) error {
	archive := rs.Build.ArchivePath()
	apps, _ := filepath.Glob(filepath.Join(archive, "Products", "Applications", "*.app"))
	if len(apps) == 0 {
		return derrors.MissingApplication(archive)
	}
	app := apps[len(apps)-1]
	dst, err := fsutil.CopyDirReplace(app, rs.Config.OutputDirectory)
	if err != nil {
		return derrors.FileSystemError("copy application", app, err)
	}
	rs.Artifacts.Package = dst
	slog.Info("Successfully exported the .app file", logfields.Path(dst))
	return nil
}
