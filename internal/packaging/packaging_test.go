package packaging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/exportoptions"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
	"git.home.luguber.info/inful/xcarchiver/internal/workspace"
)

type fixedArchive struct {
	archive string
	build   string
}

func (f fixedArchive) ArchivePath() string { return f.archive }
func (f fixedArchive) BuildPath() string   { return f.build }

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o600))
}

func newArchive(t *testing.T) fixedArchive {
	t.Helper()
	build := t.TempDir()
	archive := filepath.Join(build, "Example 2024-01-01 10.00.00.xcarchive")
	touch(t, filepath.Join(archive, "Products", "Applications", "Example.app", "Example"))
	touch(t, filepath.Join(archive, "dSYMs", "Example.app.dSYM", "Contents", "Info.plist"))
	return fixedArchive{archive: archive, build: build}
}

func exampleConfig() *config.Config {
	return &config.Config{
		Project:    "Example.xcodeproj",
		Scheme:     "Example",
		Platform:   config.PlatformIOS,
		OutputName: "Example",
	}
}

func TestNew_SelectsStrategy(t *testing.T) {
	ws := workspace.NewManager(t.TempDir())
	arch := newArchive(t)

	g, err := New(toolchain.StrategyLegacy, exampleConfig(), arch, ws)
	require.NoError(t, err)
	assert.IsType(t, &LegacyGenerator{}, g)

	g, err = New(toolchain.StrategyModern, exampleConfig(), arch, ws)
	require.NoError(t, err)
	assert.IsType(t, &ModernGenerator{}, g)

	_, err = New("other", exampleConfig(), arch, ws)
	require.Error(t, err)
}

func TestModern_GenerateDefaultCommand(t *testing.T) {
	cfg := exampleConfig()
	arch := newArchive(t)
	g, err := NewModern(cfg, arch, workspace.NewManager(t.TempDir()))
	require.NoError(t, err)

	cmd, err := g.Generate()
	require.NoError(t, err)
	require.Len(t, cmd, 5)
	assert.Equal(t, "/usr/bin/xcrun xcodebuild -exportArchive", cmd[0])
	assert.Equal(t, "-exportOptionsPlist '"+g.ConfigPath()+"'", cmd[1])
	assert.Equal(t, "-archivePath '"+arch.archive+"'", cmd[2])
	assert.Equal(t, "-exportPath '"+g.TemporaryOutputPath()+"'", cmd[3])
	assert.Equal(t, "", cmd[4])

	doc, err := exportoptions.ReadFile(g.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, exportoptions.Document{
		"method":        "app-store",
		"uploadSymbols": true,
		"uploadBitcode": false,
	}, doc)
	assert.Equal(t, "app-store", cfg.ExportMethod)
}

func TestModern_PathsAreStable(t *testing.T) {
	ws := workspace.NewManager(t.TempDir())
	g, err := NewModern(exampleConfig(), newArchive(t), ws)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(g.TemporaryOutputPath(), ".export_output"))
	assert.True(t, strings.HasSuffix(g.ConfigPath(), "_config.plist"))
	assert.Equal(t, ws.GetPath(), filepath.Dir(g.ConfigPath()))

	first, err := g.Generate()
	require.NoError(t, err)
	second, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "manifest.plist"), g.ManifestPath())
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "app-thinning.plist"), g.AppThinningPath())
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "App Thinning Size Report.txt"), g.AppThinningSizeReportPath())
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "Apps"), g.AppsPath())

	other, err := NewModern(exampleConfig(), newArchive(t), ws)
	require.NoError(t, err)
	assert.NotEqual(t, g.TemporaryOutputPath(), other.TemporaryOutputPath())
}

func TestModern_IPAPathRenamesTopLevelPackage(t *testing.T) {
	g, err := NewModern(exampleConfig(), newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	touch(t, filepath.Join(g.TemporaryOutputPath(), "Example Scheme.ipa"))

	ipa, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "Example.ipa"), ipa)
	assert.FileExists(t, ipa)
	assert.NoFileExists(t, filepath.Join(g.TemporaryOutputPath(), "Example Scheme.ipa"))

	// cached
	again, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, ipa, again)
}

func TestModern_IPAPathSameNameIsLeftInPlace(t *testing.T) {
	g, err := NewModern(exampleConfig(), newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	touch(t, filepath.Join(g.TemporaryOutputPath(), "Example.ipa"))

	ipa, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "Example.ipa"), ipa)
	assert.FileExists(t, ipa)
}

func TestModern_IPAPathRenamesCaseOnlyMismatch(t *testing.T) {
	g, err := NewModern(exampleConfig(), newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	touch(t, filepath.Join(g.TemporaryOutputPath(), "example.ipa"))

	ipa, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "Example.ipa"), ipa)
	assert.FileExists(t, ipa)

	entries, err := os.ReadDir(g.TemporaryOutputPath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Example.ipa", entries[0].Name())
}

func TestModern_ProvisioningProfileIsAdvisory(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := exampleConfig()
	cfg.ProvisioningProfilePath = "/profiles/Example.mobileprovision"
	g, err := NewModern(cfg, newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)

	cmd, err := g.Generate()
	require.NoError(t, err)
	require.Len(t, cmd, 5)
	assert.NotContains(t, cmd.String(), "mobileprovision")

	logged := buf.String()
	assert.Contains(t, logged, "level=WARN")
	assert.Contains(t, logged, "provisioning_profile_path is ignored")
	assert.Contains(t, logged, "/profiles/Example.mobileprovision")
}

func TestModern_IPAPathPicksGenericThinnedVariant(t *testing.T) {
	g, err := NewModern(exampleConfig(), newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	touch(t, filepath.Join(g.AppsPath(), "App-iPhone.ipa"))
	touch(t, filepath.Join(g.AppsPath(), "App.ipa"))
	touch(t, filepath.Join(g.AppsPath(), "App-iPad7,3.ipa"))

	ipa, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.TemporaryOutputPath(), "Example.ipa"), ipa)
	data, err := os.ReadFile(ipa)
	require.NoError(t, err)
	assert.Equal(t, "App.ipa", string(data))
	assert.FileExists(t, filepath.Join(g.AppsPath(), "App.ipa"), "variants stay in the Apps folder")
}

func TestModern_IPAPathEmptyExport(t *testing.T) {
	g, err := NewModern(exampleConfig(), newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)

	_, err = g.IPAPath()
	require.Error(t, err)
	assert.ErrorIs(t, err, derrors.ErrEmptyArchive)

	require.NoError(t, os.MkdirAll(g.AppsPath(), 0o750))
	_, err = g.IPAPath()
	assert.ErrorIs(t, err, derrors.ErrEmptyArchive, "the failed resolution is cached")
}

func TestModern_MalformedExportOptions(t *testing.T) {
	cfg := exampleConfig()
	broken := filepath.Join(t.TempDir(), "Broken.plist")
	require.NoError(t, os.WriteFile(broken, []byte("<plist><dict><key>method"), 0o600))
	cfg.ExportOptions = config.ExportOptions{Path: broken}

	g, err := NewModern(cfg, newArchive(t), workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	_, err = g.Generate()
	assert.ErrorIs(t, err, derrors.ErrMalformedExportOptions)
}

func TestModern_DSYMPath(t *testing.T) {
	arch := newArchive(t)
	g, err := NewModern(exampleConfig(), arch, workspace.NewManager(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(arch.archive, "dSYMs", "Example.app.dSYM"), g.DSYMPath())
}

func TestLegacy_Generate(t *testing.T) {
	cfg := exampleConfig()
	cfg.ProvisioningProfilePath = "/tmp/Example.mobileprovision"
	cfg.CodesigningIdentity = "iPhone Distribution: Example"
	arch := newArchive(t)
	g := NewLegacy(cfg, arch)

	cmd, err := g.Generate()
	require.NoError(t, err)
	ipa := filepath.Join(arch.build, "Example.ipa")
	assert.Equal(t, []string{
		"/usr/bin/xcrun PackageApplication -v",
		"'" + filepath.Join(arch.archive, "Products", "Applications", "Example.app") + "'",
		"-o '" + ipa + "'",
		"exportFormat ipa",
		"--embed '/tmp/Example.mobileprovision'",
		"--sign 'iPhone Distribution: Example'",
		"",
	}, []string(cmd))

	path, err := g.IPAPath()
	require.NoError(t, err)
	assert.Equal(t, ipa, path)
	assert.Empty(t, g.ManifestPath())
	assert.Empty(t, g.AppThinningPath())
	assert.Empty(t, g.AppThinningSizeReportPath())
	assert.Empty(t, g.AppsPath())
	assert.Equal(t, filepath.Join(arch.archive, "dSYMs", "Example.app.dSYM"), g.DSYMPath())
}

func TestLegacy_AppDiscoveryFallsBackToLastBundle(t *testing.T) {
	build := t.TempDir()
	archive := filepath.Join(build, "Example.xcarchive")
	touch(t, filepath.Join(archive, "Other", "A.app", "A"))
	touch(t, filepath.Join(archive, "Other", "B.app", "B"))
	g := NewLegacy(exampleConfig(), fixedArchive{archive: archive, build: build})

	assert.Equal(t, filepath.Join(archive, "Other", "B.app"), g.AppPath())
}

func TestLegacy_MissingApplication(t *testing.T) {
	build := t.TempDir()
	archive := filepath.Join(build, "Example.xcarchive")
	touch(t, filepath.Join(archive, "Info.plist"))
	g := NewLegacy(exampleConfig(), fixedArchive{archive: archive, build: build})

	_, err := g.Generate()
	assert.ErrorIs(t, err, derrors.ErrMissingApplication)
}
