package buildcmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func TestGenerator_Paths(t *testing.T) {
	build := t.TempDir()
	cfg := &config.Config{Project: "App.xcodeproj", Scheme: "App", OutputName: "App", BuildPath: build}
	g := New(cfg).WithClock(func() time.Time { return fixedTime })

	assert.Equal(t, build, g.BuildPath())
	assert.Equal(t, filepath.Join(build, "App 2024-03-09 14.05.07.xcarchive"), g.ArchivePath())

	// cached: a later clock does not move the archive
	g.now = func() time.Time { return fixedTime.Add(time.Hour) }
	assert.Equal(t, filepath.Join(build, "App 2024-03-09 14.05.07.xcarchive"), g.ArchivePath())
}

func TestGenerator_DefaultBuildPathIsDated(t *testing.T) {
	cfg := &config.Config{Project: "App.xcodeproj", Scheme: "App", OutputName: "App"}
	g := New(cfg).WithClock(func() time.Time { return fixedTime })
	assert.Equal(t, "2024-03-09", filepath.Base(g.BuildPath()))
	assert.Contains(t, g.BuildPath(), filepath.Join("Library", "Developer", "Xcode", "Archives"))
}

func TestGenerator_ConfiguredArchivePath(t *testing.T) {
	cfg := &config.Config{Project: "App.xcodeproj", Scheme: "App", OutputName: "App", ArchivePath: "/tmp/Fixed.xcarchive", BuildPath: "/tmp/b"}
	assert.Equal(t, "/tmp/Fixed.xcarchive", New(cfg).ArchivePath())
}

func TestGenerator_Generate(t *testing.T) {
	logs := t.TempDir()
	cfg := &config.Config{
		Workspace:     "App.xcworkspace",
		Scheme:        "App",
		Configuration: "Release",
		SDK:           "iphoneos",
		Destination:   "generic/platform=iOS",
		XCArgs:        "CODE_SIGN_STYLE=Manual",
		OutputName:    "App",
		BuildPath:     "/tmp/b",
		BuildLogPath:  logs,
	}
	g := New(cfg).WithClock(func() time.Time { return fixedTime })

	cmd, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t,
		"set -o pipefail && xcodebuild -workspace 'App.xcworkspace' -scheme 'App' -configuration 'Release' "+
			"-sdk 'iphoneos' -destination 'generic/platform=iOS' -archivePath '/tmp/b/App 2024-03-09 14.05.07.xcarchive' "+
			"CODE_SIGN_STYLE=Manual archive | tee "+filepath.Join(logs, "App-App.log"),
		cmd.String())
}

func TestGenerator_GenerateWithoutArchive(t *testing.T) {
	cfg := &config.Config{
		Project:      "App.xcodeproj",
		Scheme:       "App",
		OutputName:   "App",
		BuildLogPath: t.TempDir(),
		Archive:      config.Bool(false),
	}
	cmd, err := New(cfg).Generate()
	require.NoError(t, err)
	assert.Contains(t, cmd.String(), "-project 'App.xcodeproj'")
	assert.Contains(t, cmd.String(), " build | tee ")
	assert.NotContains(t, cmd.String(), "-archivePath")
}

func TestGenerator_GenerateOmitsEmptyXCArgs(t *testing.T) {
	cfg := &config.Config{
		Project:      "App.xcodeproj",
		Scheme:       "App",
		OutputName:   "App",
		BuildPath:    "/tmp/b",
		BuildLogPath: t.TempDir(),
	}
	cmd, err := New(cfg).WithClock(func() time.Time { return fixedTime }).Generate()
	require.NoError(t, err)
	for i, tok := range cmd {
		assert.NotEmpty(t, tok, "token %d of %q", i, cmd.String())
	}
	assert.Equal(t, "archive", cmd[len(cmd)-2])
}
