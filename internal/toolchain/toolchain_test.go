package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
)

type stubExecutor struct {
	out   string
	err   error
	calls []string
}

func (s *stubExecutor) Execute(_ context.Context, cmd command.Command, _ command.ExecOptions) (string, error) {
	s.calls = append(s.calls, cmd.String())
	return s.out, s.err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		version string
		build   string
		legacy  bool
	}{
		{"xcode 6", "Xcode 6.4\nBuild version 6E35b\n", "6.4", "6E35b", true},
		{"xcode 7", "Xcode 7.3.1\nBuild version 7D1014\n", "7.3.1", "7D1014", false},
		{"xcode 15", "Xcode 15.0\nBuild version 15A240d\n", "15.0", "15A240d", false},
		{"no build line", "Xcode 8\n", "8", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.version, v.Semver.Original())
			assert.Equal(t, tt.build, v.Build)
			assert.Equal(t, tt.legacy, PrefersLegacyExport(v))
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("xcode-select: error: tool 'xcodebuild' requires Xcode")
	require.Error(t, err)
}

func TestVersionString(t *testing.T) {
	v, err := Parse("Xcode 7.3.1\nBuild version 7D1014")
	require.NoError(t, err)
	assert.Equal(t, "7.3.1 (7D1014)", v.String())
	assert.Equal(t, "unknown", Version{}.String())
}

func TestSelect_ExplicitWins(t *testing.T) {
	exec := &stubExecutor{out: "Xcode 6.4\n"}
	yes, no := true, false

	s, _ := Select(context.Background(), &yes, exec, "")
	assert.Equal(t, StrategyLegacy, s)
	s, _ = Select(context.Background(), &no, exec, "")
	assert.Equal(t, StrategyModern, s)
	assert.Empty(t, exec.calls, "explicit choice must not probe the toolchain")
}

func TestSelect_Detected(t *testing.T) {
	exec := &stubExecutor{out: "Xcode 6.4\nBuild version 6E35b\n"}
	s, v := Select(context.Background(), nil, exec, "/usr/bin/xcodebuild")
	assert.Equal(t, StrategyLegacy, s)
	assert.Equal(t, "6.4", v.Semver.Original())
	assert.Equal(t, []string{"/usr/bin/xcodebuild -version"}, exec.calls)

	exec = &stubExecutor{out: "Xcode 14.3\n"}
	s, _ = Select(context.Background(), nil, exec, "")
	assert.Equal(t, StrategyModern, s)
}

func TestSelect_DetectionFailureFallsBackToModern(t *testing.T) {
	exec := &stubExecutor{err: errors.New("not found")}
	s, v := Select(context.Background(), nil, exec, "")
	assert.Equal(t, StrategyModern, s)
	assert.Nil(t, v.Semver)
}

func TestDetect_FailuresAreToolchainErrors(t *testing.T) {
	_, err := Detect(context.Background(), &stubExecutor{out: "xcrun: error", err: errors.New("exit status 1")}, "")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryToolchain))
	assert.Equal(t, "xcrun: error", derrors.CapturedOutput(err))

	_, err = Detect(context.Background(), &stubExecutor{out: "xcode-select: error: no developer tools"}, "")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryToolchain))
}
