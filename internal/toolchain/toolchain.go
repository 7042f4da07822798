// Package toolchain detects the installed Xcode and decides which export
// strategy a run should use.
package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
)

// Strategy names the export strategy.
type Strategy string

const (
	StrategyLegacy Strategy = "legacy"
	StrategyModern Strategy = "modern"
)

// modernExportConstraint matches toolchains that ship `xcodebuild -exportArchive`
// with an options plist.
const modernExportConstraint = ">= 7.0.0-0"

var (
	xcodeLine = regexp.MustCompile(`(?m)^Xcode\s+(\d+(?:\.\d+){0,2})`)
	buildLine = regexp.MustCompile(`(?m)^Build version\s+(\S+)`)
)

// Version is a detected Xcode installation.
type Version struct {
	Semver *semver.Version
	Build  string
}

func (v Version) String() string {
	if v.Semver == nil {
		return "unknown"
	}
	if v.Build == "" {
		return v.Semver.Original()
	}
	return fmt.Sprintf("%s (%s)", v.Semver.Original(), v.Build)
}

// Parse reads the output of `xcodebuild -version`.
func Parse(output string) (Version, error) {
	m := xcodeLine.FindStringSubmatch(output)
	if m == nil {
		return Version{}, fmt.Errorf("no Xcode version in %q", strings.TrimSpace(output))
	}
	sv, err := semver.NewVersion(m[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid Xcode version %q: %w", m[1], err)
	}
	v := Version{Semver: sv}
	if b := buildLine.FindStringSubmatch(output); b != nil {
		v.Build = b[1]
	}
	return v, nil
}

// Detect runs `xcodebuild -version` through exec. Failures are reported in
// the toolchain error category.
func Detect(ctx context.Context, exec command.Executor, xcodebuild string) (Version, error) {
	if xcodebuild == "" {
		xcodebuild = "xcodebuild"
	}
	out, err := exec.Execute(ctx, command.Command{xcodebuild + " -version"}, command.ExecOptions{})
	if err != nil {
		return Version{}, derrors.ToolchainUndetected(out, err)
	}
	v, err := Parse(out)
	if err != nil {
		return Version{}, derrors.ToolchainUndetected(out, err)
	}
	return v, nil
}

// PrefersLegacyExport reports whether v predates the modern export API.
func PrefersLegacyExport(v Version) bool {
	if v.Semver == nil {
		return false
	}
	c, err := semver.NewConstraint(modernExportConstraint)
	if err != nil {
		return false
	}
	return !c.Check(v.Semver)
}

// Select picks the strategy for a run. An explicit choice always wins;
// otherwise the detected toolchain decides and a failed detection falls back
// to the modern strategy.
func Select(ctx context.Context, explicit *bool, exec command.Executor, xcodebuild string) (Strategy, Version) {
	if explicit != nil {
		if *explicit {
			return StrategyLegacy, Version{}
		}
		return StrategyModern, Version{}
	}
	v, err := Detect(ctx, exec, xcodebuild)
	if err != nil {
		attrs := []any{logfields.Error(err)}
		if derrors.IsCategory(err, derrors.CategoryToolchain) {
			if out := strings.TrimSpace(derrors.CapturedOutput(err)); out != "" {
				attrs = append(attrs, slog.String("output", out))
			}
		}
		slog.Warn("Could not detect Xcode version, using the modern export strategy", attrs...)
		return StrategyModern, Version{}
	}
	slog.Debug("Detected Xcode", logfields.Version(v.String()))
	if PrefersLegacyExport(v) {
		return StrategyLegacy, v
	}
	return StrategyModern, v
}
