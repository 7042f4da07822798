package config

import (
	"fmt"
	"strings"

	"github.com/flytam/filenamify"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ProjectDefaultApplier handles project and scheme defaults.
type ProjectDefaultApplier struct{}

func (p *ProjectDefaultApplier) Domain() string { return "project" }

func (p *ProjectDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Platform == "" {
		cfg.Platform = PlatformIOS
	} else {
		cfg.Platform = Platform(strings.ToLower(strings.TrimSpace(string(cfg.Platform))))
	}
	if cfg.Configuration == "" {
		cfg.Configuration = "Release"
	}
	return nil
}

// OutputDefaultApplier handles output directory and name defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = "."
	}
	name := cfg.OutputName
	if name == "" {
		name = cfg.Scheme
	}
	normalized, err := NormalizeOutputName(name)
	if err != nil {
		return err
	}
	cfg.OutputName = normalized
	return nil
}

// ToolingDefaultApplier fills in the wrapped executables.
type ToolingDefaultApplier struct{}

func (t *ToolingDefaultApplier) Domain() string { return "tooling" }

func (t *ToolingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Tooling.Xcrun == "" {
		cfg.Tooling.Xcrun = "/usr/bin/xcrun"
	}
	if cfg.Tooling.Xcodebuild == "" {
		cfg.Tooling.Xcodebuild = "xcodebuild"
	}
	if cfg.Tooling.PackageApplication == "" {
		cfg.Tooling.PackageApplication = "PackageApplication"
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&ProjectDefaultApplier{},
		&OutputDefaultApplier{},
		&ToolingDefaultApplier{},
	}
}

// ApplyDefaults runs every domain applier in order. Export-related fields are
// left untouched: they are backfilled during export document synthesis.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("apply %s defaults: %w", applier.Domain(), err)
		}
	}
	return nil
}

// NormalizeOutputName strips a trailing package extension and replaces
// characters that are not valid in file names.
func NormalizeOutputName(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, ext := range []string{".ipa", ".app"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
		}
	}
	if name == "" {
		return "", nil
	}
	return filenamify.FilenamifyV2(name)
}
