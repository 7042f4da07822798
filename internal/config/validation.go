package config

import (
	"slices"

	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
)

// KnownExportMethods lists the export methods accepted by the export tool.
var KnownExportMethods = []string{
	"app-store",
	"ad-hoc",
	"package",
	"enterprise",
	"development",
	"developer-id",
}

// ValidateConfig validates the configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateProject(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	return cv.validateExport()
}

func (cv *configurationValidator) validateProject() error {
	c := cv.config
	if c.Project != "" && c.Workspace != "" {
		return derrors.ValidationFailed("project", "you can only pass either a 'project' or a 'workspace', not both")
	}
	if c.Project == "" && c.Workspace == "" {
		return derrors.ValidationFailed("project", "either a 'project' or a 'workspace' is required")
	}
	if c.Scheme == "" {
		return derrors.ValidationFailed("scheme", "scheme is required")
	}
	switch c.Platform {
	case PlatformIOS, PlatformTVOS, PlatformMac:
	default:
		return derrors.ValidationFailed("platform", "must be one of ios, tvos, mac")
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	if cv.config.OutputName == "" {
		return derrors.ValidationFailed("output_name", "output name resolved to an empty string")
	}
	return nil
}

func (cv *configurationValidator) validateExport() error {
	c := cv.config
	if c.ExportMethod != "" && !slices.Contains(KnownExportMethods, c.ExportMethod) {
		return derrors.ValidationFailed("export_method", "unknown export method "+c.ExportMethod)
	}
	return nil
}
