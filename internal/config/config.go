package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
)

// Platform identifies the product family of the scheme being archived.
type Platform string

const (
	PlatformIOS  Platform = "ios"
	PlatformTVOS Platform = "tvos"
	PlatformMac  Platform = "mac"
)

// Config is the build configuration consumed read-only by the pipeline. The
// only mutation the pipeline performs is the one-time export backfill.
type Config struct {
	Workspace     string   `yaml:"workspace,omitempty"`
	Project       string   `yaml:"project,omitempty"`
	Scheme        string   `yaml:"scheme"`
	Configuration string   `yaml:"configuration,omitempty"`
	Platform      Platform `yaml:"platform"`
	SDK           string   `yaml:"sdk,omitempty"`
	Destination   string   `yaml:"destination,omitempty"`
	XCArgs        string   `yaml:"xcargs,omitempty"`

	OutputDirectory string `yaml:"output_directory"`
	OutputName      string `yaml:"output_name"`
	BuildPath       string `yaml:"build_path,omitempty"`
	ArchivePath     string `yaml:"archive_path,omitempty"`
	BuildLogPath    string `yaml:"buildlog_path,omitempty"`

	// Archive disables the archive/export steps when explicitly false. Deprecated.
	Archive *bool `yaml:"archive,omitempty"`
	// UseLegacyBuildAPI forces the packaging strategy; nil selects by Xcode version.
	UseLegacyBuildAPI *bool `yaml:"use_legacy_build_api,omitempty"`

	ExportMethod   string        `yaml:"export_method,omitempty"`
	IncludeSymbols *bool         `yaml:"include_symbols,omitempty"`
	IncludeBitcode *bool         `yaml:"include_bitcode,omitempty"`
	ExportTeamID   string        `yaml:"export_team_id,omitempty"`
	ExportOptions  ExportOptions `yaml:"export_options,omitempty"`

	ProvisioningProfilePath string `yaml:"provisioning_profile_path,omitempty"`
	CodesigningIdentity     string `yaml:"codesigning_identity,omitempty"`

	Tooling ToolingConfig `yaml:"tooling,omitempty"`

	Silent          bool   `yaml:"silent,omitempty"`
	Verbose         bool   `yaml:"verbose,omitempty"`
	KeepTemporary   bool   `yaml:"keep_temporary,omitempty"`
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`
}

// ToolingConfig names the external executables wrapped by generated commands.
type ToolingConfig struct {
	Xcrun              string `yaml:"xcrun,omitempty"`
	Xcodebuild         string `yaml:"xcodebuild,omitempty"`
	PackageApplication string `yaml:"package_application,omitempty"`
}

// ArchiveEnabled reports whether archive/export steps should run.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive == nil || *c.Archive
}

// Bool returns a pointer to b, for tri-state fields.
func Bool(b bool) *bool { return &b }

// Load reads the configuration file, then applies defaults and validates.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read parses the configuration file without applying defaults, so callers
// can layer overrides before Finalize.
func Read(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to unmarshal config").
			WithContext("path", configPath)
	}

	return &cfg, nil
}

// Finalize applies defaults and validates. Call it after CLI overrides.
func Finalize(cfg *Config) error {
	if err := ApplyDefaults(cfg); err != nil {
		return err
	}
	return ValidateConfig(cfg)
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Workspace:       "./Example.xcworkspace",
		Scheme:          "Example",
		Configuration:   "Release",
		Platform:        PlatformIOS,
		OutputDirectory: "./build",
		OutputName:      "Example",
		ExportMethod:    "app-store",
		IncludeSymbols:  Bool(true),
		IncludeBitcode:  Bool(false),
		ExportOptions: ExportOptions{Inline: map[string]any{
			"manifest": map[string]any{
				"appURL": "https://example.com/Example.ipa",
			},
		}},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads the first .env file found. Variables already present in
// the environment are not overridden.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}
