package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"xcarchiver.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging and print generated commands"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build         BuildCmd         `cmd:"" help:"Build, archive and export the configured scheme"`
	ExportOptions ExportOptionsCmd `cmd:"" name:"export-options" help:"Print the export options plist that would be used"`
	Init          InitCmd          `cmd:"" help:"Initialize a new configuration file"`
	Info          VersionCmd       `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel resolves the log level from the verbose flag, overridden by
// XCARCHIVER_LOG_LEVEL when it names a valid level.
func parseLogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv("XCARCHIVER_LOG_LEVEL")); env != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(env)); err == nil {
			level = parsed
		}
	}
	return level
}

// ConfigFlags are the configuration values that may be given on the command
// line. Set flags override the configuration file.
type ConfigFlags struct {
	Workspace       string `help:"Path to the .xcworkspace" type:"path"`
	Project         string `help:"Path to the .xcodeproj" type:"path"`
	Scheme          string `short:"s" help:"Scheme to archive"`
	Configuration   string `help:"Build configuration (default Release)"`
	Platform        string `help:"Target platform (ios, tvos, mac)"`
	OutputDirectory string `short:"o" name:"output-directory" help:"Directory receiving the artifacts" type:"path"`
	OutputName      string `short:"n" name:"output-name" help:"Artifact base name, without extension"`
	ExportMethod    string `short:"m" name:"export-method" help:"Export method (app-store, ad-hoc, package, enterprise, development, developer-id)"`
	ExportOptions   string `name:"export-options" help:"Path to an export options plist" type:"path"`
	ExportTeamID    string `name:"export-team-id" help:"Team ID written to the export options"`
	Silent          bool   `help:"Do not echo executed commands"`
}

func (f ConfigFlags) apply(cfg *config.Config) {
	if f.Workspace != "" {
		cfg.Workspace, cfg.Project = f.Workspace, ""
	}
	if f.Project != "" {
		cfg.Project, cfg.Workspace = f.Project, ""
	}
	setIf(&cfg.Scheme, f.Scheme)
	setIf(&cfg.Configuration, f.Configuration)
	setIf((*string)(&cfg.Platform), f.Platform)
	setIf(&cfg.OutputDirectory, f.OutputDirectory)
	setIf(&cfg.OutputName, f.OutputName)
	setIf(&cfg.ExportMethod, f.ExportMethod)
	setIf(&cfg.ExportTeamID, f.ExportTeamID)
	if f.ExportOptions != "" {
		cfg.ExportOptions = config.ExportOptions{Path: f.ExportOptions}
	}
	if f.Silent {
		cfg.Silent = true
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadConfig reads the configuration file, layers flags on top and finalizes.
// A missing file is accepted when the flags name a scheme.
func loadConfig(path string, flags ConfigFlags, verbose bool) (*config.Config, error) {
	cfg, err := config.Read(path)
	if err != nil {
		if !errors.Is(err, derrors.ErrConfigNotFound) || flags.Scheme == "" {
			return nil, err
		}
		slog.Debug("No configuration file, using command line flags only", "path", path)
		cfg = &config.Config{}
	}
	flags.apply(cfg)
	if verbose {
		cfg.Verbose = true
	}
	if err := config.Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
