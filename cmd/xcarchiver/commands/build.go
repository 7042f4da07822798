package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
	"git.home.luguber.info/inful/xcarchiver/internal/metrics"
	"git.home.luguber.info/inful/xcarchiver/internal/pipeline"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	ConfigFlags `embed:""`

	Strategy        string `help:"Packaging strategy" enum:"auto,legacy,modern" default:"auto"`
	KeepTemporary   bool   `name:"keep-temporary" help:"Keep scratch files for inspection"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the run" type:"path"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.ConfigFlags, root.Verbose)
	if err != nil {
		return err
	}
	b.applyOverrides(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, cfg, command.NewShellExecutor(), os.Stdout)
}

func (b *BuildCmd) applyOverrides(cfg *config.Config) {
	switch toolchain.Strategy(b.Strategy) {
	case toolchain.StrategyLegacy:
		cfg.UseLegacyBuildAPI = config.Bool(true)
	case toolchain.StrategyModern:
		cfg.UseLegacyBuildAPI = config.Bool(false)
	}
	if b.KeepTemporary {
		cfg.KeepTemporary = true
	}
	setIf(&cfg.MetricsTextfile, b.MetricsTextfile)
}

// RunBuild runs the pipeline for cfg and prints the produced artifacts to out.
func RunBuild(ctx context.Context, cfg *config.Config, exec command.Executor, out io.Writer, opts ...pipeline.Option) error {
	var prom *metrics.PrometheusRecorder
	if cfg.MetricsTextfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, pipeline.WithRecorder(prom))
	}
	opts = append([]pipeline.Option{pipeline.WithExecutor(exec), pipeline.WithOutput(out)}, opts...)

	artifacts, err := pipeline.NewRunner(cfg, opts...).Run(ctx)

	if prom != nil {
		if werr := prom.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			slog.Warn("Failed to write metrics", logfields.Path(cfg.MetricsTextfile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	if artifacts.Empty() {
		fmt.Fprintln(out, "Build finished; archiving is disabled so nothing was exported")
		return nil
	}
	printArtifacts(out, artifacts)
	return nil
}

func printArtifacts(out io.Writer, a *pipeline.ArtifactSet) {
	rows := []struct{ label, path string }{
		{"Package", a.Package},
		{"dSYM", a.DSYMZip},
		{"Manifest", a.Manifest},
		{"App thinning", a.AppThinning},
		{"Size report", a.AppThinningSizeReport},
		{"Apps", a.Apps},
	}
	for _, r := range rows {
		if r.path == "" {
			continue
		}
		fmt.Fprintf(out, "%-13s %s\n", r.label+":", r.path)
	}
}
