package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/xcarchiver/internal/buildcmd"
	"git.home.luguber.info/inful/xcarchiver/internal/command"
	"git.home.luguber.info/inful/xcarchiver/internal/config"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
	"git.home.luguber.info/inful/xcarchiver/internal/metrics"
	"git.home.luguber.info/inful/xcarchiver/internal/packaging"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
	"git.home.luguber.info/inful/xcarchiver/internal/workspace"
)

// BuildCommandGenerator produces the archive command and knows where the
// archive ends up.
type BuildCommandGenerator interface {
	packaging.ArchiveLocator
	Generate() (command.Command, error)
}

// BuildGeneratorFactory creates the build generator for one run.
type BuildGeneratorFactory func(cfg *config.Config) BuildCommandGenerator

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor sets the process collaborator.
func WithExecutor(exec command.Executor) Option {
	return func(r *Runner) { r.exec = exec }
}

// WithBuildGenerator replaces the xcodebuild archive generator.
func WithBuildGenerator(f BuildGeneratorFactory) Option {
	return func(r *Runner) { r.newBuild = f }
}

// WithStrategy forces a packaging strategy and skips toolchain detection.
func WithStrategy(s toolchain.Strategy) Option {
	return func(r *Runner) { r.strategy = s }
}

// WithRecorder reports stage and run metrics to rec.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithObserver adds an observer notified around every stage.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithWorkspaceDir sets the parent directory for scratch files.
func WithWorkspaceDir(dir string) Option {
	return func(r *Runner) { r.workspaceDir = dir }
}

// WithOutput sets where command tables are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// Runner executes runs for one configuration. Each Run builds fresh generators
// and scratch space; Runs must not overlap.
type Runner struct {
	cfg          *config.Config
	exec         command.Executor
	newBuild     BuildGeneratorFactory
	strategy     toolchain.Strategy
	recorder     metrics.Recorder
	observers    []Observer
	observer     Observer
	workspaceDir string
	out          io.Writer

	mu    sync.Mutex
	state State
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		exec:     command.NewShellExecutor(),
		newBuild: func(c *config.Config) BuildCommandGenerator { return buildcmd.New(c) },
		recorder: metrics.NoopRecorder{},
		out:      os.Stdout,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.observer = append(multiObserver{recorderObserver{rec: r.recorder}}, r.observers...)
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()
	if prev != s {
		slog.Debug("State transition", logfields.State(string(s)))
	}
}

// Run builds, archives and exports. The returned ArtifactSet is only
// non-nil on success; it is empty when archiving is disabled.
func (r *Runner) Run(ctx context.Context) (*ArtifactSet, error) {
	start := time.Now()
	rs := &RunState{
		RunID:   uuid.NewString(),
		Config:  r.cfg,
		Timings: make(map[StageName]time.Duration),
		Results: make(map[StageName]StageResult),
		runner:  r,
	}
	r.setState(StateIdle)

	rs.Strategy = r.strategy
	if rs.Strategy == "" {
		rs.Strategy, _ = toolchain.Select(ctx, r.cfg.UseLegacyBuildAPI, r.exec, r.cfg.Tooling.Xcodebuild)
	}
	slog.Info("Starting run",
		logfields.RunID(rs.RunID),
		logfields.Scheme(r.cfg.Scheme),
		logfields.Platform(string(r.cfg.Platform)),
		logfields.Strategy(string(rs.Strategy)))

	ws := workspace.NewManager(r.workspaceDir).Keep(r.cfg.KeepTemporary)
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to remove temporary files", logfields.Error(err))
		}
	}()

	rs.Build = r.newBuild(r.cfg)
	err := r.prepare(rs, ws)
	if err == nil {
		plan := r.stages(rs)
		slog.Debug("Pipeline planned", logfields.RunID(rs.RunID), slog.Any("stages", plan.Names()))
		err = r.runStages(ctx, rs, plan.Build())
	}

	dur := time.Since(start)
	r.observer.OnRunComplete(rs, dur, err)
	if err != nil {
		r.setState(StateFailed)
		slog.Error("Run failed", logfields.RunID(rs.RunID), logfields.Error(err))
		return nil, err
	}
	r.setState(StateDone)
	slog.Info("Run completed",
		logfields.RunID(rs.RunID),
		logfields.Count(rs.Artifacts.Count()),
		logfields.DurationMS(float64(dur.Milliseconds())))

	artifacts := rs.Artifacts
	return &artifacts, nil
}

func (r *Runner) prepare(rs *RunState, ws *workspace.Manager) error {
	if !r.cfg.ArchiveEnabled() {
		return nil
	}
	pkg, err := packaging.New(rs.Strategy, r.cfg, rs.Build, ws)
	if err != nil {
		return err
	}
	rs.Package = pkg
	slog.Debug("Scratch workspace ready", logfields.RunID(rs.RunID), logfields.Path(ws.GetPath()))
	return nil
}

// stages lays out the pipeline for this run.
func (r *Runner) stages(rs *RunState) *Pipeline {
	p := NewPipeline()
	if !r.cfg.ArchiveEnabled() {
		return p.Add(StageBuilding, stageBuild)
	}
	mac := r.cfg.Platform == config.PlatformMac
	return p.
		AddIf(rs.Strategy == toolchain.StrategyLegacy, StageCleanup, stageCleanup).
		Add(StageBuilding, stageBuild).
		Add(StageVerifying, stageVerify).
		AddIf(!mac, StagePackaging, stagePackage).
		Add(StageRelocating, stageRelocate)
}
