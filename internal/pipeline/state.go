package pipeline

import (
	"time"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
	"git.home.luguber.info/inful/xcarchiver/internal/packaging"
	"git.home.luguber.info/inful/xcarchiver/internal/toolchain"
)

// State is the position of a run in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateCleanup    State = "cleanup"
	StateBuilding   State = "building"
	StateVerifying  State = "verifying"
	StatePackaging  State = "packaging"
	StateRelocating State = "relocating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// stateFor maps a stage to the state a run is in while it executes.
func stateFor(stage StageName) State {
	return State(stage)
}

// ArtifactSet lists the files a run placed in the output directory. Optional
// entries are "" when the artifact was not produced.
type ArtifactSet struct {
	// Package is the .ipa (iOS, tvOS) or .app (macOS).
	Package               string `json:"package,omitempty"`
	DSYMZip               string `json:"dsym_zip,omitempty"`
	Manifest              string `json:"manifest,omitempty"`
	AppThinning           string `json:"app_thinning,omitempty"`
	AppThinningSizeReport string `json:"app_thinning_size_report,omitempty"`
	Apps                  string `json:"apps,omitempty"`
}

// Empty reports whether nothing was produced, as for build-only runs.
func (a ArtifactSet) Empty() bool {
	return a.Count() == 0
}

// Count returns the number of produced artifacts.
func (a ArtifactSet) Count() int {
	n := 0
	for _, p := range []string{a.Package, a.DSYMZip, a.Manifest, a.AppThinning, a.AppThinningSizeReport, a.Apps} {
		if p != "" {
			n++
		}
	}
	return n
}

// RunState carries the collaborators and the artifacts gathered so far across
// the stages of one run.
type RunState struct {
	RunID    string
	Config   *config.Config
	Strategy toolchain.Strategy
	Build    BuildCommandGenerator
	Package  packaging.Generator

	Artifacts ArtifactSet
	Timings   map[StageName]time.Duration
	Results   map[StageName]StageResult
	Warnings  []error

	runner *Runner
}
