package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// RunOutcomeLabel is the final status of a run.
type RunOutcomeLabel string

const (
	RunSuccess  RunOutcomeLabel = "success"
	RunFailed   RunOutcomeLabel = "failed"
	RunCanceled RunOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for pipeline runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(strategy string, outcome RunOutcomeLabel)
	SetArtifactCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string, RunOutcomeLabel)      {}
func (NoopRecorder) SetArtifactCount(int)                       {}
