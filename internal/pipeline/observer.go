package pipeline

import (
	"time"

	"git.home.luguber.info/inful/xcarchiver/internal/metrics"
)

// Observer receives callbacks around stage execution and the run lifecycle.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnRunComplete(rs *RunState, duration time.Duration, err error)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnRunComplete(*RunState, time.Duration, error)         {}

// recorderObserver adapts metrics.Recorder into an Observer.
type recorderObserver struct{ rec metrics.Recorder }

func (r recorderObserver) OnStageStart(StageName) {}

func (r recorderObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	r.rec.ObserveStageDuration(string(stage), d)
	r.rec.IncStageResult(string(stage), metrics.ResultLabel(result))
}

func (r recorderObserver) OnRunComplete(rs *RunState, d time.Duration, err error) {
	r.rec.ObserveRunDuration(d)
	outcome := metrics.RunSuccess
	switch {
	case isCanceled(err):
		outcome = metrics.RunCanceled
	case err != nil:
		outcome = metrics.RunFailed
	}
	r.rec.IncRunOutcome(string(rs.Strategy), outcome)
	r.rec.SetArtifactCount(rs.Artifacts.Count())
}

// multiObserver fans callbacks out in order.
type multiObserver []Observer

func (m multiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, result)
	}
}

func (m multiObserver) OnRunComplete(rs *RunState, d time.Duration, err error) {
	for _, o := range m {
		o.OnRunComplete(rs, d, err)
	}
}
