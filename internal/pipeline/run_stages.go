package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/logfields"
)

// classify converts a raw stage error into a StageError and its result.
// Unclassified errors are fatal.
func classify(stage StageName, err error) (*StageError, StageResult) {
	if err == nil {
		return nil, StageResultSuccess
	}
	var se *StageError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			se = newCanceledStageError(stage, err)
		} else {
			se = newFatalStageError(stage, err)
		}
	}
	switch se.Kind {
	case StageErrorWarning:
		return se, StageResultWarning
	case StageErrorCanceled:
		return se, StageResultCanceled
	default:
		return se, StageResultFatal
	}
}

func isCanceled(err error) bool {
	var se *StageError
	if errors.As(err, &se) && se.Kind == StageErrorCanceled {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Cancellation is only observed between stages.
func (r *Runner) runStages(ctx context.Context, rs *RunState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			rs.Results[st.Name] = StageResultCanceled
			r.observer.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		default:
		}

		r.setState(stateFor(st.Name))
		r.observer.OnStageStart(st.Name)
		slog.Debug("Stage started", logfields.RunID(rs.RunID), logfields.Stage(string(st.Name)))

		t0 := time.Now()
		err := st.Fn(ctx, rs)
		dur := time.Since(t0)
		rs.Timings[st.Name] = dur

		se, result := classify(st.Name, err)
		rs.Results[st.Name] = result
		r.observer.OnStageComplete(st.Name, dur, result)

		switch result {
		case StageResultSuccess:
			slog.Debug("Stage completed", logfields.RunID(rs.RunID), logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())))
		case StageResultWarning:
			rs.Warnings = append(rs.Warnings, se)
			slog.Warn("Stage completed with warning", logfields.Stage(string(st.Name)), logfields.Error(se.Err))
		default:
			if se == nil {
				return fmt.Errorf("stage %s aborted", st.Name)
			}
			slog.Debug("Stage failed",
				logfields.RunID(rs.RunID),
				logfields.Stage(string(st.Name)),
				slog.String("category", string(derrors.GetCategory(se.Err))),
				slog.Int("output_bytes", len(derrors.CapturedOutput(se.Err))))
			return se
		}
	}
	return nil
}
