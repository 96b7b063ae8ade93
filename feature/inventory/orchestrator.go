package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-sync/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator runs one pipeline per enabled device class, in order.
type Orchestrator struct {
	pipeline *Pipeline
	profiles []ClassProfile
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator over the classes enabled in the pipeline options.
func NewOrchestrator(pipeline *Pipeline, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline: pipeline,
		profiles: pipeline.opts.Classes,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes every class and returns the run report. A class that aborts is
// recorded and the next class still runs, unless the failure aborts the whole
// run. The error is non-nil only when ctx was cancelled.
func (o *Orchestrator) Run(ctx context.Context) (reconcile.RunReport, error) {
	report := reconcile.RunReport{
		ID:        uuid.NewString(),
		StartedAt: o.now(),
	}
	l := o.logger.With(zap.String("run_id", report.ID))
	l.Info("Starting sync run", zap.Int("classes", len(o.profiles)))

	// One model cache for the whole run.
	models := reconcile.NewMemo[int]()

	var runErr error
	for i, profile := range o.profiles {
		if err := ctx.Err(); err != nil {
			runErr = err
			report.Classes = append(report.Classes, skippedClasses(o.profiles[i:], err)...)
			break
		}

		class, err := o.pipeline.run(ctx, profile, models)
		report.Classes = append(report.Classes, class)
		if err == nil {
			continue
		}

		if errors.Is(err, ErrRunAborted) {
			l.Error("Run aborted", zap.String("class", string(profile.Class)), zap.Error(err))
			report.Classes = append(report.Classes, skippedClasses(o.profiles[i+1:], err)...)
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = ctxErr
			report.Classes = append(report.Classes, skippedClasses(o.profiles[i+1:], ctxErr)...)
			break
		}
	}

	report.Finalize(o.now())
	l.Info("Sync run finished",
		zap.String("status", string(report.Status)),
		zap.Int("total", report.Summary.Total),
		zap.Int("created", report.Summary.Created),
		zap.Int("updated", report.Summary.Updated),
		zap.Int("failed", report.Summary.Failed),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	return report, runErr
}

func skippedClasses(profiles []ClassProfile, cause error) []reconcile.ClassReport {
	out := make([]reconcile.ClassReport, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, reconcile.ClassReport{
			Class:   p.Class,
			Aborted: true,
			Error:   fmt.Sprintf("not started: %v", cause),
		})
	}
	return out
}
