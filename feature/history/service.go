package history

import (
	"context"
	"errors"

	"fleet-sync/core/reconcile"
	"fleet-sync/feature/history/models"

	"go.uber.org/zap"
)

// ErrUnavailable is returned when the backing store for a query is not configured.
var ErrUnavailable = errors.New("history store not configured")

// Service records finished runs and serves them back. Either store may be nil.
type Service struct {
	repo    *Repository
	archive *Archiver
	logger  *zap.Logger
}

// NewService creates a history service.
func NewService(repo *Repository, archive *Archiver, logger *zap.Logger) *Service {
	return &Service{repo: repo, archive: archive, logger: logger}
}

// Enabled reports whether any store is configured.
func (s *Service) Enabled() bool {
	return s.repo != nil || s.archive != nil
}

// Record persists the report to every configured store. Failures are logged
// and never returned: history must not change the outcome of a run.
func (s *Service) Record(ctx context.Context, report reconcile.RunReport) {
	l := s.logger.With(zap.String("run_id", report.ID))

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, report); err != nil {
			l.Warn("Failed to save run history", zap.Error(err))
		} else {
			l.Info("Saved run history")
		}
	}

	if s.archive != nil {
		if key, err := s.archive.Save(ctx, report); err != nil {
			l.Warn("Failed to archive run report", zap.Error(err))
		} else {
			l.Info("Archived run report", zap.String("key", key))
		}
	}
}

// Runs lists recent runs.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if s.repo == nil {
		return nil, ErrUnavailable
	}
	return s.repo.ListRuns(ctx, limit)
}

// Run returns one run with its outcomes.
func (s *Service) Run(ctx context.Context, id string) (models.SyncRun, error) {
	if s.repo == nil {
		return models.SyncRun{}, ErrUnavailable
	}
	return s.repo.GetRun(ctx, id)
}

// Report returns the archived report for a run.
func (s *Service) Report(ctx context.Context, id string) (reconcile.RunReport, error) {
	if s.archive == nil {
		return reconcile.RunReport{}, ErrUnavailable
	}
	return s.archive.Load(ctx, id)
}

// Archived lists the run ids present in the archive.
func (s *Service) Archived(ctx context.Context) ([]string, error) {
	if s.archive == nil {
		return nil, ErrUnavailable
	}
	return s.archive.List(ctx)
}
