package history

import (
	"context"
	"errors"
	"fmt"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/feature/history/models"

	"gorm.io/gorm"
)

// outcomeBatchSize bounds the rows per INSERT when saving device outcomes.
const outcomeBatchSize = 200

// Repository persists run history with GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the history tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.SyncRun{}, &models.DeviceOutcome{})
}

// SaveRun stores the run and all device outcomes in one transaction.
func (r *Repository) SaveRun(ctx context.Context, report reconcile.RunReport) error {
	run := models.FromReport(report)
	outcomes := run.Outcomes
	run.Outcomes = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}
		if len(outcomes) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&outcomes, outcomeBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save outcomes for run %s: %w", run.ID, err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs without outcomes.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SyncRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its device outcomes.
func (r *Repository) GetRun(ctx context.Context, id string) (models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.WithContext(ctx).Preload("Outcomes").First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SyncRun{}, fmt.Errorf("run %s: %w", id, failure.ErrNotFound)
	}
	if err != nil {
		return models.SyncRun{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return run, nil
}
