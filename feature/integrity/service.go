package integrity

import (
	"context"
	"errors"

	"fleet-sync/core/config"
	"fleet-sync/core/snipeit"
	"fleet-sync/core/storage"
	"fleet-sync/feature/history/models"
	"fleet-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned by checks whose dependency was not provided.
var ErrNotConfigured = errors.New("not configured")

// Status values of a single check.
const (
	StatusOK      = "ok"
	StatusFailed  = "error"
	StatusSkipped = "skipped"
)

// Deps are the systems the preflight checks talk to. Nil members skip their check.
type Deps struct {
	Target     checks.ReferenceChecker
	Source     checks.Authenticator
	DB         *gorm.DB
	Storage    storage.Client
	Bucket     string
	Region     string
	References []checks.Reference
}

// Result is the outcome of one check.
type Result struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Report is the combined preflight result.
type Report struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]Result `json:"checks"`
}

// Service runs the preflight checks.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(deps Deps, logger *zap.Logger) *Service {
	return &Service{deps: deps, logger: logger}
}

// References lists the ids a sync run depends on: manufacturer, supplier,
// default status and the category of every enabled class.
func References(cfg config.SyncConfig) []checks.Reference {
	refs := []checks.Reference{
		{Name: "manufacturer", Kind: snipeit.RefManufacturer, ID: cfg.ManufacturerID},
		{Name: "supplier", Kind: snipeit.RefSupplier, ID: cfg.SupplierID},
		{Name: "default status", Kind: snipeit.RefStatusLabel, ID: cfg.DefaultStatusID},
	}
	for _, class := range []struct {
		name string
		cfg  config.ClassConfig
	}{{"ios", cfg.IOS}, {"mac", cfg.Mac}, {"tvos", cfg.TVOS}} {
		if class.cfg.Enabled {
			refs = append(refs, checks.Reference{Name: class.name + " category", Kind: snipeit.RefCategory, ID: class.cfg.CategoryID})
		}
	}
	return refs
}

// CheckTarget pings the target and validates the configured references.
func (s *Service) CheckTarget(ctx context.Context) (*checks.ReferenceReport, error) {
	if s.deps.Target == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckReferences(ctx, s.deps.Target, s.deps.References)
}

// CheckSource authenticates against the source.
func (s *Service) CheckSource(ctx context.Context) error {
	if s.deps.Source == nil {
		return ErrNotConfigured
	}
	return checks.CheckSource(ctx, s.deps.Source)
}

// CheckSchema compares the history tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.deps.DB == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckSchema(s.deps.DB, models.SyncRun{}, models.DeviceOutcome{})
}

// CheckArchive reports whether the archive bucket exists.
func (s *Service) CheckArchive(ctx context.Context) (bool, error) {
	if s.deps.Storage == nil {
		return false, ErrNotConfigured
	}
	return checks.CheckArchive(ctx, s.deps.Storage, s.deps.Bucket)
}

// FixArchive creates the archive bucket.
func (s *Service) FixArchive(ctx context.Context) error {
	if s.deps.Storage == nil {
		return ErrNotConfigured
	}
	return checks.FixArchive(ctx, s.deps.Storage, s.deps.Bucket, s.deps.Region, s.logger)
}

// RunAll runs every check. Checks without a dependency are skipped and never
// make the report unhealthy.
func (s *Service) RunAll(ctx context.Context) Report {
	report := Report{Healthy: true, Checks: make(map[string]Result)}
	record := func(name string, ok bool, details any, err error) {
		res := Result{Status: StatusOK, Details: details}
		switch {
		case errors.Is(err, ErrNotConfigured):
			res = Result{Status: StatusSkipped}
		case err != nil:
			res = Result{Status: StatusFailed, Error: err.Error()}
		case !ok:
			res.Status = StatusFailed
		}
		if res.Status == StatusFailed {
			report.Healthy = false
			s.logger.Warn("Preflight check failed", zap.String("check", name), zap.String("error", res.Error))
		}
		report.Checks[name] = res
	}

	if refs, err := s.CheckTarget(ctx); err != nil {
		record("target", false, nil, err)
	} else {
		record("target", refs.Matched, refs, nil)
	}

	err := s.CheckSource(ctx)
	record("source", err == nil, nil, err)

	if schema, err := s.CheckSchema(); err != nil {
		record("schema", false, nil, err)
	} else {
		record("schema", schema.Matched, schema, nil)
	}

	if exists, err := s.CheckArchive(ctx); err != nil {
		record("archive", false, nil, err)
	} else {
		record("archive", exists, map[string]any{"bucket": s.deps.Bucket, "exists": exists}, nil)
	}

	return report
}
