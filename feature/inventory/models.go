package inventory

import (
	"context"
	"fmt"
	"strings"

	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"

	"go.uber.org/zap"
)

// ModelResolver maps a model name to a target model id, creating the model on
// first sight. Results are memoized by name for the lifetime of the memo.
type ModelResolver struct {
	target         Target
	manufacturerID int
	cache          *reconcile.Memo[int]
	logger         *zap.Logger
}

// NewModelResolver creates a resolver over a run-scoped memo.
func NewModelResolver(target Target, manufacturerID int, cache *reconcile.Memo[int], logger *zap.Logger) *ModelResolver {
	return &ModelResolver{
		target:         target,
		manufacturerID: manufacturerID,
		cache:          cache,
		logger:         logger,
	}
}

// Resolve returns the id of the model named name. Lookup and create errors are
// returned as-is; callers treat them as fatal.
func (r *ModelResolver) Resolve(ctx context.Context, name, number string, categoryID int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("resolve model: empty model name")
	}

	id, hit, err := r.cache.GetOrLoad(ctx, name, func(ctx context.Context) (int, error) {
		return r.lookupOrCreate(ctx, name, number, categoryID)
	})
	if err != nil {
		return 0, fmt.Errorf("resolve model %q: %w", name, err)
	}
	if hit {
		r.logger.Debug("Model resolved from cache", zap.String("model", name), zap.Int("model_id", id))
	}
	return id, nil
}

func (r *ModelResolver) lookupOrCreate(ctx context.Context, name, number string, categoryID int) (int, error) {
	m, found, err := r.target.FindModelByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if found {
		r.logger.Debug("Matched model", zap.String("model", name), zap.Int("model_id", m.ID))
		return m.ID, nil
	}

	created, err := r.target.CreateModel(ctx, snipeit.ModelRequest{
		Name:           name,
		Notes:          number,
		CategoryID:     categoryID,
		ManufacturerID: r.manufacturerID,
	})
	if err != nil {
		return 0, err
	}
	r.logger.Info("Created model", zap.String("model", name), zap.Int("model_id", created.ID))
	return created.ID, nil
}
