package inventory

import (
	"context"
	"strings"

	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"

	"go.uber.org/zap"
)

// AssetReconciler creates or updates the target asset for a serial number.
// It never changes checkout state.
type AssetReconciler struct {
	target Target
	logger *zap.Logger
}

// NewAssetReconciler creates an asset reconciler.
func NewAssetReconciler(target Target, logger *zap.Logger) *AssetReconciler {
	return &AssetReconciler{target: target, logger: logger}
}

// Reconcile makes the asset with the given serial match desired. Only asset
// tag, notes and name are compared; when one differs the full payload is sent.
func (r *AssetReconciler) Reconcile(ctx context.Context, serial string, desired snipeit.AssetRequest) (snipeit.Asset, reconcile.Action, error) {
	existing, found, err := r.target.FindAssetBySerial(ctx, serial)
	if err != nil {
		return snipeit.Asset{}, reconcile.ActionFailed, err
	}

	if !found {
		created, err := r.target.CreateAsset(ctx, desired)
		if err != nil {
			return snipeit.Asset{}, reconcile.ActionFailed, err
		}
		r.logger.Info("Created asset",
			zap.String("serial", serial),
			zap.String("asset_tag", desired.AssetTag),
			zap.Int("asset_id", created.ID))
		return created, reconcile.ActionCreated, nil
	}

	if !NeedsUpdate(existing, desired) {
		r.logger.Debug("Asset up to date", zap.String("serial", serial), zap.Int("asset_id", existing.ID))
		return existing, reconcile.ActionUnchanged, nil
	}

	updated, err := r.target.UpdateAsset(ctx, existing.ID, desired)
	if err != nil {
		return existing, reconcile.ActionFailed, err
	}
	r.logger.Info("Updated asset",
		zap.String("serial", serial),
		zap.String("asset_tag", desired.AssetTag),
		zap.Int("asset_id", updated.ID))
	return updated, reconcile.ActionUpdated, nil
}

// NeedsUpdate reports whether the stored asset differs from desired. Notes
// match when the desired text is contained in the stored note.
func NeedsUpdate(stored snipeit.Asset, desired snipeit.AssetRequest) bool {
	if stored.AssetTag != desired.AssetTag {
		return true
	}
	if stored.Name != desired.Name {
		return true
	}
	return !strings.Contains(stored.Notes, desired.Notes)
}
