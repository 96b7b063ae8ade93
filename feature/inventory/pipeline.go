package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"
	"fleet-sync/core/snipeit"

	"go.uber.org/zap"
)

// reasonNoModel is recorded for devices that cannot be classified.
const reasonNoModel = "missing model name"

// Pipeline synchronises one device class per Run.
type Pipeline struct {
	source Source
	target Target
	opts   Options
	logger *zap.Logger
	// pause waits between asset reconciles; replaced in tests.
	pause func(ctx context.Context, d time.Duration) error
}

// NewPipeline creates a pipeline.
func NewPipeline(source Source, target Target, opts Options, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		source: source,
		target: target,
		opts:   opts,
		logger: logger,
		pause:  sleep,
	}
}

// Run fetches every device of the profile's class, warms the model cache and
// then reconciles each device inside its own failure boundary. The returned
// error is non-nil when the class was aborted; the report is always usable.
// Run uses a fresh model cache; the orchestrator shares one across classes.
func (p *Pipeline) Run(ctx context.Context, profile ClassProfile) (reconcile.ClassReport, error) {
	return p.run(ctx, profile, reconcile.NewMemo[int]())
}

func (p *Pipeline) run(ctx context.Context, profile ClassProfile, modelCache *reconcile.Memo[int]) (reconcile.ClassReport, error) {
	report := reconcile.ClassReport{Class: profile.Class}
	l := p.logger.With(zap.String("class", string(profile.Class)))

	l.Info("Retrieving devices from source")
	devices, err := p.source.ListDevices(ctx, profile.Class)
	if err != nil {
		return p.abort(l, report, fmt.Errorf("list devices: %w", err))
	}
	l.Info("Retrieved devices", zap.Int("count", len(devices)))

	report.Devices = make([]reconcile.DeviceResult, len(devices))
	var (
		eligible []reconcile.Device
		slots    []int
	)
	for i, d := range devices {
		if strings.TrimSpace(d.ModelName) == "" {
			l.Debug("Skipping device without model name", zap.String("serial", d.SerialNumber))
			report.Devices[i] = reconcile.DeviceResult{
				SerialNumber: d.SerialNumber,
				Action:       reconcile.ActionSkipped,
				Reason:       reasonNoModel,
			}
			continue
		}
		eligible = append(eligible, d)
		slots = append(slots, i)
	}

	report.DuplicateSerials = reconcile.DuplicateKeys(eligible, func(d reconcile.Device) string { return d.SerialNumber })
	if len(report.DuplicateSerials) > 0 {
		l.Warn("Duplicate serial numbers in source list, each occurrence is reconciled",
			zap.Strings("serials", report.DuplicateSerials))
	}

	models := NewModelResolver(p.target, p.opts.ManufacturerID, modelCache, l)
	err = reconcile.RunFailFast(ctx, eligible, func(ctx context.Context, d reconcile.Device) error {
		_, err := models.Resolve(ctx, d.ModelName, d.ModelNumber, profile.CategoryID)
		return err
	})
	if err != nil {
		p.fill(&report, devices, fmt.Sprintf("class aborted: %v", err))
		return p.abort(l, report, fmt.Errorf("model warm-up: %w", err))
	}

	assets := NewAssetReconciler(p.target, l)
	checkout := NewCheckoutCoordinator(p.target, NewUserResolver(p.target, l), p.opts.DefaultStatusID, p.opts.CreateUsers, l)
	withCheckout := profile.Checkout && p.opts.CheckoutDevices
	serials := reconcile.NewKeyedLock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		fatalOnce sync.Once
		fatal     error
	)

	failures := reconcile.RunIsolated(runCtx, eligible, p.opts.Workers, func(ctx context.Context, i int, d reconcile.Device) error {
		res, err := p.processDevice(ctx, l, models, assets, checkout, serials, profile, withCheckout, d)
		report.Devices[slots[i]] = res
		if errors.Is(err, ErrRunAborted) {
			fatalOnce.Do(func() {
				fatal = err
				cancel()
			})
		}
		return err
	})

	for _, f := range failures {
		slot := slots[f.Index]
		if report.Devices[slot].Action != "" {
			continue
		}
		if fatal != nil && errors.Is(f.Err, context.Canceled) {
			continue
		}
		report.Devices[slot] = failedResult(eligible[f.Index].SerialNumber, f.Err)
	}

	if fatal != nil {
		p.fill(&report, devices, fmt.Sprintf("run aborted: %v", fatal))
		return p.abort(l, report, fatal)
	}

	for _, r := range report.Devices {
		report.Summary.Add(r)
	}
	if err := ctx.Err(); err != nil {
		return p.abort(l, report, err)
	}

	l.Info("Device class complete",
		zap.Int("created", report.Summary.Created),
		zap.Int("updated", report.Summary.Updated),
		zap.Int("unchanged", report.Summary.Unchanged),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("failed", report.Summary.Failed))
	return report, nil
}

func (p *Pipeline) processDevice(
	ctx context.Context,
	l *zap.Logger,
	models *ModelResolver,
	assets *AssetReconciler,
	checkout *CheckoutCoordinator,
	serials *reconcile.KeyedLock,
	profile ClassProfile,
	withCheckout bool,
	d reconcile.Device,
) (reconcile.DeviceResult, error) {
	res := reconcile.DeviceResult{SerialNumber: d.SerialNumber}

	fail := func(err error) (reconcile.DeviceResult, error) {
		failed := failedResult(d.SerialNumber, err)
		failed.AssetID = res.AssetID
		failed.UserID = res.UserID
		failed.Checkout = res.Checkout
		l.Error("Failed to process device, skipping",
			zap.String("serial", d.SerialNumber),
			zap.String("failure_kind", failed.ErrorKind),
			zap.Error(err))
		return failed, err
	}

	modelID, err := models.Resolve(ctx, d.ModelName, d.ModelNumber, profile.CategoryID)
	if err != nil {
		return fail(err)
	}

	// Occurrences of one serial must not interleave their asset and checkout calls.
	unlock, err := serials.Lock(ctx, d.SerialNumber)
	if err != nil {
		return fail(err)
	}
	defer unlock()

	asset, action, err := assets.Reconcile(ctx, d.SerialNumber, p.desiredAsset(d, modelID))
	if err != nil {
		return fail(err)
	}
	res.AssetID = asset.ID
	res.Action = action

	if err := p.pause(ctx, p.opts.RateLimit); err != nil {
		return fail(err)
	}

	if withCheckout {
		transition, userID, err := checkout.Reconcile(ctx, d, asset.ID)
		res.UserID = userID
		if err != nil {
			return fail(err)
		}
		res.Checkout = transition
	}

	l.Debug("Device reconciled",
		zap.String("serial", d.SerialNumber),
		zap.String("action", string(res.Action)),
		zap.String("checkout", string(res.Checkout)))
	return res, nil
}

func (p *Pipeline) desiredAsset(d reconcile.Device, modelID int) snipeit.AssetRequest {
	return snipeit.AssetRequest{
		Archived:   false,
		SupplierID: p.opts.SupplierID,
		AssetTag:   d.AssetTag,
		StatusID:   p.opts.DefaultStatusID,
		ModelID:    modelID,
		Name:       d.Name,
		Serial:     d.SerialNumber,
		Notes:      d.Link,
	}
}

// fill marks every device without a result as skipped with reason.
func (p *Pipeline) fill(report *reconcile.ClassReport, devices []reconcile.Device, reason string) {
	for i, d := range devices {
		if report.Devices[i].Action == "" {
			report.Devices[i] = reconcile.DeviceResult{
				SerialNumber: d.SerialNumber,
				Action:       reconcile.ActionSkipped,
				Reason:       reason,
			}
		}
	}
	report.Summary = reconcile.Summary{}
	for _, r := range report.Devices {
		report.Summary.Add(r)
	}
}

func (p *Pipeline) abort(l *zap.Logger, report reconcile.ClassReport, err error) (reconcile.ClassReport, error) {
	report.Aborted = true
	report.Error = err.Error()
	l.Error("Device class aborted", zap.String("failure_kind", string(failure.KindOf(err))), zap.Error(err))
	return report, err
}

func failedResult(serial string, err error) reconcile.DeviceResult {
	return reconcile.DeviceResult{
		SerialNumber: serial,
		Action:       reconcile.ActionFailed,
		Reason:       err.Error(),
		ErrorKind:    string(failure.KindOf(err)),
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
