// Package reconcile provides the domain-neutral building blocks of a sync run:
// the source device record, run reports, execution modes and a run-scoped memo.
//
// # Execution Modes
//
// A device class pipeline mixes two kinds of batch work, and this package
// models them explicitly instead of nesting error handling ad hoc:
//
//  1. RunFailFast: every item must succeed. The first error aborts the batch
//     and is returned to the caller (used for model warm-up).
//  2. RunIsolated: every item runs inside its own failure boundary. Errors are
//     collected per item and the batch continues. An optional bounded worker
//     pool (errgroup) processes items concurrently while keeping results
//     ordered by input position.
//
// Both modes convert panics into item errors.
//
// # Memo
//
// Memo replaces a package-level cache with an explicit object passed into a
// pipeline. It is safe for concurrent use and collapses concurrent loads of the
// same key with singleflight.
//
// # Reports
//
// RunReport, ClassReport and DeviceResult form the structured trail of a run.
// They are JSON-serializable so they can be archived and served as-is.
//
// # Usage Example
//
//	models := reconcile.NewMemo[int]()
//	err := reconcile.RunFailFast(ctx, devices, func(ctx context.Context, d reconcile.Device) error {
//	    _, _, err := models.GetOrLoad(ctx, d.ModelName, lookup)
//	    return err
//	})
//
//	failures := reconcile.RunIsolated(ctx, devices, 1, processDevice)
package reconcile
