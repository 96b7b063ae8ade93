// Package inventory implements the reconciliation engine that keeps the
// asset-tracking target in line with the device-management source.
//
// # Components
//
//   - ModelResolver: model name to target model id, created on first sight and
//     memoized for one pipeline execution.
//   - UserResolver: owner email to target user id, optionally creating the user.
//     Never cached.
//   - AssetReconciler: device to target asset, created when absent and updated
//     only when asset tag, notes or name differ.
//   - CheckoutCoordinator: converges assignment to the device owner, always
//     checking in before checking out.
//   - Pipeline: one device class. Phase 1 warms the model cache and must fully
//     succeed; phase 2 reconciles each device in its own failure boundary.
//   - Orchestrator: runs the enabled class profiles in order and returns a
//     reconcile.RunReport.
//
// # Failure Semantics
//
// Model warm-up failures abort the class. A failed user creation wraps
// ErrRunAborted and stops the run. Every other error during phase 2 is recorded
// against the device and the pipeline moves on.
//
// # Usage Example
//
//	opts := inventory.Options{
//	    ManufacturerID:  1,
//	    SupplierID:      1,
//	    DefaultStatusID: 2,
//	    CheckoutDevices: true,
//	    RateLimit:       time.Second,
//	    Classes:         []inventory.ClassProfile{inventory.IOSProfile(3)},
//	}
//	pipeline := inventory.NewPipeline(mosyleClient, snipeClient, opts, logger)
//	report, err := inventory.NewOrchestrator(pipeline, logger).Run(ctx)
package inventory
