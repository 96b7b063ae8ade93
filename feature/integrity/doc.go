// Package integrity provides preflight checks for a sync run.
//
// Where the 'inventory' package reconciles devices, this package validates
// that the systems around it are usable before a run starts.
//
// # Checks Provided
//
//   - Target: Pings Snipe-IT and verifies the configured manufacturer, supplier,
//     default status and enabled class category ids exist.
//   - Source: Logs in to Mosyle with the configured credentials.
//   - Schema: Verifies the run history tables and columns match the GORM models.
//   - Archive: Checks that the report bucket exists (supports ?fix=true).
//
// A check whose dependency is not configured reports "skipped".
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks (503 when any fails).
//   - GET /integrity/target : Runs the target check.
//   - GET /integrity/source : Runs the source check.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/archive : Runs the archive check (supports ?fix=true).
package integrity
