// Package history records finished sync runs and serves them over HTTP.
//
// Two optional stores back it:
//
//   - Repository: MySQL via GORM. One sync_runs row per run and one
//     device_outcomes row per device, written in a single transaction.
//   - Archiver: the full JSON run report in object storage at
//     <prefix>/<run-id>.json.
//
// Recording never fails a run. Store errors are logged as warnings.
//
// # HTTP Endpoints
//
//   - GET /runs : Recent runs (supports ?limit=).
//   - GET /runs/archive : Run ids present in the archive.
//   - GET /runs/:id : One run with device outcomes.
//   - GET /runs/:id/report : The archived JSON report.
package history
