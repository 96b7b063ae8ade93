// Package database handles the run history connection and schema inspection.
//
// It wraps GORM with the MySQL driver. History is optional: Connect returns
// ErrDisabled when database.enabled is false, and any connection error should
// be logged as a warning by the caller rather than stopping a sync.
//
// # Schema Inspection
//
// MissingTables and MissingColumns back the preflight check that verifies the
// history schema is present before a run writes to it.
//
// # Usage
//
//	db, err := database.Connect(ctx, cfg.Database)
//	if err != nil {
//	    logger.Warn("History disabled", zap.Error(err))
//	}
//
//	missing, err := database.MissingTables(db, "sync_runs", "device_outcomes")
package database
