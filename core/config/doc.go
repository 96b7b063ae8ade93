// Package config provides configuration management for fleet-sync.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// a .env file and environment variables. Defaults come from the `default`
// struct tags of every partial configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Log: Logging level and format
//   - Source: Mosyle endpoint and credentials
//   - Target: Snipe-IT endpoint, API token and request pacing
//   - Sync: Reference ids, user and checkout policy, per-class toggles
//   - Database: Optional MySQL run history
//   - Storage: Optional S3/MinIO report archive
//   - Server: Status API port and API key
//
// Environment variables map to nested keys by replacing dots with
// underscores, e.g. SYNC_IOS_CATEGORY_ID sets sync.ios.category_id.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
