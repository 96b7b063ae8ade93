package cmd

import (
	"context"
	"errors"
	"fmt"

	"fleet-sync/core/config"
	"fleet-sync/core/database"
	"fleet-sync/core/logger"
	"fleet-sync/core/mosyle"
	"fleet-sync/core/snipeit"
	"fleet-sync/core/storage"
	"fleet-sync/feature/history"
	"fleet-sync/feature/integrity"
	"fleet-sync/feature/inventory"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds everything a command builds from configuration.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   storage.Client
	history *history.Service
}

// bootstrap loads configuration and the logger. When validate is set the
// configuration must be complete enough for a sync run.
func bootstrap(validate bool) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	return &runtime{cfg: cfg, logger: logg}, nil
}

// openHistory connects the optional history stores. Failures are warnings.
func (r *runtime) openHistory(ctx context.Context) {
	var (
		repo    *history.Repository
		archive *history.Archiver
	)

	db, err := database.Connect(ctx, r.cfg.Database)
	switch {
	case errors.Is(err, database.ErrDisabled):
	case err != nil:
		r.logger.Warn("Optional database connection failed", zap.Error(err))
	default:
		repo = history.NewRepository(db)
		if err := repo.Migrate(); err != nil {
			r.logger.Warn("Failed to migrate history tables", zap.Error(err))
			repo = nil
		} else {
			r.db = db
			r.logger.Info("Connected to history database", zap.String("database", r.cfg.Database.Name))
		}
	}

	if r.cfg.Storage.Enabled {
		store, err := storage.NewClient(r.cfg.Storage)
		if err != nil {
			r.logger.Warn("Failed to create storage client", zap.Error(err))
		} else if err := storage.EnsureBucket(ctx, store, r.cfg.Storage.Bucket, r.cfg.Storage.Region); err != nil {
			r.logger.Warn("Report archive unavailable", zap.Error(err))
		} else {
			r.store = store
			archive = history.NewArchiver(store, r.cfg.Storage.Bucket, r.cfg.Storage.Prefix)
		}
	}

	r.history = history.NewService(repo, archive, r.logger)
}

func (r *runtime) close() {
	if r.db != nil {
		_ = database.Close(r.db)
	}
	_ = r.logger.Sync()
}

func (r *runtime) source() *mosyle.Client {
	return mosyle.NewClient(r.cfg.Source)
}

func (r *runtime) target() *snipeit.Client {
	return snipeit.NewClient(r.cfg.Target)
}

// integrityDeps collects the preflight dependencies that are configured.
func (r *runtime) integrityDeps(source *mosyle.Client, target *snipeit.Client) integrity.Deps {
	return integrity.Deps{
		Target:     target,
		Source:     source,
		DB:         r.db,
		Storage:    r.store,
		Bucket:     r.cfg.Storage.Bucket,
		Region:     r.cfg.Storage.Region,
		References: integrity.References(r.cfg.Sync),
	}
}

// engineOptions maps the sync configuration onto the engine.
func engineOptions(s config.SyncConfig) inventory.Options {
	var classes []inventory.ClassProfile
	if s.IOS.Enabled {
		classes = append(classes, inventory.IOSProfile(s.IOS.CategoryID))
	}
	if s.Mac.Enabled {
		classes = append(classes, inventory.MacProfile(s.Mac.CategoryID))
	}
	if s.TVOS.Enabled {
		classes = append(classes, inventory.TVOSProfile(s.TVOS.CategoryID))
	}

	return inventory.Options{
		ManufacturerID:  s.ManufacturerID,
		SupplierID:      s.SupplierID,
		DefaultStatusID: s.DefaultStatusID,
		CreateUsers:     s.CreateUsers,
		CheckoutDevices: s.CheckoutDevices,
		RateLimit:       s.RateLimit,
		Workers:         s.Workers,
		Classes:         classes,
	}
}
