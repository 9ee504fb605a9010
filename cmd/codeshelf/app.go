package main

import (
	"context"
	"fmt"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/config"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/database"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/logging"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
	"github.com/codeshelf/Codeshelf-sub002/internal/receipt"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	configPath string
}

// app is the state every command starts from: configuration and logger.
type app struct {
	cfg *config.Config
	log *logging.Logger
}

// loadApp reads the configuration and builds the logger from it.
func loadApp(opts *globalOptions) (*app, error) {
	path := getConfigPath(opts.configPath)
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	if path == "" {
		log.Debug("no config file, using defaults")
	} else {
		log.Debug("configuration loaded", "path", path)
	}
	return &app{cfg: cfg, log: log}, nil
}

// openDatabase opens the facility database and applies pending migrations.
// The caller closes it.
func (a *app) openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	a.log.Debug("database ready", "path", db.Path())
	return db, nil
}

// newStore returns a location store persisted in db.
func (a *app) newStore(db *database.DB) *location.Store {
	store := location.NewStore(location.NewSQLiteRepository(db.DB), a.cfg.Facility.Network)
	store.SetLogger(a.log.Component("location"))
	return store
}

// importLimits converts the import section of the configuration.
func (a *app) importLimits() aisleimport.Limits {
	return aisleimport.Limits{
		MaxSlotsPerTier:    a.cfg.Import.MaxSlotsPerTier,
		MaxLedsPerTier:     a.cfg.Import.MaxLedsPerTier,
		DefaultBayLengthCm: a.cfg.Import.DefaultBayLengthCm,
		DefaultSlotCount:   a.cfg.Import.DefaultSlotCount,
	}
}

// newImporter returns an import service over the store in db that keeps a
// receipt of every run.
func (a *app) newImporter(db *database.DB, store *location.Store) *aisleimport.Service {
	svc := aisleimport.NewService(store, a.importLimits())
	svc.SetLogger(a.log.Component("aisleimport"))
	svc.AddRecorder(&receiptRecorder{repo: receipt.NewSQLiteRepository(db.DB), log: a.log})
	return svc
}
