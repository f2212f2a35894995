package cmd

import (
	"context"
	"fmt"

	coreconfig "github.com/AzielCF/az-settings/core/config"
	coreDB "github.com/AzielCF/az-settings/core/database"
	"github.com/AzielCF/az-settings/core/settings/application"
	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/AzielCF/az-settings/core/settings/infrastructure"
	"github.com/AzielCF/az-settings/infrastructure/valkey"
	"github.com/AzielCF/az-settings/pkg/activitylog"
	"github.com/sirupsen/logrus"
)

// appRuntime is everything a command needs once configuration is loaded.
type appRuntime struct {
	cfg      *coreconfig.Config
	repo     domain.ISettingsRepository
	store    *application.SettingsStore
	activity *activitylog.Log
	closers  []func()
}

func newRepository(cfg *coreconfig.Config) (domain.ISettingsRepository, []func(), error) {
	switch cfg.Storage.Backend {
	case coreconfig.BackendMemory:
		return infrastructure.NewSettingsMemoryRepository(), nil, nil

	case coreconfig.BackendGorm:
		db, err := coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return infrastructure.NewSettingsGormRepository(db), []func(){closeDB}, nil

	case coreconfig.BackendSQL:
		driver, dsn, err := coreDB.SQLDriver(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		db, err := infrastructure.OpenSQL(driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := infrastructure.NewSettingsSQLRepository(db)
		return repo, []func(){func() { _ = repo.Close() }}, nil

	case coreconfig.BackendValkey:
		client, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return infrastructure.NewSettingsValkeyRepository(client), []func(){client.Close}, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
}

func bootstrap(ctx context.Context) (*appRuntime, error) {
	cfg := coreconfig.Global
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	repo, closers, err := newRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	logrus.Infof("[STORAGE] Using %s backend", cfg.Storage.Backend)

	activity := activitylog.New(200, 0)
	store := application.NewSettingsStore(ctx, repo,
		application.WithStorageKey(cfg.Storage.Key),
		application.WithPersistTimeout(cfg.Storage.PersistTimeout),
		application.WithApplicationInfo(cfg.ApplicationInfo(nowFunc())),
		application.WithActivityRecorder(activity),
	)

	return &appRuntime{
		cfg:      cfg,
		repo:     repo,
		store:    store,
		activity: activity,
		closers:  closers,
	}, nil
}

// Stop releases storage connections.
func (rt *appRuntime) Stop() {
	logrus.Info("[APP] Stopping application...")
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	logrus.Info("[APP] Application stopped cleanly.")
}
