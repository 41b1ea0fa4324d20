// Package modules wires the application with fx.
package modules

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/caronelabs/mediad/internal/config"
	"github.com/caronelabs/mediad/internal/db"
	"github.com/caronelabs/mediad/internal/logger"
	"github.com/caronelabs/mediad/internal/storage"
)

var InfraModule = fx.Module(
	"infra",
	fx.Provide(
		provideConfig,
		provideLogger,
		provideDBConn,
		provideStorageManager,
	),
)

// ---------------------------------------------------------------------------
// infrastructure providers
// ---------------------------------------------------------------------------

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideStorageManager(cfg config.Config) (*storage.Manager, error) {
	disks := make(map[string]storage.Disk, len(cfg.Storage.Disks))
	for name, diskCfg := range cfg.Storage.Disks {
		disk, err := storage.NewLocalDisk(diskCfg.Root)
		if err != nil {
			return nil, fmt.Errorf("disk %q: %w", name, err)
		}
		disks[name] = disk
	}
	return storage.NewManager(disks, cfg.Storage.DefaultDisk)
}
