package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"sweep_bot/internal/modules/config"
	"sweep_bot/pkg/db"
	"sweep_bot/pkg/logger"
)

// NewTxManager возвращает nil, если db_dsn не задан; CSV-прогоны не ходят в базу.
func NewTxManager(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
	if cfg.DB == "" {
		logger.Info("[DB] db_dsn is empty, postgres disabled")
		return nil, nil
	}

	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN: cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poolMaster: %w", err)
	}

	err = poolMaster.Ping(ctx)
	if err != nil {
		poolMaster.Close()
		return nil, err
	}

	m := db.NewPgTxManager(poolMaster)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
	return m, nil
}

// Module регистрируем как fx-провайдер.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			NewTxManager,
		),
	)
}
