package market_data

import (
	"fmt"

	"go.uber.org/fx"

	"sweep_bot/internal/modules/config"
	"sweep_bot/internal/modules/market_data/service"
	"sweep_bot/pkg/db"
	"sweep_bot/pkg/logger"
)

// NewProvider выбирает источник свечей по data.source.
func NewProvider(cfg *config.Config, tx *db.PgTxManager) (service.Provider, error) {
	switch cfg.Data.Source {
	case "", "csv":
		logger.Info("[DATA] csv provider, dir=%s", cfg.Data.CSVDir)
		return service.NewCSVProvider(cfg.Data.CSVDir), nil
	case "postgres":
		if tx == nil {
			return nil, fmt.Errorf("data.source=postgres requires db_dsn")
		}
		logger.Info("[DATA] postgres provider")
		return service.NewPgProvider(tx), nil
	default:
		return nil, fmt.Errorf("unknown data.source %q", cfg.Data.Source)
	}
}

// Module регистрируем как fx-провайдер.
func Module() fx.Option {
	return fx.Module("market_data",
		fx.Provide(
			NewProvider,
		),
	)
}
