package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Service struct {
		Name       string `yaml:"name"`
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`
	DB string `yaml:"db_dsn"`

	Strategy   Strategy       `yaml:"strategy"`
	Timeframes map[string]int `yaml:"timeframes"` // минут в свече по имени ТФ
	Backtest   Backtest       `yaml:"backtest"`
	Data       Data           `yaml:"data"`
	Scan       Scan           `yaml:"scan"`
}

type Strategy struct {
	LiquidityLookback  int     `yaml:"liquidity_lookback"`
	MinRR              float64 `yaml:"min_rr"`
	ImbalanceThreshold float64 `yaml:"imbalance_threshold"`
	StopBuffer         float64 `yaml:"stop_buffer"` // доля, 0.0002 = 0.02%
	SweepScanCandles   int     `yaml:"sweep_scan_candles"`
	ContextScanCandles int     `yaml:"context_scan_candles"`
	HTF                string  `yaml:"htf"`
	LTF                string  `yaml:"ltf"`
	SessionFilter      struct {
		Enabled   bool `yaml:"enabled"`
		OpenHour  int  `yaml:"open_hour"`
		CloseHour int  `yaml:"close_hour"`
	} `yaml:"session_filter"`
}

type Backtest struct {
	Asset          string        `yaml:"asset"`
	Start          string        `yaml:"start"` // 2006-01-02 или RFC3339
	End            string        `yaml:"end"`
	InitialCapital float64       `yaml:"initial_capital"`
	RiskPct        float64       `yaml:"risk_pct"`   // 1.0 => 1% от баланса
	RiskFixed      float64       `yaml:"risk_fixed"` // в валюте счёта, если risk_pct не задан
	PipSize        float64       `yaml:"pip_size"`   // 0: по активу (JPY 0.01, иначе 0.0001)
	PipValuePerLot float64       `yaml:"pip_value_per_lot"`
	MinVolume      float64       `yaml:"min_volume"`
	DailyCheckTime string        `yaml:"daily_check_time"` // HH:MM UTC
	LookbackWindow time.Duration `yaml:"lookback_window"`
	FillMode       string        `yaml:"fill_mode"` // anchor | shift
	OutputDir      string        `yaml:"output_dir"`

	// заполняются в Validate
	StartAt    time.Time     `yaml:"-"`
	EndAt      time.Time     `yaml:"-"`
	DailyCheck time.Duration `yaml:"-"`
}

type Data struct {
	Source string `yaml:"source"` // csv | postgres
	CSVDir string `yaml:"csv_dir"`
}

type Scan struct {
	Assets         []string      `yaml:"assets"`
	Interval       time.Duration `yaml:"interval"`
	HistoryCandles int           `yaml:"history_candles"`
}

// Default — значения, поверх которых декодируется yaml.
func Default() Config {
	c := Config{}
	c.Service.Name = getenvDefault("SERVICE_NAME", "sweep_bot")
	c.Service.HealthAddr = ":8080"
	c.Log.Level = getenvDefault("LOG_LEVEL", "info")
	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831

	c.Strategy = Strategy{
		LiquidityLookback:  10,
		MinRR:              1.5,
		ImbalanceThreshold: 0,
		StopBuffer:         0.0002,
		SweepScanCandles:   0,
		ContextScanCandles: 24,
		HTF:                "1h",
		LTF:                "15m",
	}
	c.Strategy.SessionFilter.OpenHour = 8
	c.Strategy.SessionFilter.CloseHour = 17

	c.Timeframes = map[string]int{"1h": 60, "15m": 15}

	c.Backtest = Backtest{
		InitialCapital: 10000,
		RiskPct:        1.0,
		PipValuePerLot: 10,
		MinVolume:      0.01,
		DailyCheckTime: "13:00",
		LookbackWindow: 5 * 24 * time.Hour,
		FillMode:       "anchor",
		OutputDir:      "out",
	}
	c.Data = Data{Source: "csv", CSVDir: "data"}
	c.Scan = Scan{
		Interval:       durationFromEnv("SCAN_INTERVAL", "15m"),
		HistoryCandles: intFromEnv("SCAN_HISTORY_CANDLES", 500),
	}
	return c
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := getenvDefault(configFilePathENV, "values_local.yaml")
	return Load(filepath.Join(getenvDefault(configDirENV, "configs"), configFileName))
}

// Load дефолты -> yaml -> env.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()

	config := Default()
	// yaml.v2 мёржит карты, а не заменяет их
	config.Timeframes = nil
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decode config file")
	}
	if len(config.Timeframes) == 0 {
		config.Timeframes = Default().Timeframes
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	applyEnvOverrides(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
