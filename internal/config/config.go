// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Gas       GasConfig       `mapstructure:"gas"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL      string        `mapstructure:"http_url"`
	ChainID      uint64        `mapstructure:"chain_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// BinanceConfig holds Binance API configuration.
type BinanceConfig struct {
	WebSocketURL string        `mapstructure:"websocket_url"` // wss://stream.binance.com:9443 or wss://stream.binance.us:9443 for US
	RESTURL      string        `mapstructure:"rest_url"`
	Symbol       string        `mapstructure:"symbol"`
	DepthLevels  int           `mapstructure:"depth_levels"`
	DepthSpeedMs int           `mapstructure:"depth_speed_ms"`
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
}

// PoolConfig identifies the Uniswap V3 pool under watch.
type PoolConfig struct {
	Address        string `mapstructure:"address"`
	Token0Decimals uint8  `mapstructure:"token0_decimals"`
	Token1Decimals uint8  `mapstructure:"token1_decimals"`
	TickSpacing    int    `mapstructure:"tick_spacing"`
	SegmentDepth   int    `mapstructure:"segment_depth"` // ticks fetched per side of the current price
}

// AddressHex returns the pool address as common.Address.
func (c *PoolConfig) AddressHex() common.Address {
	return common.HexToAddress(c.Address)
}

// ArbitrageConfig holds detection thresholds and fee rates.
type ArbitrageConfig struct {
	MinPnl       float64       `mapstructure:"min_pnl"`      // quote token units
	DexFeeRate   float64       `mapstructure:"dex_fee_rate"` // e.g. 0.003
	CexFeeRate   float64       `mapstructure:"cex_fee_rate"` // e.g. 0.001
	TickInterval time.Duration `mapstructure:"tick_interval"`
	TUIMode      bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// MinPnlDecimal returns the PnL threshold as decimal.Decimal.
func (c *ArbitrageConfig) MinPnlDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinPnl)
}

// DexFeeRateDecimal returns the DEX fee rate as decimal.Decimal.
func (c *ArbitrageConfig) DexFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DexFeeRate)
}

// CexFeeRateDecimal returns the CEX fee rate as decimal.Decimal.
func (c *ArbitrageConfig) CexFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.CexFeeRate)
}

// GasConfig holds the swap gas cost model parameters.
type GasConfig struct {
	Units        uint64  `mapstructure:"units"`      // gas units per swap
	Multiplier   float64 `mapstructure:"multiplier"` // safety multiplier on the estimate
	MaxPriceGwei float64 `mapstructure:"max_price_gwei"`
}

// MultiplierDecimal returns the gas multiplier as decimal.Decimal.
func (c *GasConfig) MultiplierDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Multiplier)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "ARB_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Binance
	v.BindEnv("binance.websocket_url", "ARB_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("binance.rest_url", "ARB_BINANCE_REST_URL", "BINANCE_REST_URL")
	v.BindEnv("binance.symbol", "ARB_BINANCE_SYMBOL", "BINANCE_SYMBOL")

	// Pool
	v.BindEnv("pool.address", "ARB_POOL_ADDRESS", "POOL_ADDRESS")
	v.BindEnv("pool.token0_decimals", "ARB_POOL_TOKEN0_DECIMALS")
	v.BindEnv("pool.token1_decimals", "ARB_POOL_TOKEN1_DECIMALS")

	// Arbitrage
	v.BindEnv("arbitrage.min_pnl", "ARB_MIN_PNL")
	v.BindEnv("arbitrage.dex_fee_rate", "ARB_DEX_FEE_RATE")
	v.BindEnv("arbitrage.cex_fee_rate", "ARB_CEX_FEE_RATE")

	// Gas
	v.BindEnv("gas.units", "ARB_GAS_UNITS")
	v.BindEnv("gas.multiplier", "ARB_GAS_MULTIPLIER")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arb-detector")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.poll_interval", "3s")

	// Binance defaults
	v.SetDefault("binance.websocket_url", "wss://stream.binance.com:9443")
	v.SetDefault("binance.rest_url", "https://api.binance.com")
	v.SetDefault("binance.symbol", "ETHUSDC")
	v.SetDefault("binance.depth_levels", 10)
	v.SetDefault("binance.depth_speed_ms", 100)
	v.SetDefault("binance.stale_timeout", "5s")

	// Pool defaults: USDC/WETH 0.3% mainnet pool
	v.SetDefault("pool.address", "0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")
	v.SetDefault("pool.token0_decimals", 6)
	v.SetDefault("pool.token1_decimals", 18)
	v.SetDefault("pool.tick_spacing", 60)
	v.SetDefault("pool.segment_depth", 12)

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_pnl", 0)
	v.SetDefault("arbitrage.dex_fee_rate", 0.003)
	v.SetDefault("arbitrage.cex_fee_rate", 0.001)
	v.SetDefault("arbitrage.tick_interval", "1s")

	// Gas defaults
	v.SetDefault("gas.units", 150000)
	v.SetDefault("gas.multiplier", 1.2)
	v.SetDefault("gas.max_price_gwei", 500)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arb-detector")
	v.SetDefault("telemetry.trace_provider", "EMPTY_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if !common.IsHexAddress(c.Pool.Address) {
		return fmt.Errorf("invalid pool.address: %s", c.Pool.Address)
	}
	if c.Binance.Symbol == "" {
		return fmt.Errorf("binance.symbol is required")
	}
	if c.Pool.SegmentDepth < 0 {
		return fmt.Errorf("pool.segment_depth must be >= 0")
	}
	if c.Arbitrage.DexFeeRate < 0 || c.Arbitrage.DexFeeRate >= 1 {
		return fmt.Errorf("arbitrage.dex_fee_rate must be in [0, 1): %v", c.Arbitrage.DexFeeRate)
	}
	if c.Arbitrage.CexFeeRate < 0 || c.Arbitrage.CexFeeRate >= 1 {
		return fmt.Errorf("arbitrage.cex_fee_rate must be in [0, 1): %v", c.Arbitrage.CexFeeRate)
	}
	if c.Arbitrage.TickInterval <= 0 {
		return fmt.Errorf("arbitrage.tick_interval must be positive")
	}
	if c.Gas.Units == 0 {
		return fmt.Errorf("gas.units must be positive")
	}
	// The multiplier is a safety buffer over the estimated cost; below 1
	// it would underprice gas.
	if c.Gas.Multiplier < 1 {
		return fmt.Errorf("gas.multiplier must be >= 1: %v", c.Gas.Multiplier)
	}
	return nil
}
