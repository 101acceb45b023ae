package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Ethereum: EthereumConfig{HTTPURL: "http://localhost:8545"},
		Binance:  BinanceConfig{Symbol: "ETHUSDC"},
		Pool: PoolConfig{
			Address:      "0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8",
			SegmentDepth: 12,
		},
		Arbitrage: ArbitrageConfig{
			DexFeeRate:   0.003,
			CexFeeRate:   0.001,
			TickInterval: time.Second,
		},
		Gas: GasConfig{Units: 150000, Multiplier: 1.2},
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing_rpc_url", func(c *Config) { c.Ethereum.HTTPURL = "" }},
		{"bad_pool_address", func(c *Config) { c.Pool.Address = "not-an-address" }},
		{"missing_symbol", func(c *Config) { c.Binance.Symbol = "" }},
		{"negative_segment_depth", func(c *Config) { c.Pool.SegmentDepth = -1 }},
		{"dex_fee_one", func(c *Config) { c.Arbitrage.DexFeeRate = 1 }},
		{"cex_fee_negative", func(c *Config) { c.Arbitrage.CexFeeRate = -0.001 }},
		{"zero_tick_interval", func(c *Config) { c.Arbitrage.TickInterval = 0 }},
		{"zero_gas_units", func(c *Config) { c.Gas.Units = 0 }},
		// The multiplier is a buffer over the estimate: anything under 1,
		// zero included, must be rejected at load time.
		{"zero_gas_multiplier", func(c *Config) { c.Gas.Multiplier = 0 }},
		{"fractional_gas_multiplier", func(c *Config) { c.Gas.Multiplier = 0.9 }},
		{"negative_gas_multiplier", func(c *Config) { c.Gas.Multiplier = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
