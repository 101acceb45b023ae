// Package blockchain implements the blockchain bounded context for Ethereum integration.
package blockchain

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/business/blockchain/app"
	blockchainDI "github.com/fd1az/arb-detector/business/blockchain/di"
	"github.com/fd1az/arb-detector/business/blockchain/infra/ethereum"
	"github.com/fd1az/arb-detector/internal/config"
	"github.com/fd1az/arb-detector/internal/di"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register GasOracle (private - internal dependency)
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		oracleCfg := ethereum.DefaultGasOracleConfig(cfg.Ethereum.HTTPURL)
		if cfg.Gas.MaxPriceGwei > 0 {
			wei := decimal.NewFromFloat(cfg.Gas.MaxPriceGwei).Shift(9)
			oracleCfg.MaxGasPrice = new(big.Int)
			oracleCfg.MaxGasPrice.SetString(wei.Truncate(0).String(), 10)
		}

		oracle, err := ethereum.NewGasOracle(oracleCfg, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		cfg := sr.Get("config").(*config.Config)
		oracle := blockchainDI.GetGasOracle(sr)
		settings := app.GasSettings{
			Units:      cfg.Gas.Units,
			Multiplier: cfg.Gas.MultiplierDecimal(),
		}
		return app.NewBlockchainService(oracle, settings)
	})

	return nil
}

// Startup initializes the blockchain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	oracle := blockchainDI.GetGasOracle(mono.Services())

	// Connect gas oracle (type assertion to access Connect method)
	if connector, ok := oracle.(interface{ Connect(context.Context) error }); ok {
		if err := connector.Connect(ctx); err != nil {
			log.Error(ctx, "failed to connect gas oracle", "error", err)
			// Evaluation falls back to zero gas until it comes up
		}
	}

	log.Info(ctx, "blockchain module started")
	return nil
}
