// Package arbitrage implements the arbitrage bounded context for opportunity detection.
package arbitrage

import (
	"context"

	"github.com/fd1az/arb-detector/business/arbitrage/app"
	arbDI "github.com/fd1az/arb-detector/business/arbitrage/di"
	"github.com/fd1az/arb-detector/business/arbitrage/infra"
	blockchainDI "github.com/fd1az/arb-detector/business/blockchain/di"
	dexDI "github.com/fd1az/arb-detector/business/dex/di"
	pricingDI "github.com/fd1az/arb-detector/business/pricing/di"
	"github.com/fd1az/arb-detector/internal/config"
	"github.com/fd1az/arb-detector/internal/di"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Evaluator - private dependency
	di.RegisterToken(c, arbDI.Evaluator, func(sr di.ServiceRegistry) *app.Evaluator {
		cfg := sr.Get("config").(*config.Config)

		evaluator, err := app.NewEvaluator(app.EvaluatorConfig{
			DexFeeRate: cfg.Arbitrage.DexFeeRateDecimal(),
			CexFeeRate: cfg.Arbitrage.CexFeeRateDecimal(),
			MinPnl:     cfg.Arbitrage.MinPnlDecimal(),
		})
		if err != nil {
			panic("failed to create evaluator: " + err.Error())
		}
		return evaluator
	})

	// Register Reporter - private dependency, surface chosen by run mode
	di.RegisterToken(c, arbDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)

		if cfg.Arbitrage.TUIMode {
			return infra.NewTUIReporter(cfg.Binance.Symbol)
		}
		return infra.NewConsoleReporter()
	})

	// Register Detector (public - exposed to other modules)
	di.RegisterToken(c, arbDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		detector, err := app.NewDetector(
			dexDI.GetDexService(sr),
			pricingDI.GetPricingService(sr),
			blockchainDI.GetBlockchainService(sr),
			arbDI.GetEvaluator(sr),
			arbDI.GetReporter(sr),
			app.DetectorConfig{TickInterval: cfg.Arbitrage.TickInterval},
			log,
		)
		if err != nil {
			panic("failed to create detector: " + err.Error())
		}
		return detector
	})

	return nil
}

// Startup readies the arbitrage module. The detection loop itself is
// started by main, which owns the choice of output surface.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	// Force construction so wiring errors surface at startup, not on
	// the first tick.
	_ = arbDI.GetDetector(mono.Services())

	mono.Logger().Info(ctx, "arbitrage module started")
	return nil
}
