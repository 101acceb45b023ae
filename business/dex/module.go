// Package dex implements the on-chain pool state bounded context.
package dex

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/arb-detector/business/dex/app"
	dexDI "github.com/fd1az/arb-detector/business/dex/di"
	"github.com/fd1az/arb-detector/business/dex/infra/uniswap"
	"github.com/fd1az/arb-detector/internal/config"
	"github.com/fd1az/arb-detector/internal/di"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/monolith"
)

// Module implements the dex bounded context.
type Module struct{}

// RegisterServices registers all dex services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PoolSource (Uniswap poller) - private dependency
	di.RegisterToken(c, dexDI.PoolSource, func(sr di.ServiceRegistry) app.PoolSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		pollerCfg := uniswap.PollerConfig{
			PoolAddress:    cfg.Pool.AddressHex(),
			Token0Decimals: cfg.Pool.Token0Decimals,
			Token1Decimals: cfg.Pool.Token1Decimals,
			TickSpacing:    cfg.Pool.TickSpacing,
			SegmentDepth:   cfg.Pool.SegmentDepth,
			PollInterval:   cfg.Ethereum.PollInterval,
		}

		poller, err := uniswap.NewPoller(ethClient, pollerCfg, log)
		if err != nil {
			panic("failed to create pool poller: " + err.Error())
		}
		return poller
	})

	// Register DexService (public - exposed to other modules)
	di.RegisterToken(c, dexDI.DexService, func(sr di.ServiceRegistry) *app.DexService {
		source := dexDI.GetPoolSource(sr)
		return app.NewDexService(source)
	})

	return nil
}

// Startup launches the pool poll loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	source := dexDI.GetPoolSource(mono.Services())
	if poller, ok := source.(*uniswap.Poller); ok {
		go poller.Start(ctx)
	}

	log.Info(ctx, "dex module started")
	return nil
}
