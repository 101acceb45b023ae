// Package pricing implements the CEX market data bounded context.
package pricing

import (
	"context"
	"time"

	"github.com/fd1az/arb-detector/business/pricing/app"
	pricingDI "github.com/fd1az/arb-detector/business/pricing/di"
	"github.com/fd1az/arb-detector/business/pricing/infra/binance"
	"github.com/fd1az/arb-detector/internal/config"
	"github.com/fd1az/arb-detector/internal/di"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register CEXProvider (Binance) - private dependency
	di.RegisterToken(c, pricingDI.CEXProvider, func(sr di.ServiceRegistry) app.CEXProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		providerCfg := binance.ProviderConfig{
			WebSocketURL:   cfg.Binance.WebSocketURL,
			HTTPURL:        cfg.Binance.RESTURL,
			Symbol:         cfg.Binance.Symbol,
			DepthLevels:    cfg.Binance.DepthLevels,
			DepthSpeedMs:   cfg.Binance.DepthSpeedMs,
			StaleTimeout:   cfg.Binance.StaleTimeout,
			EnableFallback: true,
		}

		provider, err := binance.NewProvider(providerCfg, log)
		if err != nil {
			panic("failed to create binance provider: " + err.Error())
		}
		return provider
	})

	// Register PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		cex := pricingDI.GetCEXProvider(sr)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPricingService(cex, log)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Connect Binance provider. A failed dial is not fatal: the REST
	// fallback covers reads while a background loop keeps retrying.
	cex := pricingDI.GetCEXProvider(mono.Services())

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := cex.Connect(connectCtx); err != nil {
		log.Warn(ctx, "binance connection failed, will retry in background", "error", err)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
					if err := cex.Connect(ctx); err != nil {
						log.Warn(ctx, "binance retry failed", "error", err)
					} else {
						log.Info(ctx, "binance connected successfully")
						return
					}
				}
			}
		}()
	}

	log.Info(ctx, "pricing module started")
	return nil
}
