// Package di contains dependency injection tokens for the dex context.
package di

import (
	"github.com/fd1az/arb-detector/business/dex/app"
	"github.com/fd1az/arb-detector/internal/di"
)

// Public service tokens - exposed to other modules
var (
	DexService = di.NewToken[*app.DexService]("dex.DexService")
)

// Private dependency tokens - internal to dex module
var (
	PoolSource = di.NewToken[app.PoolSource]("dex:poolSource")
)

// Helper functions for type-safe access
func GetDexService(c di.ServiceRegistry) *app.DexService {
	return di.GetToken(c, DexService)
}

func GetPoolSource(c di.ServiceRegistry) app.PoolSource {
	return di.GetToken(c, PoolSource)
}
