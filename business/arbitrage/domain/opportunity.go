package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity is one profitable round trip detected on a tick. Amounts are
// in human units: quote (USDC) in for DEX->CEX, base (ETH) in for CEX->DEX.
type Opportunity struct {
	Timestamp time.Time
	Direction Direction

	// Swap leg on the pool.
	AmountIn       decimal.Decimal
	AmountOut      decimal.Decimal
	ExecutionPrice decimal.Decimal
	HitBoundary    bool
	CappedByMax    bool

	// Reference prices at evaluation time.
	CEXPrice decimal.Decimal // bid for DEX->CEX, ask for CEX->DEX
	CEXQty   decimal.Decimal
	DEXPrice decimal.Decimal // pool price before the swap

	GasCost decimal.Decimal // in quote units
	Pnl     decimal.Decimal // net, in quote units
}

// TickUpdate is the per-tick market picture for display surfaces.
type TickUpdate struct {
	Timestamp time.Time
	PoolPrice decimal.Decimal
	BidPrice  decimal.Decimal
	BidQty    decimal.Decimal
	AskPrice  decimal.Decimal
	AskQty    decimal.Decimal
	GasCost   decimal.Decimal
}
