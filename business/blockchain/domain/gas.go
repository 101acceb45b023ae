// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/internal/apperror"
)

var ethPerGwei = decimal.New(1, -9) // 1 gwei = 1e-9 ETH

// GasPrice is a point-in-time gas price observation.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       wei,
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei as a float for metrics and display.
func (p *GasPrice) Gwei() float64 {
	f, _ := p.GweiDecimal().Float64()
	return f
}

// GweiDecimal returns the price in gwei without float conversion.
func (p *GasPrice) GweiDecimal() decimal.Decimal {
	if p == nil || p.Wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.Wei, -9)
}

// CostInQuote converts a gas price into the quote currency of a trade:
// gwei x 1e-9 gives ETH per gas unit, times units and a headroom
// multiplier, times the quote price of ETH.
func CostInQuote(gasPriceGwei decimal.Decimal, gasUnits uint64, multiplier, quotePerBase decimal.Decimal) (decimal.Decimal, error) {
	if gasPriceGwei.Sign() < 0 {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidGasSettings, "negative gas price")
	}
	if multiplier.Sign() <= 0 {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidGasSettings, "non-positive gas multiplier")
	}
	if quotePerBase.Sign() < 0 {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidGasSettings, "negative quote price")
	}

	ethSpent := gasPriceGwei.
		Mul(ethPerGwei).
		Mul(decimal.NewFromUint64(gasUnits)).
		Mul(multiplier)

	return ethSpent.Mul(quotePerBase), nil
}
