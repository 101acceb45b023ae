package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/internal/apperror"
)

// PriceSegment is one contiguous liquidity range expressed in Q96 sqrt-prices.
// For segments below the current price StartX96 > EndX96; above, StartX96 <
// EndX96. Liquidity may be zero: the price crosses such a range without
// exchanging amounts.
type PriceSegment struct {
	StartX96  *big.Int
	EndX96    *big.Int
	Liquidity *big.Int
}

// PoolState is an immutable snapshot of a concentrated-liquidity pool.
// Producers build and validate it once; consumers never mutate it.
type PoolState struct {
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int

	Token0Decimals uint8
	Token1Decimals uint8

	// Boundaries of the currently active liquidity range. Nil means the
	// snapshot carries no range information and the current liquidity is
	// treated as unbounded.
	LowerBoundX96 *big.Int
	UpperBoundX96 *big.Int

	// Adjacent ranges below (traversed on Token0->Token1) and above
	// (Token1->Token0) the current one, nearest first.
	SegmentsDown []PriceSegment
	SegmentsUp   []PriceSegment

	ObservedAt time.Time
}

// HumanPrice returns the snapshot's price in quote-per-base terms.
func (p *PoolState) HumanPrice() (decimal.Decimal, error) {
	return HumanPriceFromSqrt(p.SqrtPriceX96, p.Token0Decimals, p.Token1Decimals)
}

// Validate checks the structural invariants of the snapshot. Solvers call it
// before doing any arithmetic so that a malformed snapshot fails loudly
// instead of producing silently wrong amounts.
func (p *PoolState) Validate() error {
	if p == nil {
		return apperror.Validation(apperror.CodeInvalidPoolState, "nil snapshot")
	}
	if p.SqrtPriceX96 == nil || p.SqrtPriceX96.Sign() <= 0 {
		return apperror.Validation(apperror.CodeInvalidPoolState, "non-positive sqrt price")
	}
	if p.Liquidity == nil || p.Liquidity.Sign() <= 0 {
		return apperror.Validation(apperror.CodeInvalidLiquidity, "non-positive current liquidity")
	}

	if (p.LowerBoundX96 == nil) != (p.UpperBoundX96 == nil) {
		return apperror.Validation(apperror.CodeInvalidPoolState, "partial range bounds")
	}
	if p.LowerBoundX96 != nil {
		if p.LowerBoundX96.Sign() <= 0 || p.LowerBoundX96.Cmp(p.UpperBoundX96) >= 0 {
			return apperror.Validation(apperror.CodeInvalidPoolState, "inverted range bounds")
		}
		if p.SqrtPriceX96.Cmp(p.LowerBoundX96) < 0 || p.SqrtPriceX96.Cmp(p.UpperBoundX96) > 0 {
			return apperror.Validation(apperror.CodeInvalidPoolState, "sqrt price outside range bounds")
		}
	}

	if err := validateSegments(p.SegmentsDown, p.LowerBoundX96, true); err != nil {
		return err
	}
	if err := validateSegments(p.SegmentsUp, p.UpperBoundX96, false); err != nil {
		return err
	}

	return nil
}

// validateSegments enforces contiguity, monotonic direction, and non-negative
// liquidity. The first segment must start exactly where the current range
// ends.
func validateSegments(segments []PriceSegment, rangeEnd *big.Int, descending bool) error {
	if len(segments) == 0 {
		return nil
	}
	if rangeEnd == nil {
		return apperror.Validation(apperror.CodeInvalidSegments, "segments without range bounds")
	}

	prevEnd := rangeEnd
	for _, seg := range segments {
		if seg.StartX96 == nil || seg.EndX96 == nil || seg.Liquidity == nil {
			return apperror.Validation(apperror.CodeInvalidSegments, "nil segment field")
		}
		if seg.StartX96.Sign() <= 0 || seg.EndX96.Sign() <= 0 {
			return apperror.Validation(apperror.CodeInvalidSegments, "non-positive segment boundary")
		}
		if seg.Liquidity.Sign() < 0 {
			return apperror.Validation(apperror.CodeInvalidSegments, "negative segment liquidity")
		}
		if seg.StartX96.Cmp(prevEnd) != 0 {
			return apperror.Validation(apperror.CodeInvalidSegments, "non-contiguous segments")
		}

		cmp := seg.EndX96.Cmp(seg.StartX96)
		if descending && cmp >= 0 {
			return apperror.Validation(apperror.CodeInvalidSegments, "descending segment not decreasing")
		}
		if !descending && cmp <= 0 {
			return apperror.Validation(apperror.CodeInvalidSegments, "ascending segment not increasing")
		}

		prevEnd = seg.EndX96
	}

	return nil
}
