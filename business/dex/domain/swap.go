package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/internal/apperror"
)

const (
	// sqrtScale is the fractional-digit scale for every division in the
	// solver. Sqrt ratios carry at most ~40 significant digits, so 50
	// fractional digits keep amount errors below one raw token unit.
	sqrtScale = 50

	// maxTraversedSegments bounds multi-segment traversal regardless of
	// what the snapshot producer delivered.
	maxTraversedSegments = 64

	// executionPriceScale is the display scale of the realized price.
	executionPriceScale = 18
)

var one = decimal.NewFromInt(1)

// SwapResult describes a solved swap. Amounts are in human-decimal units of
// the respective token. Exactly one of "target reached" (both flags false
// with non-zero amounts), HitBoundary, CappedByMax, or "infeasible" (zero
// amounts, both flags false) describes how the solve terminated.
type SwapResult struct {
	AmountIn       decimal.Decimal
	AmountOut      decimal.Decimal
	ExecutionPrice decimal.Decimal // realized average price, quote per base
	HitBoundary    bool
	CappedByMax    bool
}

// liquidityRange is one traversal step: the active range or one segment,
// expressed as sqrt ratios in travel order.
type liquidityRange struct {
	start     decimal.Decimal
	end       decimal.Decimal
	liquidity decimal.Decimal
	bounded   bool // end is a real boundary rather than the unbounded default
}

// Solve computes the swap that moves the pool from its current price to
// targetPrice within the currently active liquidity range only. If the
// range boundary is hit before the target, the result carries HitBoundary.
//
// targetPrice is a human price already adjusted for any off-pool fees by the
// caller. feeRate is the pool's own LP fee, applied to the input side.
// maxIn caps the gross input in human units of the input token.
func Solve(pool *PoolState, targetPrice decimal.Decimal, dir SwapDirection, feeRate, maxIn decimal.Decimal) (SwapResult, error) {
	return solve(pool, targetPrice, dir, feeRate, maxIn, false)
}

// SolveMulti behaves like Solve but continues across SegmentsDown
// (Token0->Token1) or SegmentsUp (Token1->Token0) when the target lies
// beyond the active range. HitBoundary is set only when every available
// segment is exhausted before the target is reached.
func SolveMulti(pool *PoolState, targetPrice decimal.Decimal, dir SwapDirection, feeRate, maxIn decimal.Decimal) (SwapResult, error) {
	return solve(pool, targetPrice, dir, feeRate, maxIn, true)
}

func solve(pool *PoolState, targetPrice decimal.Decimal, dir SwapDirection, feeRate, maxIn decimal.Decimal, multi bool) (SwapResult, error) {
	if err := pool.Validate(); err != nil {
		return SwapResult{}, err
	}
	if !dir.IsValid() {
		return SwapResult{}, apperror.Validation(apperror.CodeInvalidInput, "unknown swap direction")
	}
	if targetPrice.Sign() <= 0 {
		return SwapResult{}, apperror.Validation(apperror.CodeInvalidPrice, "target price")
	}
	if feeRate.Sign() < 0 || feeRate.GreaterThanOrEqual(one) {
		return SwapResult{}, apperror.Validation(apperror.CodeInvalidFeeRate, feeRate.String())
	}

	targetX96, err := SqrtPriceFromHuman(targetPrice, pool.Token0Decimals, pool.Token1Decimals)
	if err != nil {
		return SwapResult{}, err
	}

	sTarget := sqrtRatio(targetX96)
	sCurrent := sqrtRatio(pool.SqrtPriceX96)

	// A target on the wrong side of the current price is the everyday
	// "no opportunity" case, not an error.
	if dir == Token0ToToken1 && sTarget.GreaterThanOrEqual(sCurrent) {
		return zeroResult(), nil
	}
	if dir == Token1ToToken0 && sTarget.LessThanOrEqual(sCurrent) {
		return zeroResult(), nil
	}
	if maxIn.Sign() <= 0 {
		return zeroResult(), nil
	}

	decIn, decOut := pool.Token0Decimals, pool.Token1Decimals
	if dir == Token1ToToken0 {
		decIn, decOut = pool.Token1Decimals, pool.Token0Decimals
	}

	oneMinusFee := one.Sub(feeRate)
	remaining := maxIn.Shift(int32(decIn)) // raw gross-input budget

	ranges := buildRanges(pool, sCurrent, sTarget, dir, multi)

	var totalGrossIn, totalOut decimal.Decimal
	reached, capped := false, false

	for i, r := range ranges {
		if i >= maxTraversedSegments {
			break
		}

		stop := r.end
		targetInRange := !r.bounded
		if r.bounded {
			if dir == Token0ToToken1 {
				targetInRange = sTarget.GreaterThanOrEqual(r.end)
			} else {
				targetInRange = sTarget.LessThanOrEqual(r.end)
			}
		}
		if targetInRange {
			stop = sTarget
		}

		// Zero-liquidity ranges are crossed without amounts.
		if r.liquidity.Sign() == 0 {
			if targetInRange {
				reached = true
				break
			}
			continue
		}

		var curveIn, curveOut decimal.Decimal
		if dir == Token0ToToken1 {
			diff := r.start.Sub(stop)
			curveIn = r.liquidity.Mul(diff).DivRound(r.start.Mul(stop), sqrtScale)
			curveOut = r.liquidity.Mul(diff)
		} else {
			diff := stop.Sub(r.start)
			curveIn = r.liquidity.Mul(diff)
			curveOut = r.liquidity.Mul(diff).DivRound(r.start.Mul(stop), sqrtScale)
		}

		grossIn := curveIn.DivRound(oneMinusFee, sqrtScale)
		if grossIn.GreaterThan(remaining) {
			// Proportional scale-down against the remaining budget.
			scale := remaining.DivRound(grossIn, sqrtScale)
			grossIn = remaining
			curveOut = curveOut.Mul(scale)
			capped = true
		}

		totalGrossIn = totalGrossIn.Add(grossIn)
		totalOut = totalOut.Add(curveOut)
		remaining = remaining.Sub(grossIn)

		if capped || targetInRange {
			reached = targetInRange && !capped
			break
		}
	}

	result := SwapResult{
		HitBoundary: !reached && !capped,
		CappedByMax: capped,
	}

	// Round conservatively against the trader at raw-unit granularity:
	// input up, output down.
	result.AmountIn = totalGrossIn.Ceil().Shift(-int32(decIn))
	result.AmountOut = totalOut.Floor().Shift(-int32(decOut))

	if result.AmountIn.Sign() > 0 && result.AmountOut.Sign() > 0 {
		if dir == Token0ToToken1 {
			result.ExecutionPrice = result.AmountIn.DivRound(result.AmountOut, executionPriceScale)
		} else {
			result.ExecutionPrice = result.AmountOut.DivRound(result.AmountIn, executionPriceScale)
		}
	} else {
		result.ExecutionPrice = decimal.Zero
	}

	return result, nil
}

// buildRanges lays out the traversal order: the active range first, then, in
// multi mode, the snapshot's adjacent segments in travel direction.
func buildRanges(pool *PoolState, sCurrent, sTarget decimal.Decimal, dir SwapDirection, multi bool) []liquidityRange {
	current := liquidityRange{
		start:     sCurrent,
		liquidity: decimal.NewFromBigInt(pool.Liquidity, 0),
	}

	boundX96 := pool.LowerBoundX96
	segments := pool.SegmentsDown
	if dir == Token1ToToken0 {
		boundX96 = pool.UpperBoundX96
		segments = pool.SegmentsUp
	}

	if boundX96 != nil {
		current.end = sqrtRatio(boundX96)
		current.bounded = true
	} else {
		current.end = sTarget
	}

	ranges := make([]liquidityRange, 0, len(segments)+1)
	ranges = append(ranges, current)

	if !multi || boundX96 == nil {
		return ranges
	}

	for _, seg := range segments {
		ranges = append(ranges, liquidityRange{
			start:     sqrtRatio(seg.StartX96),
			end:       sqrtRatio(seg.EndX96),
			liquidity: decimal.NewFromBigInt(seg.Liquidity, 0),
			bounded:   true,
		})
	}

	return ranges
}

func zeroResult() SwapResult {
	return SwapResult{
		AmountIn:       decimal.Zero,
		AmountOut:      decimal.Zero,
		ExecutionPrice: decimal.Zero,
	}
}
