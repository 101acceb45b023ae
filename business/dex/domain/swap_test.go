package domain

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

// unboundedPool is a snapshot at 4200 USDC/ETH with 1.8e18 liquidity and no
// range information.
func unboundedPool(t *testing.T) *PoolState {
	t.Helper()
	return &PoolState{
		SqrtPriceX96:   mustSqrt(t, "4200"),
		Liquidity:      mustBig(t, "1800000000000000000"),
		Token0Decimals: 6,
		Token1Decimals: 18,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSolve_InfeasibleDirection(t *testing.T) {
	pool := unboundedPool(t)

	tests := []struct {
		name   string
		target string
		dir    SwapDirection
	}{
		// Token0->Token1 raises the human price; a lower target is unreachable.
		{"buy_below_current", "4100", Token0ToToken1},
		{"buy_at_current", "4200", Token0ToToken1},
		// Token1->Token0 lowers the human price; a higher target is unreachable.
		{"sell_above_current", "4300", Token1ToToken0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Solve(pool, d(tt.target), tt.dir, d("0.003"), d("1000000"))
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if res.AmountIn.Sign() != 0 || res.AmountOut.Sign() != 0 {
				t.Errorf("expected zero result, got in=%s out=%s", res.AmountIn, res.AmountOut)
			}
			if res.HitBoundary || res.CappedByMax {
				t.Errorf("infeasible result must carry no flags: %+v", res)
			}
		})
	}
}

func TestSolve_ReachesTarget(t *testing.T) {
	pool := unboundedPool(t)

	res, err := Solve(pool, d("4210"), Token0ToToken1, decimal.Zero, d("1000000"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if res.AmountIn.Sign() <= 0 || res.AmountOut.Sign() <= 0 {
		t.Fatalf("expected positive amounts, got in=%s out=%s", res.AmountIn, res.AmountOut)
	}
	if res.HitBoundary || res.CappedByMax {
		t.Errorf("expected clean target hit, got %+v", res)
	}

	// With zero fee the realized price must sit between the start and
	// target prices.
	if res.ExecutionPrice.LessThan(d("4200")) || res.ExecutionPrice.GreaterThan(d("4210")) {
		t.Errorf("execution price %s outside [4200, 4210]", res.ExecutionPrice)
	}
}

func TestSolve_SellDirection(t *testing.T) {
	pool := unboundedPool(t)

	res, err := Solve(pool, d("4150"), Token1ToToken0, decimal.Zero, d("100"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if res.AmountIn.Sign() <= 0 || res.AmountOut.Sign() <= 0 {
		t.Fatalf("expected positive amounts, got in=%s out=%s", res.AmountIn, res.AmountOut)
	}

	// Selling ETH realizes between the target and the start price.
	if res.ExecutionPrice.LessThan(d("4150")) || res.ExecutionPrice.GreaterThan(d("4200")) {
		t.Errorf("execution price %s outside [4150, 4200]", res.ExecutionPrice)
	}
}

func TestSolve_FeeMonotonicity(t *testing.T) {
	pool := unboundedPool(t)

	fees := []string{"0", "0.003", "0.01", "0.05"}
	var prevIn decimal.Decimal
	var prevOut decimal.Decimal

	for i, f := range fees {
		res, err := Solve(pool, d("4210"), Token0ToToken1, d(f), d("1000000"))
		if err != nil {
			t.Fatalf("Solve fee=%s: %v", f, err)
		}
		if i > 0 {
			if !res.AmountIn.GreaterThan(prevIn) {
				t.Errorf("fee %s: amount in %s not greater than %s", f, res.AmountIn, prevIn)
			}
			if !res.AmountOut.Equal(prevOut) {
				t.Errorf("fee %s: amount out %s changed from %s", f, res.AmountOut, prevOut)
			}
		}
		prevIn, prevOut = res.AmountIn, res.AmountOut
	}
}

func TestSolve_CappedByMax(t *testing.T) {
	pool := unboundedPool(t)

	uncapped, err := Solve(pool, d("4220.775"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("Solve uncapped: %v", err)
	}
	if uncapped.CappedByMax {
		t.Fatal("uncapped solve unexpectedly capped")
	}

	capped, err := Solve(pool, d("4220.775"), Token0ToToken1, d("0.003"), d("5"))
	if err != nil {
		t.Fatalf("Solve capped: %v", err)
	}

	if !capped.CappedByMax {
		t.Fatal("expected CappedByMax")
	}
	if capped.HitBoundary {
		t.Error("capped result must not also report a boundary hit")
	}

	// The input honors the cap up to one raw token unit of rounding.
	if capped.AmountIn.GreaterThan(d("5.000001")) {
		t.Errorf("amount in %s exceeds cap", capped.AmountIn)
	}
	if !capped.AmountOut.LessThan(uncapped.AmountOut) {
		t.Errorf("capped output %s not below uncapped %s", capped.AmountOut, uncapped.AmountOut)
	}

	// Sanity: 5 USDC at ~4200 with 0.3% fee buys roughly 1.18e-3 ETH.
	if capped.AmountOut.LessThan(d("0.00117")) || capped.AmountOut.GreaterThan(d("0.00120")) {
		t.Errorf("amount out %s outside expected band", capped.AmountOut)
	}
}

func TestSolve_HitBoundary(t *testing.T) {
	pool := validPool(t) // active range ends at 4250 on the way up

	res, err := Solve(pool, d("4300"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !res.HitBoundary {
		t.Fatal("expected HitBoundary when target lies beyond the active range")
	}
	if res.CappedByMax {
		t.Error("boundary result must not also report a cap")
	}
	if res.AmountIn.Sign() <= 0 || res.AmountOut.Sign() <= 0 {
		t.Errorf("boundary result still carries the partial fill, got in=%s out=%s",
			res.AmountIn, res.AmountOut)
	}
}

func TestSolveMulti_CrossesSegments(t *testing.T) {
	pool := validPool(t) // one segment continuing 4250 -> 4300

	single, err := Solve(pool, d("4280"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	multi, err := SolveMulti(pool, d("4280"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}

	if multi.HitBoundary || multi.CappedByMax {
		t.Fatalf("expected clean multi-segment fill, got %+v", multi)
	}
	if !multi.AmountIn.GreaterThan(single.AmountIn) || !multi.AmountOut.GreaterThan(single.AmountOut) {
		t.Errorf("multi fill should exceed the boundary-truncated single fill: multi in=%s out=%s, single in=%s out=%s",
			multi.AmountIn, multi.AmountOut, single.AmountIn, single.AmountOut)
	}
}

// A fill crossing into a segment must equal the sum of two single-range
// solves: the active range to its boundary, then a pool repositioned at
// the boundary with the segment's liquidity, up to the final target.
func TestSolveMulti_AccumulatesPerSegment(t *testing.T) {
	pool := validPool(t) // active range ends at 4250, segment continues to 4300
	target := d("4280")
	fee := d("0.003")
	budget := d("100000000")

	multi, err := SolveMulti(pool, target, Token0ToToken1, fee, budget)
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}
	if multi.HitBoundary || multi.CappedByMax {
		t.Fatalf("expected clean multi-segment fill, got %+v", multi)
	}

	first, err := Solve(pool, target, Token0ToToken1, fee, budget)
	if err != nil {
		t.Fatalf("Solve active range: %v", err)
	}
	if !first.HitBoundary {
		t.Fatal("first leg must stop at the range boundary")
	}

	// Reposition at the boundary with the segment's liquidity.
	seg := pool.SegmentsDown[0]
	segPool := &PoolState{
		SqrtPriceX96:   seg.StartX96,
		Liquidity:      seg.Liquidity,
		Token0Decimals: pool.Token0Decimals,
		Token1Decimals: pool.Token1Decimals,
	}
	second, err := Solve(segPool, target, Token0ToToken1, fee, budget)
	if err != nil {
		t.Fatalf("Solve segment: %v", err)
	}
	if second.HitBoundary || second.CappedByMax {
		t.Fatalf("expected clean segment fill, got %+v", second)
	}

	// Per-leg rounding happens at raw-unit granularity, so the sums agree
	// only within a few raw units.
	tolerance := d("0.000001")
	sumIn := first.AmountIn.Add(second.AmountIn)
	sumOut := first.AmountOut.Add(second.AmountOut)

	if inDiff := sumIn.Sub(multi.AmountIn).Abs().Div(multi.AmountIn); inDiff.GreaterThan(tolerance) {
		t.Errorf("amount in diverges: multi %s vs piecewise %s (rel %s)",
			multi.AmountIn, sumIn, inDiff)
	}
	if outDiff := sumOut.Sub(multi.AmountOut).Abs().Div(multi.AmountOut); outDiff.GreaterThan(tolerance) {
		t.Errorf("amount out diverges: multi %s vs piecewise %s (rel %s)",
			multi.AmountOut, sumOut, outDiff)
	}
}

func TestSolveMulti_ExhaustsSegments(t *testing.T) {
	pool := validPool(t) // segments end at 4300

	res, err := SolveMulti(pool, d("4400"), Token0ToToken1, d("0.003"), d("1000000000"))
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}
	if !res.HitBoundary {
		t.Fatal("expected HitBoundary after exhausting all segments")
	}
}

func TestSolveMulti_SkipsZeroLiquiditySegment(t *testing.T) {
	lower := mustSqrt(t, "4250")
	mid := mustSqrt(t, "4270")
	far := mustSqrt(t, "4300")

	pool := validPool(t)
	pool.SegmentsDown = []PriceSegment{
		{StartX96: lower, EndX96: mid, Liquidity: big.NewInt(0)},
		{StartX96: mid, EndX96: far, Liquidity: mustBig(t, "900000000000000000")},
	}

	res, err := SolveMulti(pool, d("4280"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}
	if res.HitBoundary || res.CappedByMax {
		t.Fatalf("expected clean fill across the empty range, got %+v", res)
	}

	// Compare against the same layout with liquidity in the first segment:
	// the empty range contributes nothing, so the fill must be smaller.
	full := validPool(t)
	full.SegmentsDown = []PriceSegment{
		{StartX96: lower, EndX96: mid, Liquidity: mustBig(t, "900000000000000000")},
		{StartX96: mid, EndX96: far, Liquidity: mustBig(t, "900000000000000000")},
	}
	fullRes, err := SolveMulti(full, d("4280"), Token0ToToken1, d("0.003"), d("100000000"))
	if err != nil {
		t.Fatalf("SolveMulti full: %v", err)
	}
	if !res.AmountOut.LessThan(fullRes.AmountOut) {
		t.Errorf("zero-liquidity segment contributed output: %s vs %s", res.AmountOut, fullRes.AmountOut)
	}
}

func TestSolveMulti_RemainingBudgetStopsTraversal(t *testing.T) {
	pool := validPool(t)

	res, err := SolveMulti(pool, d("4280"), Token0ToToken1, d("0.003"), d("200000"))
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}
	if !res.CappedByMax {
		t.Fatal("expected CappedByMax with a small budget")
	}
	if res.HitBoundary {
		t.Error("capped traversal must not also report a boundary hit")
	}
	if res.AmountIn.GreaterThan(d("200000.000001")) {
		t.Errorf("amount in %s exceeds budget", res.AmountIn)
	}
}

func TestSolveMulti_TraversalCap(t *testing.T) {
	pool := validPool(t)

	// 80 one-dollar-wide segments; traversal must stop at the defensive cap
	// without error.
	segs := make([]PriceSegment, 0, 80)
	prev := pool.LowerBoundX96
	for i := 0; i < 80; i++ {
		end := mustSqrt(t, fmt.Sprintf("%d", 4251+i))
		segs = append(segs, PriceSegment{
			StartX96:  prev,
			EndX96:    end,
			Liquidity: mustBig(t, "900000000000000000"),
		})
		prev = end
	}
	pool.SegmentsDown = segs

	res, err := SolveMulti(pool, d("4400"), Token0ToToken1, d("0.003"), d("1000000000000"))
	if err != nil {
		t.Fatalf("SolveMulti: %v", err)
	}
	if !res.HitBoundary {
		t.Error("expected HitBoundary once the traversal cap is reached")
	}
}

func TestSolve_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		pool   func(t *testing.T) *PoolState
		target string
		fee    string
	}{
		{"zero_target", unboundedPool, "0", "0.003"},
		{"negative_target", unboundedPool, "-1", "0.003"},
		{"fee_one", unboundedPool, "4210", "1"},
		{"fee_negative", unboundedPool, "4210", "-0.001"},
		{"zero_liquidity_pool", func(t *testing.T) *PoolState {
			p := unboundedPool(t)
			p.Liquidity = big.NewInt(0)
			return p
		}, "4210", "0.003"},
		{"nil_sqrt_pool", func(t *testing.T) *PoolState {
			p := unboundedPool(t)
			p.SqrtPriceX96 = nil
			return p
		}, "4210", "0.003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.pool(t), d(tt.target), Token0ToToken1, d(tt.fee), d("100"))
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSolve_ZeroCapReturnsZero(t *testing.T) {
	res, err := Solve(unboundedPool(t), d("4210"), Token0ToToken1, d("0.003"), decimal.Zero)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.AmountIn.Sign() != 0 || res.AmountOut.Sign() != 0 {
		t.Errorf("expected zero result for zero cap, got %+v", res)
	}
}
