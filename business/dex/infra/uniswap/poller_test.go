package uniswap

import (
	"math/big"
	"testing"

	"github.com/fd1az/arb-detector/business/dex/domain"
)

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{100, 60, 1},
		{120, 60, 2},
		{0, 60, 0},
		{-1, 60, -1},
		{-60, 60, -1},
		{-61, 60, -2},
		{-120, 60, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAssemblePoolState(t *testing.T) {
	// USDC/WETH-style pool around tick 193380 with 60 spacing.
	tick := 193397
	spacing := 60
	lowerTick := 193380
	upperTick := 193440

	slot0 := &Slot0Result{
		SqrtPriceX96: domain.SqrtPriceAtTick(tick),
		Tick:         tick,
	}
	liquidity := big.NewInt(1_800_000_000_000_000_000)

	netsDown := []*big.Int{
		big.NewInt(400_000_000_000_000_000),  // crossing down removes
		big.NewInt(-100_000_000_000_000_000), // negative net adds on the way down
	}
	netsUp := []*big.Int{
		big.NewInt(300_000_000_000_000_000), // crossing up adds
		big.NewInt(0),
	}

	state := assemblePoolState(slot0, liquidity, lowerTick, upperTick, spacing, netsDown, netsUp, 6, 18)

	if err := state.Validate(); err != nil {
		t.Fatalf("assembled state failed validation: %v", err)
	}
	if state.Tick != tick {
		t.Errorf("tick: got %d, want %d", state.Tick, tick)
	}

	if len(state.SegmentsDown) != 2 || len(state.SegmentsUp) != 2 {
		t.Fatalf("expected 2 segments per side, got %d down / %d up",
			len(state.SegmentsDown), len(state.SegmentsUp))
	}

	// Down: 1.8e18 - 0.4e18 = 1.4e18, then 1.4e18 + 0.1e18 = 1.5e18.
	if state.SegmentsDown[0].Liquidity.Cmp(big.NewInt(1_400_000_000_000_000_000)) != 0 {
		t.Errorf("first down segment liquidity: got %s", state.SegmentsDown[0].Liquidity)
	}
	if state.SegmentsDown[1].Liquidity.Cmp(big.NewInt(1_500_000_000_000_000_000)) != 0 {
		t.Errorf("second down segment liquidity: got %s", state.SegmentsDown[1].Liquidity)
	}

	// Up: 1.8e18 + 0.3e18 = 2.1e18, unchanged across the zero-net tick.
	if state.SegmentsUp[0].Liquidity.Cmp(big.NewInt(2_100_000_000_000_000_000)) != 0 {
		t.Errorf("first up segment liquidity: got %s", state.SegmentsUp[0].Liquidity)
	}
	if state.SegmentsUp[1].Liquidity.Cmp(state.SegmentsUp[0].Liquidity) != 0 {
		t.Errorf("second up segment liquidity: got %s", state.SegmentsUp[1].Liquidity)
	}

	// Bounds are the aligned tick boundaries of the active range.
	if state.LowerBoundX96.Cmp(domain.SqrtPriceAtTick(lowerTick)) != 0 {
		t.Error("lower bound does not match aligned tick")
	}
	if state.UpperBoundX96.Cmp(domain.SqrtPriceAtTick(upperTick)) != 0 {
		t.Error("upper bound does not match aligned tick")
	}
}

func TestAssemblePoolState_ClampsNegativeLiquidity(t *testing.T) {
	tick := 100
	slot0 := &Slot0Result{
		SqrtPriceX96: domain.SqrtPriceAtTick(tick),
		Tick:         tick,
	}
	liquidity := big.NewInt(1_000_000)

	// Net larger than the running total would push it negative.
	netsDown := []*big.Int{big.NewInt(5_000_000)}

	state := assemblePoolState(slot0, liquidity, 60, 120, 60, netsDown, nil, 6, 18)

	if state.SegmentsDown[0].Liquidity.Sign() != 0 {
		t.Errorf("expected clamped zero liquidity, got %s", state.SegmentsDown[0].Liquidity)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("clamped state failed validation: %v", err)
	}
}
