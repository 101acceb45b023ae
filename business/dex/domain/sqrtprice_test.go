package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSqrtPriceFromHuman_RoundTrip(t *testing.T) {
	tolerance := decimal.RequireFromString("0.000000001") // 1e-9 relative

	tests := []struct {
		name  string
		price string
		dec0  uint8
		dec1  uint8
	}{
		{"usdc_weth_typical", "4200", 6, 18},
		{"usdc_weth_low", "0.000001", 6, 18},
		{"usdc_weth_high", "1000000000", 6, 18},
		{"inverted_decimals", "4200", 18, 6},
		{"inverted_decimals_fraction", "0.25", 18, 6},
		{"equal_decimals", "1", 8, 8},
		{"equal_decimals_large", "98765.4321", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)

			sqrtX96, err := SqrtPriceFromHuman(price, tt.dec0, tt.dec1)
			if err != nil {
				t.Fatalf("SqrtPriceFromHuman: %v", err)
			}
			if sqrtX96.Sign() <= 0 {
				t.Fatalf("expected positive sqrt price, got %s", sqrtX96)
			}

			back, err := HumanPriceFromSqrt(sqrtX96, tt.dec0, tt.dec1)
			if err != nil {
				t.Fatalf("HumanPriceFromSqrt: %v", err)
			}

			relErr := back.Sub(price).Abs().Div(price)
			if relErr.GreaterThan(tolerance) {
				t.Errorf("round trip drifted: %s -> %s (rel err %s)", price, back, relErr)
			}
		})
	}
}

func TestSqrtPriceFromHuman_InvalidPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{"zero", "0"},
		{"negative", "-4200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SqrtPriceFromHuman(decimal.RequireFromString(tt.price), 6, 18)
			if err == nil {
				t.Fatal("expected error for non-positive price")
			}
		})
	}
}

func TestSqrtPriceFromHuman_Monotonicity(t *testing.T) {
	// Higher human price means fewer raw token1 per raw token0,
	// so the sqrt-price must strictly decrease.
	prices := []string{"100", "1000", "4200", "50000"}

	var prev *big.Int
	for _, p := range prices {
		sqrtX96, err := SqrtPriceFromHuman(decimal.RequireFromString(p), 6, 18)
		if err != nil {
			t.Fatalf("SqrtPriceFromHuman(%s): %v", p, err)
		}
		if prev != nil && sqrtX96.Cmp(prev) >= 0 {
			t.Fatalf("sqrt price did not decrease: %s at price %s", sqrtX96, p)
		}
		prev = sqrtX96
	}
}

func TestHumanPriceFromSqrt_Invalid(t *testing.T) {
	if _, err := HumanPriceFromSqrt(nil, 6, 18); err == nil {
		t.Error("expected error for nil sqrt price")
	}
	if _, err := HumanPriceFromSqrt(big.NewInt(0), 6, 18); err == nil {
		t.Error("expected error for zero sqrt price")
	}
	if _, err := HumanPriceFromSqrt(big.NewInt(-1), 6, 18); err == nil {
		t.Error("expected error for negative sqrt price")
	}
}

func TestSqrtPriceAtTick(t *testing.T) {
	// Tick zero is exactly 2^96.
	want := new(big.Int).Lsh(big.NewInt(1), 96)
	if got := SqrtPriceAtTick(0); got.Cmp(want) != 0 {
		t.Errorf("tick 0: got %s, want %s", got, want)
	}

	// Ticks are strictly increasing in sqrt-price.
	lo, mid, hi := SqrtPriceAtTick(-100), SqrtPriceAtTick(0), SqrtPriceAtTick(100)
	if lo.Cmp(mid) >= 0 || mid.Cmp(hi) >= 0 {
		t.Errorf("tick ordering violated: %s, %s, %s", lo, mid, hi)
	}

	// Opposite ticks are reciprocal: at(t) * at(-t) ~= 2^192.
	prod := new(big.Int).Mul(lo, hi)
	q192 := new(big.Int).Lsh(big.NewInt(1), 192)
	diff := new(big.Int).Sub(prod, q192)
	diff.Abs(diff)
	// Allow rounding slack of a few parts in 2^96.
	slack := new(big.Int).Lsh(big.NewInt(1), 100)
	if diff.Cmp(slack) > 0 {
		t.Errorf("reciprocal identity violated, diff %s", diff)
	}
}
