package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/internal/apperror"
)

// sqrtPrec is the big.Float mantissa width used for the initial square root.
// Everything downstream of the sqrt is exact big.Int / decimal arithmetic.
const sqrtPrec = 256

// humanPriceScale is the decimal scale used when converting a Q96 sqrt-price
// back to a human price. 24 fractional digits keeps round-trips within 1e-9
// relative error across the supported price range.
const humanPriceScale = 24

var (
	q96        = new(big.Int).Lsh(big.NewInt(1), 96)
	q192       = new(big.Int).Lsh(big.NewInt(1), 192)
	q96Decimal = decimal.NewFromBigInt(q96, 0)
)

// SqrtPriceFromHuman converts a human price (quote per base, token0 per
// token1) into the pool's Q96 sqrt-price representation.
//
// rawRatio = 10^(dec1-dec0) / price; result = floor(sqrt(rawRatio) * 2^96).
func SqrtPriceFromHuman(price decimal.Decimal, dec0, dec1 uint8) (*big.Int, error) {
	if price.Sign() <= 0 {
		return nil, apperror.Validation(apperror.CodeInvalidPrice, "sqrt price conversion")
	}

	// rawRatio as an exact rational: 10^(dec1-dec0) / price.
	ratio := new(big.Rat).Inv(price.Rat())
	ratio.Mul(ratio, pow10Rat(int(dec1)-int(dec0)))
	if ratio.Sign() <= 0 {
		return nil, apperror.Validation(apperror.CodeInvalidPrice, "non-positive raw ratio")
	}

	// The only floating step: a 256-bit sqrt.
	f := new(big.Float).SetPrec(sqrtPrec).SetRat(ratio)
	f.Sqrt(f)
	if f.IsInf() {
		return nil, apperror.Validation(apperror.CodePrecisionLoss, "sqrt overflow")
	}

	f.Mul(f, new(big.Float).SetPrec(sqrtPrec).SetInt(q96))
	out, _ := f.Int(nil) // truncation == floor for positive values
	if out.Sign() <= 0 {
		return nil, apperror.Validation(apperror.CodePrecisionLoss, "sqrt price underflow")
	}

	return out, nil
}

// HumanPriceFromSqrt converts a Q96 sqrt-price back into a human price
// (quote per base). The conversion is exact rational arithmetic truncated to
// humanPriceScale fractional digits.
func HumanPriceFromSqrt(sqrtX96 *big.Int, dec0, dec1 uint8) (decimal.Decimal, error) {
	if sqrtX96 == nil || sqrtX96.Sign() <= 0 {
		return decimal.Zero, apperror.Validation(apperror.CodeInvalidPrice, "non-positive sqrt price")
	}

	// price = 10^(dec1-dec0) * 2^192 / sqrtX96^2
	num := new(big.Int).Set(q192)
	den := new(big.Int).Mul(sqrtX96, sqrtX96)

	d := int(dec1) - int(dec0)
	if d > 0 {
		num.Mul(num, pow10Int(d))
	} else if d < 0 {
		den.Mul(den, pow10Int(-d))
	}

	return decimal.NewFromBigRat(new(big.Rat).SetFrac(num, den), humanPriceScale), nil
}

// SqrtPriceAtTick returns the Q96 sqrt-price at a tick boundary,
// floor(sqrt(1.0001^tick) * 2^96). Used when building liquidity segments
// around the current price.
func SqrtPriceAtTick(tick int) *big.Int {
	base := new(big.Float).SetPrec(sqrtPrec).SetRat(big.NewRat(10001, 10000))

	n := tick
	if n < 0 {
		n = -n
	}

	pow := new(big.Float).SetPrec(sqrtPrec).SetInt64(1)
	sq := new(big.Float).SetPrec(sqrtPrec).Set(base)
	for n > 0 {
		if n&1 == 1 {
			pow.Mul(pow, sq)
		}
		sq.Mul(sq, sq)
		n >>= 1
	}

	if tick < 0 {
		pow.Quo(new(big.Float).SetPrec(sqrtPrec).SetInt64(1), pow)
	}

	pow.Sqrt(pow)
	pow.Mul(pow, new(big.Float).SetPrec(sqrtPrec).SetInt(q96))

	out, _ := pow.Int(nil)
	return out
}

// sqrtRatio converts a Q96 sqrt-price to a plain decimal ratio (sqrtX96 / 2^96).
func sqrtRatio(sqrtX96 *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(sqrtX96, 0).DivRound(q96Decimal, sqrtScale)
}

func pow10Int(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func pow10Rat(n int) *big.Rat {
	if n >= 0 {
		return new(big.Rat).SetInt(pow10Int(n))
	}
	return new(big.Rat).SetFrac(big.NewInt(1), pow10Int(-n))
}
