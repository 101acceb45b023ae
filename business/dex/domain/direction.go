package domain

// SwapDirection identifies which token is sold into the pool.
type SwapDirection int

const (
	// Token0ToToken1 sells token0 for token1, pushing sqrt-price down.
	Token0ToToken1 SwapDirection = iota
	// Token1ToToken0 sells token1 for token0, pushing sqrt-price up.
	Token1ToToken0
)

// String returns the direction name.
func (d SwapDirection) String() string {
	switch d {
	case Token0ToToken1:
		return "token0->token1"
	case Token1ToToken0:
		return "token1->token0"
	default:
		return "unknown"
	}
}

// IsValid reports whether d is a known direction.
func (d SwapDirection) IsValid() bool {
	return d == Token0ToToken1 || d == Token1ToToken0
}
