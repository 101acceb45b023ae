// Package domain contains the core domain types for the arbitrage context.
package domain

// Direction is the arbitrage trade direction.
type Direction string

const (
	// DirectionDEXToCEX buys the base token on the pool and sells it
	// into the CEX bid.
	DirectionDEXToCEX Direction = "DEX_TO_CEX"

	// DirectionCEXToDEX buys the base token at the CEX ask and sells it
	// into the pool.
	DirectionCEXToDEX Direction = "CEX_TO_DEX"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionDEXToCEX:
		return "DEX → CEX (Buy on Uniswap, Sell on Binance)"
	case DirectionCEXToDEX:
		return "CEX → DEX (Buy on Binance, Sell on Uniswap)"
	default:
		return "Unknown"
	}
}

// ShortString returns a compact label for table display.
func (d Direction) ShortString() string {
	switch d {
	case DirectionDEXToCEX:
		return "DEX→CEX"
	case DirectionCEXToDEX:
		return "CEX→DEX"
	default:
		return "?"
	}
}
