// Package domain contains the pricing context's domain types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level is a single price level of an orderbook side.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// BookDepth is a snapshot of the top of a CEX orderbook. Bids are sorted
// best (highest) first, asks best (lowest) first. An empty side means the
// venue has no quote there right now.
type BookDepth struct {
	Symbol    string
	Timestamp time.Time
	Bids      []Level
	Asks      []Level
}

// BestBid returns the highest bid, if any.
func (b *BookDepth) BestBid() (Level, bool) {
	if b == nil || len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask, if any.
func (b *BookDepth) BestAsk() (Level, bool) {
	if b == nil || len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// MidPrice returns the midpoint between best bid and best ask.
func (b *BookDepth) MidPrice() (decimal.Decimal, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), true
}

// Spread returns best ask minus best bid.
func (b *BookDepth) Spread() (decimal.Decimal, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}

// Age returns how old the snapshot is.
func (b *BookDepth) Age() time.Duration {
	if b == nil || b.Timestamp.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return time.Since(b.Timestamp)
}
