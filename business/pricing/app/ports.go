// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/fd1az/arb-detector/business/pricing/domain"
)

// CEXProvider is the port for centralized exchange market data.
type CEXProvider interface {
	// Connect establishes the market data stream.
	Connect(ctx context.Context) error

	// GetBookDepth returns the current orderbook snapshot for the
	// configured symbol.
	GetBookDepth(ctx context.Context) (*domain.BookDepth, error)

	// IsConnected reports whether the stream is up.
	IsConnected() bool

	// Close tears down the stream.
	Close() error
}
