package app

import (
	"context"

	"github.com/fd1az/arb-detector/business/pricing/domain"
	"github.com/fd1az/arb-detector/internal/logger"
)

// PricingService fronts the CEX provider for the rest of the system.
type PricingService struct {
	cex CEXProvider
	log logger.LoggerInterface
}

// NewPricingService creates a new PricingService.
func NewPricingService(cex CEXProvider, log logger.LoggerInterface) *PricingService {
	return &PricingService{cex: cex, log: log}
}

// GetBookDepth returns the current CEX orderbook snapshot.
func (s *PricingService) GetBookDepth(ctx context.Context) (*domain.BookDepth, error) {
	book, err := s.cex.GetBookDepth(ctx)
	if err != nil {
		return nil, err
	}

	if bid, ok := book.BestBid(); ok {
		s.log.Debug(ctx, "book snapshot",
			"symbol", book.Symbol,
			"best_bid", bid.Price.String(),
			"levels", len(book.Bids)+len(book.Asks))
	}

	return book, nil
}

// Connected reports whether the CEX stream is up.
func (s *PricingService) Connected() bool {
	return s.cex.IsConnected()
}
