package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/business/blockchain/domain"
)

// GasSettings are the fixed trade parameters used to price a swap's gas.
type GasSettings struct {
	Units      uint64          // gas units a swap consumes
	Multiplier decimal.Decimal // headroom over the suggested price
}

// BlockchainService coordinates blockchain interactions.
type BlockchainService struct {
	gasOracle GasOracle
	settings  GasSettings
}

// NewBlockchainService creates a new BlockchainService.
func NewBlockchainService(gasOracle GasOracle, settings GasSettings) *BlockchainService {
	return &BlockchainService{
		gasOracle: gasOracle,
		settings:  settings,
	}
}

// GetGasPrice retrieves the current gas price.
func (s *BlockchainService) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return s.gasOracle.GetGasPrice(ctx)
}

// GasCostInQuote prices one swap's gas in the trade's quote currency,
// using the current suggested gas price. quotePerBase is the quote price
// of the chain's native token (ETH).
func (s *BlockchainService) GasCostInQuote(ctx context.Context, quotePerBase decimal.Decimal) (decimal.Decimal, error) {
	price, err := s.gasOracle.GetGasPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.CostInQuote(price.GweiDecimal(), s.settings.Units, s.settings.Multiplier, quotePerBase)
}
