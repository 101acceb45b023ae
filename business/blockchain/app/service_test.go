package app

import (
	"context"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/business/blockchain/domain"
	"github.com/fd1az/arb-detector/internal/apperror"
)

type stubOracle struct {
	priceWei *big.Int
	err      error
}

func (s *stubOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewGasPrice(s.priceWei), nil
}

func TestBlockchainService_GasCostInQuote(t *testing.T) {
	svc := NewBlockchainService(
		&stubOracle{priceWei: big.NewInt(50_000_000_000)}, // 50 gwei
		GasSettings{Units: 150000, Multiplier: decimal.RequireFromString("1.2")},
	)

	// 50 gwei * 1e-9 * 150000 * 1.2 * 4200 = 37.8 quote units
	cost, err := svc.GasCostInQuote(context.Background(), decimal.RequireFromString("4200"))
	if err != nil {
		t.Fatalf("GasCostInQuote: %v", err)
	}
	if !cost.Equal(decimal.RequireFromString("37.8")) {
		t.Errorf("got %s, want 37.8", cost)
	}
}

func TestBlockchainService_GasCostInQuote_OracleError(t *testing.T) {
	svc := NewBlockchainService(
		&stubOracle{err: apperror.New(apperror.CodeEthereumRPCError)},
		GasSettings{Units: 150000, Multiplier: decimal.RequireFromString("1.2")},
	)

	if _, err := svc.GasCostInQuote(context.Background(), decimal.RequireFromString("4200")); err == nil {
		t.Fatal("expected error from failing oracle")
	}
}
