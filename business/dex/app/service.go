package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/business/dex/domain"
)

// DexService exposes pool snapshots and the swap solver to other modules.
type DexService struct {
	source PoolSource
}

// NewDexService creates a new DexService.
func NewDexService(source PoolSource) *DexService {
	return &DexService{source: source}
}

// LatestPool returns the most recent pool snapshot.
func (s *DexService) LatestPool(ctx context.Context) (*domain.PoolState, error) {
	return s.source.Latest()
}

// Solve computes a swap to a target price within the active range.
func (s *DexService) Solve(pool *domain.PoolState, target decimal.Decimal, dir domain.SwapDirection, feeRate, maxIn decimal.Decimal) (domain.SwapResult, error) {
	return domain.Solve(pool, target, dir, feeRate, maxIn)
}

// SolveMulti computes a swap to a target price across adjacent segments.
func (s *DexService) SolveMulti(pool *domain.PoolState, target decimal.Decimal, dir domain.SwapDirection, feeRate, maxIn decimal.Decimal) (domain.SwapResult, error) {
	return domain.SolveMulti(pool, target, dir, feeRate, maxIn)
}
