// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
	dexDomain "github.com/fd1az/arb-detector/business/dex/domain"
	pricingDomain "github.com/fd1az/arb-detector/business/pricing/domain"
	"github.com/fd1az/arb-detector/internal/apperror"
)

var (
	one = decimal.NewFromInt(1)

	// inputEpsilon filters CEX->DEX fills too small to mean anything at
	// raw-unit granularity.
	inputEpsilon = decimal.New(1, -8)
)

// EvaluatorConfig holds the fee and threshold parameters for evaluation.
type EvaluatorConfig struct {
	DexFeeRate decimal.Decimal // pool LP fee, e.g. 0.003
	CexFeeRate decimal.Decimal // CEX taker fee, e.g. 0.001
	MinPnl     decimal.Decimal // report threshold, quote units
}

// Evaluator checks one pool snapshot against one book snapshot for
// profitable round trips in both directions.
type Evaluator struct {
	config EvaluatorConfig
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(cfg EvaluatorConfig) (*Evaluator, error) {
	if cfg.DexFeeRate.Sign() < 0 || cfg.DexFeeRate.GreaterThanOrEqual(one) {
		return nil, apperror.Validation(apperror.CodeInvalidFeeRate, "dex fee rate")
	}
	if cfg.CexFeeRate.Sign() < 0 || cfg.CexFeeRate.GreaterThanOrEqual(one) {
		return nil, apperror.Validation(apperror.CodeInvalidFeeRate, "cex fee rate")
	}
	return &Evaluator{config: cfg}, nil
}

// Evaluate runs both directions against the snapshots and returns the
// opportunities clearing the PnL threshold, buy-on-DEX first. A one-sided
// or empty book yields no opportunities and no error: without both a bid
// and an ask there is no two-way market to price against.
func (e *Evaluator) Evaluate(ctx context.Context, pool *dexDomain.PoolState, book *pricingDomain.BookDepth, gasCost decimal.Decimal) ([]domain.Opportunity, error) {
	if pool == nil {
		return nil, apperror.Validation(apperror.CodeInvalidPoolState, "nil snapshot")
	}
	if book == nil {
		return nil, nil
	}

	bid, bidOK := book.BestBid()
	ask, askOK := book.BestAsk()
	if !bidOK || !askOK {
		return nil, nil
	}

	poolPrice, err := pool.HumanPrice()
	if err != nil {
		return nil, err
	}

	var opps []domain.Opportunity

	if opp, err := e.evaluateDexToCex(pool, bid, poolPrice, gasCost); err != nil {
		return nil, err
	} else if opp != nil {
		opps = append(opps, *opp)
	}

	if opp, err := e.evaluateCexToDex(pool, ask, poolPrice, gasCost); err != nil {
		return nil, err
	} else if opp != nil {
		opps = append(opps, *opp)
	}

	return opps, nil
}

// evaluateDexToCex buys base on the pool and sells it into the CEX bid.
// The swap target is the bid net of the CEX fee: moving the pool past that
// price makes the marginal unit unprofitable.
func (e *Evaluator) evaluateDexToCex(pool *dexDomain.PoolState, bid pricingDomain.Level, poolPrice, gasCost decimal.Decimal) (*domain.Opportunity, error) {
	target := bid.Price.Mul(one.Sub(e.config.CexFeeRate))

	result, err := dexDomain.SolveMulti(pool, target, dexDomain.Token0ToToken1, e.config.DexFeeRate, bid.Quantity)
	if err != nil {
		return nil, err
	}
	if result.AmountIn.Sign() <= 0 || result.AmountOut.Sign() <= 0 {
		return nil, nil
	}

	// The CEX fee is already folded into the target, so revenue is the
	// raw bid times the base bought.
	pnl := bid.Price.Mul(result.AmountOut).Sub(result.AmountIn).Sub(gasCost)
	if pnl.LessThan(e.config.MinPnl) {
		return nil, nil
	}

	return &domain.Opportunity{
		Timestamp:      time.Now(),
		Direction:      domain.DirectionDEXToCEX,
		AmountIn:       result.AmountIn,
		AmountOut:      result.AmountOut,
		ExecutionPrice: result.ExecutionPrice,
		HitBoundary:    result.HitBoundary,
		CappedByMax:    result.CappedByMax,
		CEXPrice:       bid.Price,
		CEXQty:         bid.Quantity,
		DEXPrice:       poolPrice,
		GasCost:        gasCost,
		Pnl:            pnl,
	}, nil
}

// evaluateCexToDex buys base at the CEX ask and sells it into the pool.
// The target is the ask grossed up by the CEX fee, the all-in acquisition
// price per unit of base.
func (e *Evaluator) evaluateCexToDex(pool *dexDomain.PoolState, ask pricingDomain.Level, poolPrice, gasCost decimal.Decimal) (*domain.Opportunity, error) {
	target := ask.Price.Mul(one.Add(e.config.CexFeeRate))

	result, err := dexDomain.SolveMulti(pool, target, dexDomain.Token1ToToken0, e.config.DexFeeRate, ask.Quantity)
	if err != nil {
		return nil, err
	}
	if result.AmountIn.LessThanOrEqual(inputEpsilon) {
		return nil, nil
	}

	pnl := result.AmountOut.Sub(target.Mul(result.AmountIn)).Sub(gasCost)
	if pnl.LessThan(e.config.MinPnl) {
		return nil, nil
	}

	return &domain.Opportunity{
		Timestamp:      time.Now(),
		Direction:      domain.DirectionCEXToDEX,
		AmountIn:       result.AmountIn,
		AmountOut:      result.AmountOut,
		ExecutionPrice: result.ExecutionPrice,
		HitBoundary:    result.HitBoundary,
		CappedByMax:    result.CappedByMax,
		CEXPrice:       ask.Price,
		CEXQty:         ask.Quantity,
		DEXPrice:       poolPrice,
		GasCost:        gasCost,
		Pnl:            pnl,
	}, nil
}
