// Package uniswap polls on-chain Uniswap V3 pool state.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-detector/business/dex/domain"
	"github.com/fd1az/arb-detector/internal/apperror"
	"github.com/fd1az/arb-detector/internal/circuitbreaker"
	"github.com/fd1az/arb-detector/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arb-detector/business/dex/infra/uniswap"
	meterName  = "github.com/fd1az/arb-detector/business/dex/infra/uniswap"

	maxSegmentDepth = 12
)

// ethCaller is the slice of the Ethereum client the poller needs.
type ethCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// PollerConfig holds configuration for the pool poller.
type PollerConfig struct {
	PoolAddress    common.Address
	Token0Decimals uint8
	Token1Decimals uint8
	TickSpacing    int
	SegmentDepth   int // adjacent ranges fetched per side of the current price
	PollInterval   time.Duration
}

// pollerMetrics holds OTEL metric instruments.
type pollerMetrics struct {
	polls       metric.Int64Counter
	pollErrors  metric.Int64Counter
	pollLatency metric.Float64Histogram
	poolPrice   metric.Float64Gauge
}

// Poller periodically reads pool state over RPC and publishes immutable
// snapshots. Readers always see the last good snapshot.
type Poller struct {
	config PollerConfig
	client ethCaller
	logger logger.LoggerInterface

	poolABI abi.ABI
	cb      *circuitbreaker.CircuitBreaker[[]byte]

	latest atomic.Pointer[domain.PoolState]

	tracer  trace.Tracer
	metrics *pollerMetrics
}

// NewPoller creates a pool state poller.
func NewPoller(client ethCaller, cfg PollerConfig, log logger.LoggerInterface) (*Poller, error) {
	if cfg.TickSpacing <= 0 {
		return nil, apperror.Validation(apperror.CodeConfigurationError, "tick spacing must be positive")
	}
	if cfg.SegmentDepth < 0 || cfg.SegmentDepth > maxSegmentDepth {
		return nil, apperror.Validation(apperror.CodeConfigurationError,
			fmt.Sprintf("segment depth must be in [0, %d]", maxSegmentDepth))
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	parsedABI, err := abi.JSON(strings.NewReader(PoolABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool ABI: %w", err)
	}

	p := &Poller{
		config:  cfg,
		client:  client,
		logger:  log,
		poolABI: parsedABI,
		tracer:  otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("uniswap-pool")
	p.cb = circuitbreaker.New[[]byte](cbCfg)

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Poller) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &pollerMetrics{}

	p.metrics.polls, err = meter.Int64Counter(
		"pool_polls_total",
		metric.WithDescription("Total pool state polls"),
	)
	if err != nil {
		return err
	}

	p.metrics.pollErrors, err = meter.Int64Counter(
		"pool_poll_errors_total",
		metric.WithDescription("Failed pool state polls"),
	)
	if err != nil {
		return err
	}

	p.metrics.pollLatency, err = meter.Float64Histogram(
		"pool_poll_latency_ms",
		metric.WithDescription("Pool poll latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.poolPrice, err = meter.Float64Gauge(
		"pool_price",
		metric.WithDescription("Current pool price in quote per base"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start runs the poll loop until ctx is cancelled. An immediate first poll
// warms the snapshot before the ticker takes over.
func (p *Poller) Start(ctx context.Context) {
	if err := p.pollOnce(ctx); err != nil {
		p.logger.Warn(ctx, "initial pool poll failed", "error", err)
	}

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.pollOnce(ctx); err != nil {
				p.logger.Warn(ctx, "pool poll failed", "error", err)
			}
		}
	}
}

// Latest returns the most recent snapshot, or an error if none exists yet.
func (p *Poller) Latest() (*domain.PoolState, error) {
	state := p.latest.Load()
	if state == nil {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("no pool snapshot available yet"))
	}
	return state, nil
}

// pollOnce fetches the full pool state and publishes it if valid.
func (p *Poller) pollOnce(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "pool.poll",
		trace.WithAttributes(attribute.String("pool", p.config.PoolAddress.Hex())),
	)
	defer span.End()

	start := time.Now()
	p.metrics.polls.Add(ctx, 1)

	state, err := p.fetchPoolState(ctx)
	if err != nil {
		p.metrics.pollErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "poll failed")
		return err
	}

	if err := state.Validate(); err != nil {
		p.metrics.pollErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid snapshot")
		return err
	}

	p.latest.Store(state)

	if price, err := state.HumanPrice(); err == nil {
		f, _ := price.Float64()
		p.metrics.poolPrice.Record(ctx, f)
		span.SetAttributes(attribute.Float64("price", f))
	}

	p.metrics.pollLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	span.SetStatus(codes.Ok, "polled")

	return nil
}

// fetchPoolState reads slot0, liquidity, and the boundary ticks around the
// current price, then assembles a snapshot.
func (p *Poller) fetchPoolState(ctx context.Context) (*domain.PoolState, error) {
	slot0, err := p.readSlot0(ctx)
	if err != nil {
		return nil, err
	}

	liquidity, err := p.readLiquidity(ctx)
	if err != nil {
		return nil, err
	}

	spacing := p.config.TickSpacing
	lowerTick := floorDiv(slot0.Tick, spacing) * spacing
	upperTick := lowerTick + spacing

	depth := p.config.SegmentDepth
	netsDown := make([]*big.Int, 0, depth)
	netsUp := make([]*big.Int, 0, depth)

	// Going down crosses lowerTick first; going up crosses upperTick.
	for k := 0; k < depth; k++ {
		info, err := p.readTick(ctx, lowerTick-k*spacing)
		if err != nil {
			return nil, err
		}
		netsDown = append(netsDown, info.LiquidityNet)

		info, err = p.readTick(ctx, upperTick+k*spacing)
		if err != nil {
			return nil, err
		}
		netsUp = append(netsUp, info.LiquidityNet)
	}

	return assemblePoolState(slot0, liquidity, lowerTick, upperTick, spacing, netsDown, netsUp,
		p.config.Token0Decimals, p.config.Token1Decimals), nil
}

// assemblePoolState builds the snapshot from raw chain data. Net liquidity
// is applied tick by tick in travel order; a running total that would go
// negative is clamped to zero.
func assemblePoolState(
	slot0 *Slot0Result,
	liquidity *big.Int,
	lowerTick, upperTick, spacing int,
	netsDown, netsUp []*big.Int,
	dec0, dec1 uint8,
) *domain.PoolState {
	state := &domain.PoolState{
		SqrtPriceX96:   slot0.SqrtPriceX96,
		Liquidity:      liquidity,
		Tick:           slot0.Tick,
		Token0Decimals: dec0,
		Token1Decimals: dec1,
		LowerBoundX96:  domain.SqrtPriceAtTick(lowerTick),
		UpperBoundX96:  domain.SqrtPriceAtTick(upperTick),
		ObservedAt:     time.Now(),
	}

	// Below the current range: crossing tick t downward removes its net
	// liquidity from the running total.
	running := new(big.Int).Set(liquidity)
	prevEnd := state.LowerBoundX96
	for k, net := range netsDown {
		running = new(big.Int).Sub(running, net)
		if running.Sign() < 0 {
			running = big.NewInt(0)
		}
		end := domain.SqrtPriceAtTick(lowerTick - (k+1)*spacing)
		state.SegmentsDown = append(state.SegmentsDown, domain.PriceSegment{
			StartX96:  prevEnd,
			EndX96:    end,
			Liquidity: new(big.Int).Set(running),
		})
		prevEnd = end
	}

	// Above the current range: crossing tick t upward adds its net
	// liquidity.
	running = new(big.Int).Set(liquidity)
	prevEnd = state.UpperBoundX96
	for k, net := range netsUp {
		running = new(big.Int).Add(running, net)
		if running.Sign() < 0 {
			running = big.NewInt(0)
		}
		end := domain.SqrtPriceAtTick(upperTick + (k+1)*spacing)
		state.SegmentsUp = append(state.SegmentsUp, domain.PriceSegment{
			StartX96:  prevEnd,
			EndX96:    end,
			Liquidity: new(big.Int).Set(running),
		})
		prevEnd = end
	}

	return state
}

func (p *Poller) readSlot0(ctx context.Context) (*Slot0Result, error) {
	outputs, err := p.call(ctx, "slot0")
	if err != nil {
		return nil, err
	}
	if len(outputs) < 2 {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("unexpected slot0 output length"))
	}

	sqrtPrice, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("slot0 sqrtPriceX96 has unexpected type"))
	}
	tick, ok := outputs[1].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("slot0 tick has unexpected type"))
	}

	return &Slot0Result{
		SqrtPriceX96: sqrtPrice,
		Tick:         int(tick.Int64()),
	}, nil
}

func (p *Poller) readLiquidity(ctx context.Context) (*big.Int, error) {
	outputs, err := p.call(ctx, "liquidity")
	if err != nil {
		return nil, err
	}
	if len(outputs) < 1 {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("unexpected liquidity output length"))
	}

	liquidity, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("liquidity has unexpected type"))
	}
	return liquidity, nil
}

func (p *Poller) readTick(ctx context.Context, tick int) (*TickInfo, error) {
	outputs, err := p.call(ctx, "ticks", big.NewInt(int64(tick)))
	if err != nil {
		return nil, err
	}
	if len(outputs) < 8 {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext("unexpected ticks output length"))
	}

	gross, _ := outputs[0].(*big.Int)
	net, ok := outputs[1].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithContext(fmt.Sprintf("ticks(%d) liquidityNet has unexpected type", tick)))
	}
	initialized, _ := outputs[7].(bool)

	return &TickInfo{
		LiquidityGross: gross,
		LiquidityNet:   net,
		Initialized:    initialized,
	}, nil
}

// call packs a pool method, executes it through the circuit breaker, and
// unpacks the outputs.
func (p *Poller) call(ctx context.Context, method string, args ...any) ([]any, error) {
	callData, err := p.poolABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	result, err := p.cb.Execute(func() ([]byte, error) {
		return p.client.CallContract(ctx, ethereum.CallMsg{
			To:   &p.config.PoolAddress,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("pool %s call failed", method)))
	}

	outputs, err := p.poolABI.Unpack(method, result)
	if err != nil {
		return nil, apperror.New(apperror.CodePoolStateFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to decode %s result", method)))
	}
	return outputs, nil
}

// floorDiv divides rounding toward negative infinity, which Go's integer
// division does not do for negative ticks.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
