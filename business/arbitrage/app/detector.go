package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
	blockchainApp "github.com/fd1az/arb-detector/business/blockchain/app"
	dexApp "github.com/fd1az/arb-detector/business/dex/app"
	pricingApp "github.com/fd1az/arb-detector/business/pricing/app"
	"github.com/fd1az/arb-detector/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arb-detector/business/arbitrage/app"
	meterName  = "github.com/fd1az/arb-detector/business/arbitrage/app"
)

// DetectorConfig holds configuration for the detection loop.
type DetectorConfig struct {
	TickInterval time.Duration
}

// detectorMetrics holds OTEL metric instruments.
type detectorMetrics struct {
	ticks         metric.Int64Counter
	skippedTicks  metric.Int64Counter
	opportunities metric.Int64Counter
	bestPnl       metric.Float64Gauge
}

// Detector drives the evaluation loop: every tick it takes the latest pool
// and book snapshots, prices gas, and reports what clears the threshold.
type Detector struct {
	dex        *dexApp.DexService
	pricing    *pricingApp.PricingService
	blockchain *blockchainApp.BlockchainService
	evaluator  *Evaluator
	reporter   Reporter
	config     DetectorConfig
	logger     logger.LoggerInterface

	tracer  trace.Tracer
	metrics *detectorMetrics
}

// NewDetector creates a new Detector.
func NewDetector(
	dex *dexApp.DexService,
	pricing *pricingApp.PricingService,
	blockchain *blockchainApp.BlockchainService,
	evaluator *Evaluator,
	reporter Reporter,
	config DetectorConfig,
	log logger.LoggerInterface,
) (*Detector, error) {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}

	d := &Detector{
		dex:        dex,
		pricing:    pricing,
		blockchain: blockchain,
		evaluator:  evaluator,
		reporter:   reporter,
		config:     config,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
	}

	if err := d.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return d, nil
}

func (d *Detector) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	d.metrics = &detectorMetrics{}

	d.metrics.ticks, err = meter.Int64Counter(
		"detector_ticks_total",
		metric.WithDescription("Total evaluation ticks"),
	)
	if err != nil {
		return err
	}

	d.metrics.skippedTicks, err = meter.Int64Counter(
		"detector_skipped_ticks_total",
		metric.WithDescription("Ticks skipped for missing or invalid inputs"),
	)
	if err != nil {
		return err
	}

	d.metrics.opportunities, err = meter.Int64Counter(
		"detector_opportunities_total",
		metric.WithDescription("Opportunities clearing the PnL threshold"),
	)
	if err != nil {
		return err
	}

	d.metrics.bestPnl, err = meter.Float64Gauge(
		"detector_best_pnl",
		metric.WithDescription("Best PnL seen on the last tick, quote units"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start begins the detection loop. It blocks until ctx is cancelled.
func (d *Detector) Start(ctx context.Context) error {
	d.logger.Info(ctx, "starting detector", "tick_interval", d.config.TickInterval.String())

	if err := d.reporter.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(d.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "detector stopping", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick runs one evaluation pass. Any missing or invalid input skips the
// tick with a warning; the loop never dies on bad data.
func (d *Detector) tick(ctx context.Context) {
	ctx, span := d.tracer.Start(ctx, "detector.tick")
	defer span.End()

	d.metrics.ticks.Add(ctx, 1)

	pool, err := d.dex.LatestPool(ctx)
	if err != nil {
		d.skip(ctx, span, "no pool snapshot", err)
		return
	}

	book, err := d.pricing.GetBookDepth(ctx)
	if err != nil {
		d.skip(ctx, span, "no book snapshot", err)
		return
	}

	poolPrice, err := pool.HumanPrice()
	if err != nil {
		d.skip(ctx, span, "invalid pool price", err)
		return
	}

	// Gas pricing failures degrade to zero cost rather than skipping:
	// a stale RPC should not blind the detector.
	gasCost, err := d.blockchain.GasCostInQuote(ctx, poolPrice)
	if err != nil {
		d.logger.Warn(ctx, "gas pricing failed, assuming zero", "error", err)
		gasCost = decimal.Zero
	}

	opps, err := d.evaluator.Evaluate(ctx, pool, book, gasCost)
	if err != nil {
		d.skip(ctx, span, "evaluation failed", err)
		return
	}

	update := &domain.TickUpdate{
		Timestamp: time.Now(),
		PoolPrice: poolPrice,
		GasCost:   gasCost,
	}
	if bid, ok := book.BestBid(); ok {
		update.BidPrice, update.BidQty = bid.Price, bid.Quantity
	}
	if ask, ok := book.BestAsk(); ok {
		update.AskPrice, update.AskQty = ask.Price, ask.Quantity
	}
	d.reporter.UpdateTick(update)
	d.reporter.UpdateConnectionStatus("binance", d.pricing.Connected(), 0)

	best := decimal.Zero
	for i := range opps {
		opp := &opps[i]
		d.metrics.opportunities.Add(ctx, 1,
			metric.WithAttributes(attribute.String("direction", string(opp.Direction))))
		d.reporter.Report(opp)
		d.logger.Info(ctx, "opportunity detected",
			"direction", string(opp.Direction),
			"amount_in", opp.AmountIn.String(),
			"amount_out", opp.AmountOut.String(),
			"pnl", opp.Pnl.String(),
			"capped", opp.CappedByMax,
			"hit_boundary", opp.HitBoundary)
		if opp.Pnl.GreaterThan(best) {
			best = opp.Pnl
		}
	}

	f, _ := best.Float64()
	d.metrics.bestPnl.Record(ctx, f)

	span.SetAttributes(
		attribute.Int("opportunities", len(opps)),
		attribute.Float64("best_pnl", f),
	)
}

func (d *Detector) skip(ctx context.Context, span trace.Span, reason string, err error) {
	d.metrics.skippedTicks.Add(ctx, 1)
	span.AddEvent("tick_skipped", trace.WithAttributes(attribute.String("reason", reason)))
	d.logger.Warn(ctx, "tick skipped: "+reason, "error", err)
}

// Stop gracefully shuts down the detector's reporter.
func (d *Detector) Stop() error {
	return d.reporter.Stop()
}
