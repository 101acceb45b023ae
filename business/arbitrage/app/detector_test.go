package app

import (
	"context"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
	blockchainApp "github.com/fd1az/arb-detector/business/blockchain/app"
	blockchainDomain "github.com/fd1az/arb-detector/business/blockchain/domain"
	dexApp "github.com/fd1az/arb-detector/business/dex/app"
	dexDomain "github.com/fd1az/arb-detector/business/dex/domain"
	pricingApp "github.com/fd1az/arb-detector/business/pricing/app"
	pricingDomain "github.com/fd1az/arb-detector/business/pricing/domain"
	"github.com/fd1az/arb-detector/internal/apperror"
	"github.com/fd1az/arb-detector/internal/logger"
)

type fakePoolSource struct {
	pool *dexDomain.PoolState
	err  error
}

func (f *fakePoolSource) Latest() (*dexDomain.PoolState, error) {
	return f.pool, f.err
}

type fakeCEX struct {
	book *pricingDomain.BookDepth
	err  error
}

func (f *fakeCEX) Connect(ctx context.Context) error { return nil }
func (f *fakeCEX) IsConnected() bool                 { return true }
func (f *fakeCEX) Close() error                      { return nil }
func (f *fakeCEX) GetBookDepth(ctx context.Context) (*pricingDomain.BookDepth, error) {
	return f.book, f.err
}

type fakeOracle struct {
	priceWei *big.Int
	err      error
}

func (f *fakeOracle) GetGasPrice(ctx context.Context) (*blockchainDomain.GasPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return blockchainDomain.NewGasPrice(f.priceWei), nil
}

type recordingReporter struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	opps     []*domain.Opportunity
	ticks    []*domain.TickUpdate
	statuses map[string]bool
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{statuses: make(map[string]bool)}
}

func (r *recordingReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	return nil
}

func (r *recordingReporter) Report(opp *domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opps = append(r.opps, opp)
}

func (r *recordingReporter) UpdateTick(update *domain.TickUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, update)
}

func (r *recordingReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = connected
}

func (r *recordingReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	return nil
}

func newTestDetector(t *testing.T, source dexApp.PoolSource, cex pricingApp.CEXProvider, oracle blockchainApp.GasOracle, reporter Reporter) *Detector {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	evaluator := newTestEvaluator(t, "0")
	detector, err := NewDetector(
		dexApp.NewDexService(source),
		pricingApp.NewPricingService(cex, log),
		blockchainApp.NewBlockchainService(oracle, blockchainApp.GasSettings{
			Units:      150000,
			Multiplier: d("1.2"),
		}),
		evaluator,
		reporter,
		DetectorConfig{TickInterval: time.Second},
		log,
	)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return detector
}

func TestDetector_TickReportsOpportunity(t *testing.T) {
	pool := poolAt(t, "4200", "1800000000000000000")
	book := bookWith(
		[]pricingDomain.Level{{Price: d("4225"), Quantity: d("5")}},
		[]pricingDomain.Level{{Price: d("4226"), Quantity: d("2")}},
	)
	reporter := newRecordingReporter()

	detector := newTestDetector(t,
		&fakePoolSource{pool: pool},
		&fakeCEX{book: book},
		&fakeOracle{priceWei: big.NewInt(0)},
		reporter,
	)

	detector.tick(context.Background())

	if len(reporter.ticks) != 1 {
		t.Fatalf("expected 1 tick update, got %d", len(reporter.ticks))
	}
	update := reporter.ticks[0]
	if !update.BidPrice.Equal(d("4225")) || !update.AskPrice.Equal(d("4226")) {
		t.Errorf("tick update prices off: bid %s ask %s", update.BidPrice, update.AskPrice)
	}
	if !update.GasCost.IsZero() {
		t.Errorf("expected zero gas cost, got %s", update.GasCost)
	}

	if len(reporter.opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(reporter.opps))
	}
	if reporter.opps[0].Direction != domain.DirectionDEXToCEX {
		t.Errorf("direction: got %s", reporter.opps[0].Direction)
	}

	if connected, ok := reporter.statuses["binance"]; !ok || !connected {
		t.Error("expected binance reported connected")
	}
}

func TestDetector_TickSkipsOnMissingPool(t *testing.T) {
	reporter := newRecordingReporter()

	detector := newTestDetector(t,
		&fakePoolSource{err: apperror.New(apperror.CodePoolStateFetchFailed)},
		&fakeCEX{book: bookWith(nil, nil)},
		&fakeOracle{priceWei: big.NewInt(0)},
		reporter,
	)

	detector.tick(context.Background())

	if len(reporter.ticks) != 0 || len(reporter.opps) != 0 {
		t.Errorf("expected nothing reported, got %d ticks %d opps",
			len(reporter.ticks), len(reporter.opps))
	}
}

// Gas oracle failures degrade to zero cost instead of killing the tick.
func TestDetector_TickSurvivesGasFailure(t *testing.T) {
	pool := poolAt(t, "4200", "1800000000000000000")
	book := bookWith(
		[]pricingDomain.Level{{Price: d("4225"), Quantity: d("5")}},
		[]pricingDomain.Level{{Price: d("4226"), Quantity: d("2")}},
	)
	reporter := newRecordingReporter()

	detector := newTestDetector(t,
		&fakePoolSource{pool: pool},
		&fakeCEX{book: book},
		&fakeOracle{err: apperror.New(apperror.CodeGasEstimationFailed)},
		reporter,
	)

	detector.tick(context.Background())

	if len(reporter.ticks) != 1 {
		t.Fatalf("expected 1 tick update, got %d", len(reporter.ticks))
	}
	if len(reporter.opps) != 1 {
		t.Errorf("expected 1 opportunity at zero gas, got %d", len(reporter.opps))
	}
}

func TestDetector_StartStop(t *testing.T) {
	pool := poolAt(t, "4200", "1800000000000000000")
	reporter := newRecordingReporter()

	detector := newTestDetector(t,
		&fakePoolSource{pool: pool},
		&fakeCEX{book: bookWith(nil, nil)},
		&fakeOracle{priceWei: big.NewInt(0)},
		reporter,
	)
	detector.config.TickInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := detector.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := detector.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if !reporter.started || !reporter.stopped {
		t.Errorf("reporter lifecycle: started=%v stopped=%v", reporter.started, reporter.stopped)
	}
}
