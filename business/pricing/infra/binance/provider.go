package binance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-detector/business/pricing/app"
	"github.com/fd1az/arb-detector/business/pricing/domain"
	"github.com/fd1az/arb-detector/internal/apperror"
	"github.com/fd1az/arb-detector/internal/logger"
)

// Ensure Provider implements CEXProvider.
var _ app.CEXProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the Binance provider.
type ProviderConfig struct {
	WebSocketURL   string        // WebSocket base URL (empty = default)
	HTTPURL        string        // REST API base URL (empty = default)
	Symbol         string        // Trading symbol (e.g., "ETHUSDC")
	DepthLevels    int           // Orderbook levels to maintain (5, 10, or 20)
	DepthSpeedMs   int           // Depth update speed (100ms recommended)
	StaleTimeout   time.Duration // How long before data is considered stale
	EnableFallback bool          // Enable REST fallback when WS data is stale
}

// DefaultProviderConfig returns sensible defaults.
func DefaultProviderConfig(symbol string) ProviderConfig {
	return ProviderConfig{
		Symbol:         symbol,
		DepthLevels:    20,
		DepthSpeedMs:   100,
		StaleTimeout:   5 * time.Second,
		EnableFallback: true,
	}
}

// bookState holds the current orderbook for the symbol.
type bookState struct {
	bids       []domain.Level
	asks       []domain.Level
	lastUpdate time.Time
	mu         sync.RWMutex
}

// Provider streams the Binance book for a single symbol and serves
// point-in-time depth snapshots.
type Provider struct {
	config     ProviderConfig
	logger     logger.LoggerInterface
	client     *Client
	httpClient *HTTPClient

	book bookState

	tracer trace.Tracer
}

// NewProvider creates a new Binance CEX provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	wsURL := cfg.WebSocketURL
	if wsURL == "" {
		wsURL = BaseWSURL
	}
	if cfg.DepthLevels == 0 {
		cfg.DepthLevels = 20
	}

	clientCfg := ClientConfig{
		BaseURL:      wsURL,
		Symbol:       cfg.Symbol,
		DepthLevels:  cfg.DepthLevels,
		DepthSpeedMs: cfg.DepthSpeedMs,
		WriteTimeout: 10 * time.Second,
	}

	client, err := NewClient(clientCfg, log)
	if err != nil {
		return nil, err
	}

	var httpClient *HTTPClient
	if cfg.EnableFallback {
		httpCfg := HTTPClientConfig{BaseURL: cfg.HTTPURL}
		httpClient, err = NewHTTPClient(httpCfg, log)
		if err != nil {
			log.Warn(context.Background(), "failed to create HTTP fallback client", "error", err)
			httpClient = nil
		}
	}

	p := &Provider{
		config:     cfg,
		logger:     log,
		client:     client,
		httpClient: httpClient,
		tracer:     otel.Tracer(tracerName),
	}

	client.OnBookTicker(p.handleBookTicker)
	client.OnDepthUpdate(p.handleDepthUpdate)

	return p, nil
}

// Connect establishes the stream connection to Binance.
func (p *Provider) Connect(ctx context.Context) error {
	return p.client.Connect(ctx)
}

// Close closes the provider.
func (p *Provider) Close() error {
	return p.client.Close()
}

// IsConnected reports whether the stream connection is up.
func (p *Provider) IsConnected() bool {
	return p.client.IsConnected()
}

// GetBookDepth returns the current book snapshot. Stale or missing stream
// data falls back to the REST API when enabled.
func (p *Provider) GetBookDepth(ctx context.Context) (*domain.BookDepth, error) {
	ctx, span := p.tracer.Start(ctx, "binance.get_book_depth",
		trace.WithAttributes(attribute.String("symbol", p.config.Symbol)),
	)
	defer span.End()

	p.book.mu.RLock()
	isStale := time.Since(p.book.lastUpdate) > p.config.StaleTimeout
	empty := len(p.book.bids) == 0 && len(p.book.asks) == 0
	p.book.mu.RUnlock()

	if isStale || empty {
		span.SetAttributes(attribute.Bool("stale", isStale))

		if p.httpClient != nil {
			p.logger.Debug(ctx, "book stale or empty, using HTTP fallback", "symbol", p.config.Symbol)
			return p.getBookViaHTTP(ctx, span)
		}

		if empty {
			return nil, apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithContext(fmt.Sprintf("no book data for %s", p.config.Symbol)))
		}
		return nil, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithContext(fmt.Sprintf("book stale for %s", p.config.Symbol)))
	}

	p.book.mu.RLock()
	defer p.book.mu.RUnlock()

	book := &domain.BookDepth{
		Symbol:    p.config.Symbol,
		Timestamp: p.book.lastUpdate,
		Bids:      make([]domain.Level, len(p.book.bids)),
		Asks:      make([]domain.Level, len(p.book.asks)),
	}
	copy(book.Bids, p.book.bids)
	copy(book.Asks, p.book.asks)

	span.SetAttributes(
		attribute.Int("bids", len(book.Bids)),
		attribute.Int("asks", len(book.Asks)),
		attribute.String("source", "websocket"),
	)

	return book, nil
}

// getBookViaHTTP fetches the book via REST API fallback.
func (p *Provider) getBookViaHTTP(ctx context.Context, span trace.Span) (*domain.BookDepth, error) {
	depth, err := p.httpClient.GetDepth(ctx, p.config.Symbol, p.config.DepthLevels)
	if err != nil {
		return nil, err
	}

	bids, asks, err := parseSides(depth.Bids, depth.Asks)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p.book.mu.Lock()
	p.book.bids = bids
	p.book.asks = asks
	p.book.lastUpdate = now
	p.book.mu.Unlock()

	book := &domain.BookDepth{
		Symbol:    p.config.Symbol,
		Timestamp: now,
		Bids:      bids,
		Asks:      asks,
	}

	span.SetAttributes(
		attribute.Int("bids", len(book.Bids)),
		attribute.Int("asks", len(book.Asks)),
		attribute.String("source", "http_fallback"),
	)

	p.logger.Info(ctx, "book retrieved via HTTP fallback",
		"symbol", p.config.Symbol,
		"bids", len(book.Bids),
		"asks", len(book.Asks))

	return book, nil
}

// handleBookTicker updates the top of book from bookTicker events.
func (p *Provider) handleBookTicker(event *BookTickerEvent) {
	ctx := context.Background()

	if event.Symbol != "" && event.Symbol != p.config.Symbol {
		return
	}

	bidPrice, err := event.ParseBidPrice()
	if err != nil {
		p.logger.Debug(ctx, "failed to parse bid price", "error", err)
		return
	}
	bidQty, err := event.ParseBidQty()
	if err != nil {
		return
	}
	askPrice, err := event.ParseAskPrice()
	if err != nil {
		return
	}
	askQty, err := event.ParseAskQty()
	if err != nil {
		return
	}

	p.book.mu.Lock()
	if len(p.book.bids) > 0 {
		p.book.bids[0] = domain.Level{Price: bidPrice, Quantity: bidQty}
	} else {
		p.book.bids = []domain.Level{{Price: bidPrice, Quantity: bidQty}}
	}
	if len(p.book.asks) > 0 {
		p.book.asks[0] = domain.Level{Price: askPrice, Quantity: askQty}
	} else {
		p.book.asks = []domain.Level{{Price: askPrice, Quantity: askQty}}
	}
	p.book.lastUpdate = time.Now()
	p.book.mu.Unlock()
}

// handleDepthUpdate replaces the whole book with the snapshot received.
// Partial depth streams send complete top-N snapshots, not diffs.
func (p *Provider) handleDepthUpdate(event *PartialDepthEvent) {
	ctx := context.Background()

	if event.Symbol != "" && event.Symbol != p.config.Symbol {
		return
	}

	bids, asks, err := parseSides(event.Bids, event.Asks)
	if err != nil {
		p.logger.Debug(ctx, "failed to parse depth snapshot", "error", err)
		return
	}

	p.book.mu.Lock()
	p.book.bids = bids
	p.book.asks = asks
	p.book.lastUpdate = time.Now()
	p.book.mu.Unlock()
}

// parseSides converts raw [price, qty] pairs into domain levels.
func parseSides(rawBids, rawAsks [][]string) ([]domain.Level, []domain.Level, error) {
	bidLevels, err := ParseOrderbookLevels(rawBids)
	if err != nil {
		return nil, nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithCause(err),
			apperror.WithContext("failed to parse bid levels"))
	}
	askLevels, err := ParseOrderbookLevels(rawAsks)
	if err != nil {
		return nil, nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithCause(err),
			apperror.WithContext("failed to parse ask levels"))
	}

	bids := make([]domain.Level, 0, len(bidLevels))
	for _, l := range bidLevels {
		bids = append(bids, domain.Level{Price: l.Price, Quantity: l.Quantity})
	}
	asks := make([]domain.Level, 0, len(askLevels))
	for _, l := range askLevels {
		asks = append(asks, domain.Level{Price: l.Price, Quantity: l.Quantity})
	}
	return bids, asks, nil
}
