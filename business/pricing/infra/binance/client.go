package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-detector/internal/apperror"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/wsconn"
)

const (
	tracerName = "binance"
	meterName  = "binance"

	// Binance WebSocket endpoints
	BaseWSURL     = "wss://stream.binance.com:9443"
	DataStreamURL = "wss://data-stream.binance.vision"

	// Binance drops connections without traffic for ~3 minutes.
	keepAliveInterval = 2 * time.Minute
)

// ClientConfig holds configuration for the Binance WebSocket client.
type ClientConfig struct {
	BaseURL      string // WebSocket base URL
	Symbol       string // Symbol to subscribe (e.g., "ETHUSDC")
	DepthLevels  int    // Partial depth levels (5, 10, or 20)
	DepthSpeedMs int    // Depth update speed (100 or 1000)
	WriteTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(symbol string) ClientConfig {
	return ClientConfig{
		BaseURL:      BaseWSURL,
		Symbol:       symbol,
		DepthLevels:  20,
		DepthSpeedMs: 100,
		WriteTimeout: 10 * time.Second,
	}
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	messagesReceived metric.Int64Counter
	depthUpdates     metric.Int64Counter
	bookTickers      metric.Int64Counter
	parseErrors      metric.Int64Counter
}

// Client is a Binance WebSocket client for a single symbol.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onDepthUpdate func(*PartialDepthEvent)
	onBookTicker  func(*BookTickerEvent)
	handlersMu    sync.RWMutex

	nextID        atomic.Int64
	stopKeepAlive chan struct{}

	tracer  trace.Tracer
	metrics *clientMetrics

	running atomic.Bool
}

// NewClient creates a new Binance WebSocket client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.Symbol == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("no symbol configured"))
	}

	c := &Client{
		config:        cfg,
		logger:        log,
		stopKeepAlive: make(chan struct{}),
		tracer:        otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.messagesReceived, err = meter.Int64Counter(
		"binance_messages_total",
		metric.WithDescription("Total messages received"),
	)
	if err != nil {
		return err
	}

	c.metrics.depthUpdates, err = meter.Int64Counter(
		"binance_depth_updates_total",
		metric.WithDescription("Total depth updates received"),
	)
	if err != nil {
		return err
	}

	c.metrics.bookTickers, err = meter.Int64Counter(
		"binance_book_tickers_total",
		metric.WithDescription("Total book ticker updates received"),
	)
	if err != nil {
		return err
	}

	c.metrics.parseErrors, err = meter.Int64Counter(
		"binance_parse_errors_total",
		metric.WithDescription("Message parse errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// OnDepthUpdate registers a handler for partial depth snapshots.
func (c *Client) OnDepthUpdate(handler func(*PartialDepthEvent)) {
	c.handlersMu.Lock()
	c.onDepthUpdate = handler
	c.handlersMu.Unlock()
}

// OnBookTicker registers a handler for book ticker events.
func (c *Client) OnBookTicker(handler func(*BookTickerEvent)) {
	c.handlersMu.Lock()
	c.onBookTicker = handler
	c.handlersMu.Unlock()
}

// Connect establishes the WebSocket connection. The combined-streams URL
// auto-subscribes to bookTicker and partial depth for the symbol.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "binance.connect",
		trace.WithAttributes(attribute.String("symbol", c.config.Symbol)),
	)
	defer span.End()

	wsURL, err := c.buildStreamURL()
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "binance")
	wsCfg.WriteTimeout = c.config.WriteTimeout

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeBinanceConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}

	conn.OnMessage(c.handleMessage)

	if err := conn.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeBinanceConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to Binance"))
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.running.Store(true)
	go c.keepAlive(ctx)

	c.logger.Info(ctx, "binance client connected",
		"url", wsURL,
		"symbol", c.config.Symbol)

	return nil
}

// buildStreamURL constructs the combined streams WebSocket URL.
func (c *Client) buildStreamURL() (string, error) {
	streams := []string{
		BookTickerStream(c.config.Symbol),
		DepthStream(c.config.Symbol, c.config.DepthLevels, c.config.DepthSpeedMs),
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")

	return u.String(), nil
}

// handleMessage processes incoming WebSocket messages.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	c.metrics.messagesReceived.Add(ctx, 1)

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Stream == "" {
		// Might be a subscription response
		var resp WSResponse
		if json.Unmarshal(data, &resp) == nil {
			c.logger.Debug(ctx, "subscription response received")
			return
		}
		c.metrics.parseErrors.Add(ctx, 1)
		c.logger.Debug(ctx, "failed to parse message", "data", string(data[:min(len(data), 500)]))
		return
	}

	c.routeStreamEvent(ctx, &event)
}

// routeStreamEvent routes the event to the appropriate handler.
func (c *Client) routeStreamEvent(ctx context.Context, event *StreamEvent) {
	stream := event.Stream

	switch {
	case strings.HasSuffix(stream, "@bookTicker"):
		var ticker BookTickerEvent
		if err := json.Unmarshal(event.Data, &ticker); err != nil {
			c.metrics.parseErrors.Add(ctx, 1)
			return
		}
		c.metrics.bookTickers.Add(ctx, 1)
		c.handlersMu.RLock()
		handler := c.onBookTicker
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(&ticker)
		}

	case strings.Contains(stream, "@depth"):
		var depth PartialDepthEvent
		if err := json.Unmarshal(event.Data, &depth); err != nil {
			c.metrics.parseErrors.Add(ctx, 1)
			c.logger.Warn(ctx, "failed to parse partial depth", "error", err)
			return
		}
		depth.Symbol = extractSymbolFromStream(stream)
		c.metrics.depthUpdates.Add(ctx, 1)
		c.handlersMu.RLock()
		handler := c.onDepthUpdate
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(&depth)
		}
	}
}

// keepAlive sends periodic requests so Binance keeps the connection open.
func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopKeepAlive:
			return
		case <-ticker.C:
			if !c.running.Load() {
				return
			}

			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn != nil {
				req := WSRequest{
					Method: "LIST_SUBSCRIPTIONS",
					ID:     c.nextID.Add(1),
				}
				if err := conn.SendJSON(ctx, req); err != nil {
					c.logger.Warn(ctx, "keep-alive failed", "error", err)
				}
			}
		}
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn != nil {
			return conn.Close()
		}
		return nil
	}
	close(c.stopKeepAlive)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// extractSymbolFromStream extracts the symbol from a stream name.
// Example: "ethusdc@depth20@100ms" -> "ETHUSDC"
func extractSymbolFromStream(stream string) string {
	idx := strings.Index(stream, "@")
	if idx > 0 {
		return strings.ToUpper(stream[:idx])
	}
	return stream
}
