package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arb-detector/internal/apperror"
	"github.com/fd1az/arb-detector/internal/httpclient"
	"github.com/fd1az/arb-detector/internal/logger"
	"github.com/fd1az/arb-detector/internal/ratelimit"
)

const (
	// Binance REST API endpoint
	BaseAPIURL = "https://api.binance.com"

	depthEndpoint = "/api/v3/depth"

	httpTimeout = 10 * time.Second

	// Spot REST limit is 6000 request weight per minute; depth at 20
	// levels costs 5, so stay far below it.
	requestsPerMinute = 300
)

// HTTPClientConfig holds configuration for the Binance REST client.
type HTTPClientConfig struct {
	BaseURL string        // API base URL (empty = default)
	Timeout time.Duration // Request timeout
}

// DefaultHTTPClientConfig returns sensible defaults.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		BaseURL: BaseAPIURL,
		Timeout: httpTimeout,
	}
}

// HTTPClient provides Binance REST API access for fallback scenarios.
type HTTPClient struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewHTTPClient creates a new Binance REST client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid binance REST URL"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("failed to build binance REST client"))
	}

	return &HTTPClient{
		client:  client,
		limiter: ratelimit.New(requestsPerMinute),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// DepthResponse is the REST API response for orderbook depth.
type DepthResponse struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"` // [[price, qty], ...]
	Asks         [][]string `json:"asks"` // [[price, qty], ...]
}

// ToPartialDepthEvent converts a DepthResponse to a PartialDepthEvent so the
// REST payload flows through the same path as WebSocket data.
func (d *DepthResponse) ToPartialDepthEvent(symbol string) *PartialDepthEvent {
	return &PartialDepthEvent{
		LastUpdateID: d.LastUpdateID,
		Bids:         d.Bids,
		Asks:         d.Asks,
		Symbol:       symbol,
	}
}

// BinanceAPIError is an error payload from the Binance REST API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// depthErrorHandler decodes Binance error payloads on non-2xx responses.
func depthErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr BinanceAPIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != 0 {
		return &apiErr
	}
	return apperror.New(apperror.CodeBinanceAPIError,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, string(body))))
}

// GetDepth fetches the orderbook depth for a symbol. Used as a fallback
// when WebSocket data is stale or unavailable.
func (c *HTTPClient) GetDepth(ctx context.Context, symbol string, limit int) (*DepthResponse, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.get_depth",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	// Binance accepts 5, 10, 20, 50, 100, 500, 1000, 5000.
	validLimits := map[int]bool{5: true, 10: true, 20: true, 50: true, 100: true, 500: true, 1000: true, 5000: true}
	if !validLimits[limit] {
		limit = 20
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result DepthResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(depthErrorHandler),
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "depth")),
	).
		SetQueryParam("symbol", symbol).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&result).
		Get(ctx, depthEndpoint)
	if err != nil {
		span.RecordError(err)
		if _, ok := err.(*BinanceAPIError); ok {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch depth from REST API"))
	}

	if resp.Result() == nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("failed to decode depth response"))
	}

	span.SetAttributes(
		attribute.Int("bids", len(result.Bids)),
		attribute.Int("asks", len(result.Asks)),
		attribute.Int64("last_update_id", result.LastUpdateID),
	)

	c.logger.Debug(ctx, "fetched depth via HTTP",
		"symbol", symbol,
		"bids", len(result.Bids),
		"asks", len(result.Asks))

	return &result, nil
}
