// Package binance implements the CEXProvider interface for Binance.
package binance

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// WSRequest is a WebSocket subscription request.
type WSRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params,omitempty"`
	ID     int64    `json:"id"`
}

// WSResponse is a WebSocket subscription response.
type WSResponse struct {
	Result json.RawMessage `json:"result"`
	ID     int64           `json:"id"`
}

// StreamEvent is the combined-streams wrapper for all stream messages.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// PartialDepthEvent is a partial book depth snapshot.
// Stream: <symbol>@depth5/@depth10/@depth20 with optional @100ms speed.
// The payload carries no symbol; it is set from the stream name.
type PartialDepthEvent struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
	Symbol       string     `json:"-"`
}

// BookTickerEvent is a best bid/ask update.
// Stream: <symbol>@bookTicker
type BookTickerEvent struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// ParseBidPrice parses the best bid price.
func (e *BookTickerEvent) ParseBidPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.BidPrice)
}

// ParseAskPrice parses the best ask price.
func (e *BookTickerEvent) ParseAskPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.AskPrice)
}

// ParseBidQty parses the best bid quantity.
func (e *BookTickerEvent) ParseBidQty() (decimal.Decimal, error) {
	return decimal.NewFromString(e.BidQty)
}

// ParseAskQty parses the best ask quantity.
func (e *BookTickerEvent) ParseAskQty() (decimal.Decimal, error) {
	return decimal.NewFromString(e.AskQty)
}

// OrderbookLevel is a raw price level parsed from Binance payloads.
type OrderbookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// ParseOrderbookLevels parses raw [price, qty] pairs. Zero-quantity levels
// are removed levels and get skipped.
func ParseOrderbookLevels(raw [][]string) ([]OrderbookLevel, error) {
	levels := make([]OrderbookLevel, 0, len(raw))
	for _, r := range raw {
		if len(r) < 2 {
			continue
		}
		price, err := decimal.NewFromString(r[0])
		if err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(r[1])
		if err != nil {
			return nil, err
		}
		if qty.IsZero() {
			continue
		}
		levels = append(levels, OrderbookLevel{Price: price, Quantity: qty})
	}
	return levels, nil
}

// DepthStream returns the partial book depth stream name for a symbol.
// Uses @depth<levels> which sends complete top-of-book snapshots.
func DepthStream(symbol string, levels, speedMs int) string {
	return lowercase(symbol) + "@depth" + strconv.Itoa(levels) + "@" + strconv.Itoa(speedMs) + "ms"
}

// BookTickerStream returns the bookTicker stream name for a symbol.
func BookTickerStream(symbol string) string {
	return lowercase(symbol) + "@bookTicker"
}

func lowercase(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 32
		}
	}
	return string(b)
}
