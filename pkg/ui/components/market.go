// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// MarketRow holds the latest market picture for display. All values are
// pre-calculated by the domain, the UI only formats them.
type MarketRow struct {
	PoolPrice decimal.Decimal
	BidPrice  decimal.Decimal
	BidQty    decimal.Decimal
	AskPrice  decimal.Decimal
	AskQty    decimal.Decimal
	GasCost   decimal.Decimal
}

// MarketComponent renders the pool-vs-book price panel.
type MarketComponent struct {
	symbol string
	row    *MarketRow
}

// NewMarketComponent creates a new market component.
func NewMarketComponent(symbol string) *MarketComponent {
	return &MarketComponent{symbol: symbol}
}

// Update replaces the displayed market picture.
func (m *MarketComponent) Update(row MarketRow) {
	m.row = &row
}

// View renders the market component.
func (m *MarketComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("MARKET (%s)", m.symbol)))
	sb.WriteString("\n\n")

	if m.row == nil {
		sb.WriteString(dimStyle.Render("  Waiting for market data..."))
		return sb.String()
	}

	r := m.row
	sb.WriteString(fmt.Sprintf("  %-14s  %14s\n", "Pool (Uniswap)", "$"+r.PoolPrice.StringFixed(2)))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 46)) + "\n")

	bidSpread := spreadBps(r.BidPrice, r.PoolPrice)
	askSpread := spreadBps(r.AskPrice, r.PoolPrice)

	sb.WriteString(fmt.Sprintf("  %-14s  %14s  %8s  %s\n",
		"Bid (Binance)",
		"$"+r.BidPrice.StringFixed(2),
		r.BidQty.StringFixed(4),
		styleBps(bidSpread, positiveStyle, negativeStyle),
	))
	sb.WriteString(fmt.Sprintf("  %-14s  %14s  %8s  %s\n",
		"Ask (Binance)",
		"$"+r.AskPrice.StringFixed(2),
		r.AskQty.StringFixed(4),
		styleBps(askSpread, positiveStyle, negativeStyle),
	))

	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 46)) + "\n")
	sb.WriteString(fmt.Sprintf("  %-14s  %14s\n", "Gas cost", "$"+r.GasCost.StringFixed(2)))

	return sb.String()
}

// spreadBps returns (price-ref)/ref in basis points, zero when ref is zero.
func spreadBps(price, ref decimal.Decimal) decimal.Decimal {
	if ref.IsZero() || price.IsZero() {
		return decimal.Zero
	}
	return price.Sub(ref).Div(ref).Mul(decimal.NewFromInt(10000))
}

func styleBps(bps decimal.Decimal, pos, neg lipgloss.Style) string {
	s := fmt.Sprintf("%+.1f bps", bps.InexactFloat64())
	if bps.IsNegative() {
		return neg.Render(s)
	}
	return pos.Render(s)
}
