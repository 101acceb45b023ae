// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow represents an opportunity in the list.
type OpportunityRow struct {
	Timestamp string
	Direction string
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	ExecPrice decimal.Decimal
	Pnl       decimal.Decimal
	Capped    bool
	Bounded   bool
}

// OpportunitiesComponent renders the opportunities list, newest first.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
	offset  int
	visible int
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:    make([]OpportunityRow, 0),
		maxRows: maxRows,
		visible: 12,
	}
}

// Add adds a new opportunity to the top of the list.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
	o.offset = 0
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = make([]OpportunityRow, 0)
	o.offset = 0
}

// ScrollUp moves the window toward newer rows.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown moves the window toward older rows.
func (o *OpportunitiesComponent) ScrollDown() {
	if o.offset+o.visible < len(o.rows) {
		o.offset++
	}
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	result := headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))) + "\n"

	if len(o.rows) == 0 {
		return result + dimStyle.Render("  No opportunities detected yet...")
	}

	result += "┌──────────┬───────────┬───────────┬───────────┬───────────┬──────────┬──────┐\n"
	result += "│   Time   │ Direction │    In     │    Out    │   Price   │   PnL    │ Fill │\n"
	result += "├──────────┼───────────┼───────────┼───────────┼───────────┼──────────┼──────┤\n"

	end := o.offset + o.visible
	if end > len(o.rows) {
		end = len(o.rows)
	}
	for _, row := range o.rows[o.offset:end] {
		pnlStyle := profitStyle
		if row.Pnl.IsNegative() {
			pnlStyle = lossStyle
		}

		fill := "full"
		if row.Capped {
			fill = "cap"
		} else if row.Bounded {
			fill = "edge"
		}

		result += fmt.Sprintf("│ %8s │%10s │%10s │%10s │%10s │%9s │ %-4s │\n",
			row.Timestamp,
			row.Direction,
			row.AmountIn.StringFixed(4),
			row.AmountOut.StringFixed(6),
			"$"+row.ExecPrice.StringFixed(2),
			pnlStyle.Render(fmt.Sprintf("$%.4f", row.Pnl.InexactFloat64())),
			fill,
		)
	}

	result += "└──────────┴───────────┴───────────┴───────────┴───────────┴──────────┴──────┘"

	return result
}
