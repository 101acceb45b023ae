// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"time"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
	"github.com/fd1az/arb-detector/pkg/ui"
)

// TUIReporter implements Reporter by forwarding events to the Bubble Tea
// program as messages. The program itself is run by main: reporters must
// not own the terminal.
type TUIReporter struct {
	symbol string
}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter(symbol string) *TUIReporter {
	return &TUIReporter{symbol: symbol}
}

// Start initializes the TUI reporter.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// Report sends an arbitrage opportunity to the TUI.
func (r *TUIReporter) Report(opp *domain.Opportunity) {
	ui.Send(ui.OpportunityMsg{Opportunity: opp})
}

// UpdateTick sends the per-tick market picture to the TUI.
func (r *TUIReporter) UpdateTick(update *domain.TickUpdate) {
	ui.Send(ui.TickUpdateMsg{Update: update})
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	ui.Send(ui.ConnectionStatusMsg{
		Name:      name,
		Connected: connected,
		Latency:   latency,
	})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	if ui.Program != nil {
		ui.Program.Quit()
	}
	return nil
}
