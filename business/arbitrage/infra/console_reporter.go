// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Arbitrage Detector Started")
	fmt.Fprintln(r.out, "==========================")
	return nil
}

// Report outputs an arbitrage opportunity to the console.
func (r *ConsoleReporter) Report(opp *domain.Opportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Direction:      %s\n", opp.Direction.String())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  CEX (Binance):  $%s x %s\n", opp.CEXPrice.StringFixed(2), opp.CEXQty.StringFixed(4))
	fmt.Fprintf(r.out, "  DEX (Uniswap):  $%s\n", opp.DEXPrice.StringFixed(2))
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "SWAP LEG")
	fmt.Fprintf(r.out, "  Amount In:      %s\n", opp.AmountIn.String())
	fmt.Fprintf(r.out, "  Amount Out:     %s\n", opp.AmountOut.String())
	fmt.Fprintf(r.out, "  Exec Price:     $%s\n", opp.ExecutionPrice.StringFixed(2))
	switch {
	case opp.CappedByMax:
		fmt.Fprintln(r.out, "  Fill:           capped by CEX quantity")
	case opp.HitBoundary:
		fmt.Fprintln(r.out, "  Fill:           stopped at known liquidity edge")
	default:
		fmt.Fprintln(r.out, "  Fill:           reached target price")
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Gas Cost:       $%s\n", opp.GasCost.StringFixed(2))
	fmt.Fprintf(r.out, "  Net PnL:        $%s\n", opp.Pnl.StringFixed(4))
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateTick outputs the tick picture (no-op for console in detection mode).
func (r *ConsoleReporter) UpdateTick(update *domain.TickUpdate) {
	// Console reporter only outputs opportunities, not continuous tick updates
}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	status := "disconnected"
	if connected {
		if latency > 0 {
			status = fmt.Sprintf("connected (%s)", latency)
		} else {
			status = "connected"
		}
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Detector Stopped")
	return nil
}
