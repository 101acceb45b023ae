package app

import (
	"context"
	"time"

	"github.com/fd1az/arb-detector/business/arbitrage/domain"
)

// Reporter is the port for opportunity output surfaces.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a detected opportunity to be displayed/logged.
	Report(opp *domain.Opportunity)

	// UpdateTick publishes the per-tick market picture.
	UpdateTick(update *domain.TickUpdate)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
