// Package app contains application services and port definitions for the dex context.
package app

import (
	"github.com/fd1az/arb-detector/business/dex/domain"
)

// PoolSource is the port for pool state snapshots.
type PoolSource interface {
	// Latest returns the most recent pool snapshot, or an error if none
	// has been captured yet.
	Latest() (*domain.PoolState, error)
}
