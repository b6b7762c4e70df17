package cycle

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, c Cycle) (string, error)
	Get(ctx context.Context, cycleID string) (Cycle, error)
	List(ctx context.Context, status string) ([]Cycle, error)
	SetStatus(ctx context.Context, cycleID, status string) error
	HasActive(ctx context.Context) (bool, error)

	// Close flips the cycle to CLOSED and locks every goal and actual
	// recorded in it, in one transaction.
	Close(ctx context.Context, cycleID string) error

	// ExpiredActive lists ACTIVE cycles whose end date has passed.
	ExpiredActive(ctx context.Context, now time.Time) ([]Cycle, error)
}
