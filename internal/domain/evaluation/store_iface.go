package evaluation

import (
	"context"

	"kpm/internal/domain/kpi"
)

type StoreAPI interface {
	// Upsert writes the computed evaluation for a (user, cycle) pair,
	// creating the row on first computation.
	Upsert(ctx context.Context, e Evaluation) (string, error)
	Get(ctx context.Context, evaluationID string) (Evaluation, error)
	GetByUserCycle(ctx context.Context, userID, cycleID string) (Evaluation, error)
	Update(ctx context.Context, e Evaluation) error
	ListForCycle(ctx context.Context, cycleID string) ([]Evaluation, error)

	Definitions(ctx context.Context, cycleID, userID string) ([]kpi.Definition, error)
	Actuals(ctx context.Context, cycleID, userID string) ([]kpi.Actual, error)
}
