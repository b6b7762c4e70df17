package approval

import (
	"context"

	"kpm/internal/domain/kpi"
)

// PendingItem pairs a pending decision with the KPI waiting on it.
type PendingItem struct {
	Decision Decision       `json:"approval"`
	Kpi      kpi.Definition `json:"kpi"`
}

// DecideParams is one fully-validated decision ready to commit.
type DecideParams struct {
	KpiID          string
	Level          int
	ApproverID     string
	Status         string
	Comment        string
	NextApproverID string
	NextKpiStatus  string
}

type StoreAPI interface {
	// StartWorkflow supersedes prior approval rows for the given KPIs,
	// creates level-1 PENDING rows and flips the definitions to PENDING_LM,
	// all in one transaction.
	StartWorkflow(ctx context.Context, kpiIDs []string, approverID string) error

	// Decide commits one decision atomically. It fails with ErrLevelDecided
	// when the live (kpi, level) row is no longer pending.
	Decide(ctx context.Context, params DecideParams) error

	LiveDecisions(ctx context.Context, kpiID string) ([]Decision, error)
	History(ctx context.Context, kpiID string) ([]Decision, error)
	PendingForApprover(ctx context.Context, approverID string) ([]PendingItem, error)
	OwnerDefinitions(ctx context.Context, cycleID, ownerID string) ([]kpi.Definition, error)
	Definition(ctx context.Context, kpiID string) (kpi.Definition, error)
}
