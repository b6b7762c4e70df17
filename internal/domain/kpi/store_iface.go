package kpi

import "context"

type StoreAPI interface {
	CreateDefinition(ctx context.Context, def Definition) (string, error)
	UpdateDefinition(ctx context.Context, def Definition) error
	DeleteDefinition(ctx context.Context, kpiID string) error
	GetDefinition(ctx context.Context, kpiID string) (Definition, error)
	ListDefinitions(ctx context.Context, cycleID, ownerID string) ([]Definition, error)
	ListByStatus(ctx context.Context, cycleID, status string) ([]Definition, error)

	SubmitActual(ctx context.Context, actual Actual) (string, error)
	GetActual(ctx context.Context, kpiID string) (Actual, error)
	ListActuals(ctx context.Context, cycleID, ownerID string) ([]Actual, error)

	AddEvidence(ctx context.Context, file EvidenceFile, descriptionEnc []byte) (string, error)
	ListEvidence(ctx context.Context, actualID string) ([]EvidenceFile, error)
	EvidenceDescriptionEnc(ctx context.Context, evidenceID string) ([]byte, error)
}
