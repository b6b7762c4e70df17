package kpi

import (
	"context"
	"fmt"

	cryptoutil "kpm/internal/platform/crypto"

	"kpm/internal/domain/scoring"
)

type Service struct {
	store  StoreAPI
	crypto *cryptoutil.Service
}

func NewService(store StoreAPI, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

// ValidateDefinition enforces construction-time rules so malformed
// definitions never reach the scoring engine.
func ValidateDefinition(def Definition) error {
	if !scoring.ValidKpiType(def.Type) {
		return fmt.Errorf("%w: %q", scoring.ErrUnknownKpiType, def.Type)
	}
	if def.Weight <= 0 || def.Weight > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidWeight, def.Weight)
	}
	switch def.Type {
	case scoring.TypeQuantHigherBetter, scoring.TypeMilestone:
		if def.Target <= 0 {
			return fmt.Errorf("%w: got %v", scoring.ErrInvalidTarget, def.Target)
		}
	case scoring.TypeQuantLowerBetter:
		// A zero target is legal here: zero defects against zero expected.
		if def.Target < 0 {
			return fmt.Errorf("%w: got %v", scoring.ErrInvalidTarget, def.Target)
		}
	case scoring.TypeBoolean:
		if def.Target != 1 {
			return fmt.Errorf("%w: boolean KPIs use target 1, got %v", scoring.ErrInvalidTarget, def.Target)
		}
	case scoring.TypeBehavior:
		if def.Target != 5 {
			return fmt.Errorf("%w: behavior KPIs use the 1-5 scale, got target %v", scoring.ErrInvalidTarget, def.Target)
		}
	}
	return nil
}

func (s *Service) CreateDefinition(ctx context.Context, def Definition) (string, error) {
	if err := ValidateDefinition(def); err != nil {
		return "", err
	}
	def.Status = StatusDraft
	return s.store.CreateDefinition(ctx, def)
}

// UpdateDefinition re-edits a draft or rejected definition. A rejected
// definition drops back to DRAFT so it re-enters the workflow from scratch
// on the next submission.
func (s *Service) UpdateDefinition(ctx context.Context, def Definition) error {
	current, err := s.store.GetDefinition(ctx, def.ID)
	if err != nil {
		return err
	}
	if !Editable(current.Status) {
		return fmt.Errorf("%w: status %s", ErrNotEditable, current.Status)
	}
	if err := ValidateDefinition(def); err != nil {
		return err
	}
	def.Status = StatusDraft
	return s.store.UpdateDefinition(ctx, def)
}

func (s *Service) DeleteDraft(ctx context.Context, kpiID string) error {
	current, err := s.store.GetDefinition(ctx, kpiID)
	if err != nil {
		return err
	}
	if current.Status != StatusDraft {
		return fmt.Errorf("%w: status %s", ErrNotEditable, current.Status)
	}
	return s.store.DeleteDefinition(ctx, kpiID)
}

func (s *Service) GetDefinition(ctx context.Context, kpiID string) (Definition, error) {
	return s.store.GetDefinition(ctx, kpiID)
}

func (s *Service) ListDefinitions(ctx context.Context, cycleID, ownerID string) ([]Definition, error) {
	return s.store.ListDefinitions(ctx, cycleID, ownerID)
}

// SubmitActual records a reported achievement against an approved
// definition. Percentage and score are derived here and nowhere else.
func (s *Service) SubmitActual(ctx context.Context, kpiID, ownerID string, value float64, selfComment string) (Actual, error) {
	def, err := s.store.GetDefinition(ctx, kpiID)
	if err != nil {
		return Actual{}, err
	}
	if def.OwnerID != ownerID {
		return Actual{}, fmt.Errorf("%w: %s", ErrNotFound, kpiID)
	}
	if def.Status != StatusApproved {
		return Actual{}, fmt.Errorf("%w: status %s", ErrNotApproved, def.Status)
	}
	if value < 0 {
		return Actual{}, fmt.Errorf("%w: got %v", ErrNegativeActual, value)
	}
	if def.Type == scoring.TypeBehavior && (value < 1 || value > 5) {
		return Actual{}, fmt.Errorf("%w: got %v", ErrBehaviorOutOfBand, value)
	}

	percentage, score, err := scoring.Evaluate(def.Type, value, def.Target)
	if err != nil {
		return Actual{}, err
	}

	actual := Actual{
		KpiID:       kpiID,
		ActualValue: value,
		Percentage:  percentage,
		Score:       score,
		SelfComment: selfComment,
		Status:      ActualStatusSubmitted,
	}
	id, err := s.store.SubmitActual(ctx, actual)
	if err != nil {
		return Actual{}, err
	}
	actual.ID = id
	return actual, nil
}

func (s *Service) GetActual(ctx context.Context, kpiID string) (Actual, error) {
	return s.store.GetActual(ctx, kpiID)
}

func (s *Service) ListActuals(ctx context.Context, cycleID, ownerID string) ([]Actual, error) {
	return s.store.ListActuals(ctx, cycleID, ownerID)
}

// AddEvidence stores blob metadata for an actual; the description is
// encrypted at rest when an encryption key is configured.
func (s *Service) AddEvidence(ctx context.Context, file EvidenceFile) (string, error) {
	var descriptionEnc []byte
	if file.Description != "" {
		enc, err := s.crypto.EncryptString(file.Description)
		if err != nil {
			return "", err
		}
		descriptionEnc = enc
	}
	return s.store.AddEvidence(ctx, file, descriptionEnc)
}

func (s *Service) ListEvidence(ctx context.Context, actualID string) ([]EvidenceFile, error) {
	return s.store.ListEvidence(ctx, actualID)
}

func (s *Service) EvidenceDescription(ctx context.Context, evidenceID string) (string, error) {
	enc, err := s.store.EvidenceDescriptionEnc(ctx, evidenceID)
	if err != nil {
		return "", err
	}
	return s.crypto.DecryptString(enc)
}
