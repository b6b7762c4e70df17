package approval

import (
	"context"
	"fmt"
	"log/slog"

	"kpm/internal/domain/directory"
	"kpm/internal/domain/kpi"
	"kpm/internal/domain/scoring"
)

// ChartProvider supplies the current reporting structure used to route
// approvals to line managers, department heads and the board.
type ChartProvider interface {
	ReportingChart(ctx context.Context) (*directory.Chart, error)
}

type Service struct {
	store  StoreAPI
	charts ChartProvider
	logger *slog.Logger
}

func NewService(store StoreAPI, charts ChartProvider, logger *slog.Logger) *Service {
	return &Service{store: store, charts: charts, logger: logger}
}

// Submit moves an owner's full goal set from DRAFT into the approval
// workflow. Weights must sum to exactly 100 across the set, and every
// definition must still be editable by the owner.
func (s *Service) Submit(ctx context.Context, cycleID, ownerID string) ([]kpi.Definition, error) {
	defs, err := s.store.OwnerDefinitions(ctx, cycleID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	if len(defs) == 0 {
		return nil, kpi.ErrNothingToSubmit
	}
	for _, def := range defs {
		if !kpi.Editable(def.Status) {
			return nil, fmt.Errorf("%w: %s is %s", kpi.ErrNotEditable, def.Title, def.Status)
		}
	}
	if !scoring.ValidateWeights(kpi.Weighted(defs)) {
		return nil, kpi.ErrWeightSum
	}

	chart, err := s.charts.ReportingChart(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reporting chart: %w", err)
	}
	approver, err := ResolveApprover(ownerID, LevelLineManager, chart)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	if err := s.store.StartWorkflow(ctx, ids, approver.ID); err != nil {
		return nil, err
	}

	s.logger.Info("goal set submitted for approval",
		"ownerId", ownerID, "cycleId", cycleID, "kpis", len(ids), "approverId", approver.ID)

	return s.store.OwnerDefinitions(ctx, cycleID, ownerID)
}

// RecordDecision applies one approve or reject at the given level. An
// approval advances the KPI to the next level, or to APPROVED after the
// board. A rejection terminates the workflow and reopens the KPI for the
// owner; rejections always carry a comment.
func (s *Service) RecordDecision(ctx context.Context, kpiID string, level int, approverID, decision, comment string) (Workflow, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return Workflow{}, ErrDecisionInvalid
	}
	if decision == StatusRejected && comment == "" {
		return Workflow{}, ErrCommentRequired
	}
	if !ValidLevel(level) {
		return Workflow{}, fmt.Errorf("%w: level %d", ErrNotPendingLevel, level)
	}

	decisions, err := s.store.LiveDecisions(ctx, kpiID)
	if err != nil {
		return Workflow{}, fmt.Errorf("load decisions: %w", err)
	}
	wf := ComputeWorkflow(kpiID, decisions)
	if wf.IsComplete || wf.CurrentLevel == 0 {
		return Workflow{}, ErrLevelDecided
	}
	if wf.CurrentLevel != level {
		return Workflow{}, fmt.Errorf("%w: pending at level %d", ErrNotPendingLevel, wf.CurrentLevel)
	}

	pending := wf.Decision(level)
	if pending == nil || pending.ApproverID != approverID {
		return Workflow{}, ErrNotAuthorized
	}

	def, err := s.store.Definition(ctx, kpiID)
	if err != nil {
		return Workflow{}, fmt.Errorf("load definition: %w", err)
	}
	chart, err := s.charts.ReportingChart(ctx)
	if err != nil {
		return Workflow{}, fmt.Errorf("load reporting chart: %w", err)
	}
	// The chart may have changed since the pending row was created, so the
	// approver is verified against the current structure, not the snapshot.
	if !CanApprove(approverID, def.OwnerID, level, chart) {
		return Workflow{}, ErrNotAuthorized
	}

	params := DecideParams{
		KpiID:      kpiID,
		Level:      level,
		ApproverID: approverID,
		Status:     decision,
		Comment:    comment,
	}
	switch {
	case decision == StatusRejected:
		params.NextKpiStatus = kpi.StatusRejected
	case level == LevelBoard:
		params.NextKpiStatus = kpi.StatusApproved
	default:
		next, err := ResolveApprover(def.OwnerID, level+1, chart)
		if err != nil {
			return Workflow{}, err
		}
		params.NextApproverID = next.ID
		params.NextKpiStatus = kpi.PendingStatusForLevel(level + 1)
	}

	if err := s.store.Decide(ctx, params); err != nil {
		return Workflow{}, err
	}

	s.logger.Info("approval decision recorded",
		"kpiId", kpiID, "level", level, "decision", decision, "approverId", approverID)

	updated, err := s.store.LiveDecisions(ctx, kpiID)
	if err != nil {
		return Workflow{}, fmt.Errorf("reload decisions: %w", err)
	}

	return ComputeWorkflow(kpiID, updated), nil
}

func (s *Service) WorkflowFor(ctx context.Context, kpiID string) (Workflow, error) {
	decisions, err := s.store.LiveDecisions(ctx, kpiID)
	if err != nil {
		return Workflow{}, err
	}

	return ComputeWorkflow(kpiID, decisions), nil
}

func (s *Service) History(ctx context.Context, kpiID string) ([]Decision, error) {
	return s.store.History(ctx, kpiID)
}

func (s *Service) PendingForUser(ctx context.Context, userID string) ([]PendingItem, error) {
	return s.store.PendingForApprover(ctx, userID)
}
