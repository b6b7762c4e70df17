package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kpm/internal/domain/kpi"
	"kpm/internal/domain/scoring"
)

type Service struct {
	store  StoreAPI
	logger *slog.Logger
}

func NewService(store StoreAPI, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// evaluable keeps the definitions an evaluation is scored against: the
// approved goal set, including goals frozen by a cycle close.
func evaluable(defs []kpi.Definition) []kpi.Definition {
	out := defs[:0:0]
	for _, def := range defs {
		switch def.Status {
		case kpi.StatusApproved, kpi.StatusLockedGoals, kpi.StatusLockedActuals:
			out = append(out, def)
		}
	}
	return out
}

// Compute aggregates the user's scored actuals into an evaluation and
// persists the result. Existing review state is preserved; only the derived
// numbers are refreshed.
func (s *Service) Compute(ctx context.Context, userID, cycleID string) (Detail, error) {
	defs, err := s.store.Definitions(ctx, cycleID, userID)
	if err != nil {
		return Detail{}, fmt.Errorf("load definitions: %w", err)
	}
	defs = evaluable(defs)
	if len(defs) == 0 {
		return Detail{}, ErrNoApprovedKpis
	}
	actuals, err := s.store.Actuals(ctx, cycleID, userID)
	if err != nil {
		return Detail{}, fmt.Errorf("load actuals: %w", err)
	}

	weighted := kpi.Weighted(defs)
	scored := kpi.Scored(actuals)
	summary := scoring.Aggregate(weighted, scored)
	validation := scoring.ValidateEvaluation(weighted, scored)

	current, err := s.store.GetByUserCycle(ctx, userID, cycleID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Detail{}, err
	}
	eval := current
	if errors.Is(err, ErrNotFound) {
		eval = Evaluation{UserID: userID, CycleID: cycleID, Status: StatusDraft}
	}
	eval.OverallScore = summary.OverallScore
	eval.OverallPercentage = summary.OverallPercentage
	eval.TotalWeight = summary.TotalWeight
	if eval.Status == StatusDraft || eval.Status == StatusSubmitted {
		eval.FinalScore = summary.OverallScore
	}

	id, err := s.store.Upsert(ctx, eval)
	if err != nil {
		return Detail{}, err
	}
	eval, err = s.store.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	byKpi := map[string]*kpi.Actual{}
	for i := range actuals {
		byKpi[actuals[i].KpiID] = &actuals[i]
	}
	results := make([]KpiResult, 0, len(defs))
	for _, def := range defs {
		results = append(results, KpiResult{Definition: def, Actual: byKpi[def.ID]})
	}

	return Detail{
		Evaluation: eval,
		Kpis:       results,
		Validation: validation,
		Insights:   Insights(summary, results),
	}, nil
}

// Submit freezes the owner's self-assessment. Submission is refused while
// the evaluation is incomplete: missing actuals, negative values or a
// weight sum off 100 all block it, and every problem is reported at once.
func (s *Service) Submit(ctx context.Context, userID, cycleID, selfComment string) (Detail, error) {
	detail, err := s.Compute(ctx, userID, cycleID)
	if err != nil {
		return Detail{}, err
	}
	if !detail.Validation.IsValid {
		return detail, ErrInvalid
	}
	eval := detail.Evaluation
	if eval.Status != StatusDraft {
		return Detail{}, ErrNotDraft
	}

	now := time.Now()
	eval.Status = StatusSubmitted
	eval.SelfComment = selfComment
	eval.SubmittedAt = &now
	if err := s.update(ctx, &eval); err != nil {
		return Detail{}, err
	}

	s.logger.Info("evaluation submitted",
		"userId", userID, "cycleId", cycleID, "overallScore", eval.OverallScore)

	detail.Evaluation = eval
	return detail, nil
}

// StartReview moves a submitted evaluation under review by its manager.
func (s *Service) StartReview(ctx context.Context, evaluationID, reviewerID string) (Evaluation, error) {
	eval, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if eval.Status != StatusSubmitted {
		return Evaluation{}, ErrNotSubmitted
	}
	if eval.UserID == reviewerID {
		return Evaluation{}, ErrSelfReview
	}

	eval.Status = StatusUnderReview
	eval.ReviewerID = reviewerID
	if err := s.update(ctx, &eval); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

// Complete closes the review with a manager comment and an optional
// calibration adjustment. The final score is the derived overall score plus
// calibration, clamped to the 1..5 scale.
func (s *Service) Complete(ctx context.Context, evaluationID, reviewerID, managerComment string, calibration float64) (Evaluation, error) {
	eval, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if eval.Status != StatusUnderReview {
		return Evaluation{}, ErrNotUnderReview
	}
	if eval.UserID == reviewerID {
		return Evaluation{}, ErrSelfReview
	}
	if calibration < -MaxCalibration || calibration > MaxCalibration {
		return Evaluation{}, ErrCalibrationBounds
	}

	final := eval.OverallScore + calibration
	if final < MinFinalScore {
		final = MinFinalScore
	}
	if final > MaxFinalScore {
		final = MaxFinalScore
	}

	now := time.Now()
	eval.Status = StatusCompleted
	eval.ReviewerID = reviewerID
	eval.ManagerComment = managerComment
	eval.Calibration = calibration
	eval.FinalScore = final
	eval.CompletedAt = &now
	if err := s.update(ctx, &eval); err != nil {
		return Evaluation{}, err
	}

	s.logger.Info("evaluation completed",
		"evaluationId", evaluationID, "reviewerId", reviewerID,
		"finalScore", eval.FinalScore, "calibration", calibration)

	return eval, nil
}

func (s *Service) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	return s.store.Get(ctx, evaluationID)
}

func (s *Service) ForUserCycle(ctx context.Context, userID, cycleID string) (Evaluation, error) {
	return s.store.GetByUserCycle(ctx, userID, cycleID)
}

func (s *Service) ListForCycle(ctx context.Context, cycleID string) ([]Evaluation, error) {
	return s.store.ListForCycle(ctx, cycleID)
}

func (s *Service) update(ctx context.Context, eval *Evaluation) error {
	if err := s.store.Update(ctx, *eval); err != nil {
		return err
	}
	updated, err := s.store.Get(ctx, eval.ID)
	if err != nil {
		return err
	}
	*eval = updated
	return nil
}
