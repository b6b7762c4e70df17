package evaluation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"kpm/internal/domain/kpi"
	"kpm/internal/domain/scoring"
)

type memEvalStore struct {
	evals   map[string]Evaluation
	defs    []kpi.Definition
	actuals []kpi.Actual
	nextID  int
}

func newMemEvalStore() *memEvalStore {
	return &memEvalStore{evals: map[string]Evaluation{}}
}

func (s *memEvalStore) Upsert(_ context.Context, e Evaluation) (string, error) {
	for id, existing := range s.evals {
		if existing.UserID == e.UserID && existing.CycleID == e.CycleID {
			existing.OverallScore = e.OverallScore
			existing.OverallPercentage = e.OverallPercentage
			existing.TotalWeight = e.TotalWeight
			existing.FinalScore = e.FinalScore
			if e.SelfComment != "" {
				existing.SelfComment = e.SelfComment
			}
			s.evals[id] = existing
			return id, nil
		}
	}
	s.nextID++
	e.ID = "ev" + strconv.Itoa(s.nextID)
	e.CreatedAt = time.Now()
	s.evals[e.ID] = e
	return e.ID, nil
}

func (s *memEvalStore) Get(_ context.Context, id string) (Evaluation, error) {
	e, ok := s.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return e, nil
}

func (s *memEvalStore) GetByUserCycle(_ context.Context, userID, cycleID string) (Evaluation, error) {
	for _, e := range s.evals {
		if e.UserID == userID && e.CycleID == cycleID {
			return e, nil
		}
	}
	return Evaluation{}, ErrNotFound
}

func (s *memEvalStore) Update(_ context.Context, e Evaluation) error {
	if _, ok := s.evals[e.ID]; !ok {
		return ErrNotFound
	}
	s.evals[e.ID] = e
	return nil
}

func (s *memEvalStore) ListForCycle(_ context.Context, cycleID string) ([]Evaluation, error) {
	var out []Evaluation
	for _, e := range s.evals {
		if e.CycleID == cycleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEvalStore) Definitions(_ context.Context, cycleID, userID string) ([]kpi.Definition, error) {
	var out []kpi.Definition
	for _, def := range s.defs {
		if def.CycleID == cycleID && def.OwnerID == userID {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *memEvalStore) Actuals(_ context.Context, cycleID, userID string) ([]kpi.Actual, error) {
	return s.actuals, nil
}

func testEvalService() (*Service, *memEvalStore) {
	store := newMemEvalStore()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func approvedSet() []kpi.Definition {
	return []kpi.Definition{
		{ID: "k1", CycleID: "c1", OwnerID: "u1", Title: "Revenue", Type: scoring.TypeQuantHigherBetter, Target: 100, Weight: 60, Status: kpi.StatusApproved},
		{ID: "k2", CycleID: "c1", OwnerID: "u1", Title: "Delivery", Type: scoring.TypeMilestone, Target: 10, Weight: 40, Status: kpi.StatusApproved},
	}
}

func fullActuals() []kpi.Actual {
	return []kpi.Actual{
		{ID: "a1", KpiID: "k1", ActualValue: 110, Percentage: 110, Score: 4, Status: kpi.ActualStatusSubmitted},
		{ID: "a2", KpiID: "k2", ActualValue: 9, Percentage: 90, Score: 3, Status: kpi.ActualStatusSubmitted},
	}
}

func TestComputeAggregatesWeightedScores(t *testing.T) {
	svc, store := testEvalService()
	store.defs = approvedSet()
	store.actuals = fullActuals()

	detail, err := svc.Compute(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// 4*0.6 + 3*0.4 = 3.6, 110*0.6 + 90*0.4 = 102
	if detail.Evaluation.OverallScore != 3.6 {
		t.Fatalf("overall score = %v, want 3.6", detail.Evaluation.OverallScore)
	}
	if detail.Evaluation.OverallPercentage != 102 {
		t.Fatalf("overall percentage = %v, want 102", detail.Evaluation.OverallPercentage)
	}
	if detail.Evaluation.TotalWeight != 100 {
		t.Fatalf("total weight = %v, want 100", detail.Evaluation.TotalWeight)
	}
	if !detail.Validation.IsValid {
		t.Fatalf("validation errors: %v", detail.Validation.Errors)
	}
	if len(detail.Kpis) != 2 {
		t.Fatalf("kpi rows = %d, want 2", len(detail.Kpis))
	}
}

func TestComputeIgnoresDraftDefinitions(t *testing.T) {
	svc, store := testEvalService()
	defs := approvedSet()
	defs[1].Status = kpi.StatusDraft
	store.defs = defs
	store.actuals = fullActuals()[:1]

	detail, err := svc.Compute(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(detail.Kpis) != 1 {
		t.Fatalf("kpi rows = %d, want 1", len(detail.Kpis))
	}
	if detail.Evaluation.TotalWeight != 60 {
		t.Fatalf("total weight = %v, want 60", detail.Evaluation.TotalWeight)
	}
}

func TestComputeWithoutApprovedKpis(t *testing.T) {
	svc, store := testEvalService()
	store.defs = []kpi.Definition{
		{ID: "k1", CycleID: "c1", OwnerID: "u1", Status: kpi.StatusDraft, Weight: 100},
	}

	_, err := svc.Compute(context.Background(), "u1", "c1")
	if !errors.Is(err, ErrNoApprovedKpis) {
		t.Fatalf("Compute = %v, want ErrNoApprovedKpis", err)
	}
}

func TestSubmitBlockedWhileIncomplete(t *testing.T) {
	svc, store := testEvalService()
	store.defs = approvedSet()
	store.actuals = fullActuals()[:1] // k2 has no actual

	detail, err := svc.Submit(context.Background(), "u1", "c1", "done")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Submit = %v, want ErrInvalid", err)
	}
	if len(detail.Validation.Errors) == 0 {
		t.Fatal("expected validation errors alongside ErrInvalid")
	}
	if detail.Evaluation.Status != StatusDraft {
		t.Fatalf("status = %s, want DRAFT", detail.Evaluation.Status)
	}
}

func TestSubmitAndReviewLifecycle(t *testing.T) {
	svc, store := testEvalService()
	store.defs = approvedSet()
	store.actuals = fullActuals()
	ctx := context.Background()

	detail, err := svc.Submit(ctx, "u1", "c1", "strong half")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	eval := detail.Evaluation
	if eval.Status != StatusSubmitted || eval.SubmittedAt == nil {
		t.Fatalf("after submit: %+v", eval)
	}
	if eval.SelfComment != "strong half" {
		t.Fatalf("self comment = %q", eval.SelfComment)
	}

	// Double submit is refused.
	if _, err := svc.Submit(ctx, "u1", "c1", "again"); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("double submit = %v, want ErrNotDraft", err)
	}

	if _, err := svc.StartReview(ctx, eval.ID, "u1"); !errors.Is(err, ErrSelfReview) {
		t.Fatalf("self review = %v, want ErrSelfReview", err)
	}
	reviewed, err := svc.StartReview(ctx, eval.ID, "mgr1")
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if reviewed.Status != StatusUnderReview || reviewed.ReviewerID != "mgr1" {
		t.Fatalf("after review start: %+v", reviewed)
	}

	if _, err := svc.Complete(ctx, eval.ID, "mgr1", "solid", 2.5); !errors.Is(err, ErrCalibrationBounds) {
		t.Fatalf("oversized calibration = %v, want ErrCalibrationBounds", err)
	}
	completed, err := svc.Complete(ctx, eval.ID, "mgr1", "solid", 0.4)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != StatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("after complete: %+v", completed)
	}
	if completed.FinalScore != 4.0 {
		t.Fatalf("final score = %v, want 4.0", completed.FinalScore)
	}
	if completed.ManagerComment != "solid" {
		t.Fatalf("manager comment = %q", completed.ManagerComment)
	}
}

func TestCompleteClampsFinalScore(t *testing.T) {
	svc, store := testEvalService()
	store.defs = approvedSet()[:1]
	store.defs[0].Weight = 100
	store.actuals = []kpi.Actual{
		{ID: "a1", KpiID: "k1", ActualValue: 130, Percentage: 130, Score: 5, Status: kpi.ActualStatusSubmitted},
	}
	ctx := context.Background()

	detail, err := svc.Submit(ctx, "u1", "c1", "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.StartReview(ctx, detail.Evaluation.ID, "mgr1"); err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	completed, err := svc.Complete(ctx, detail.Evaluation.ID, "mgr1", "top", 0.8)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.FinalScore != MaxFinalScore {
		t.Fatalf("final score = %v, want clamped to %v", completed.FinalScore, MaxFinalScore)
	}
}
