package approval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"kpm/internal/domain/directory"
	"kpm/internal/domain/kpi"
	"kpm/internal/domain/scoring"
)

type memApprovalStore struct {
	defs      map[string]kpi.Definition
	decisions []Decision
	nextID    int
}

func newMemApprovalStore(defs ...kpi.Definition) *memApprovalStore {
	s := &memApprovalStore{defs: map[string]kpi.Definition{}}
	for _, def := range defs {
		s.defs[def.ID] = def
	}
	return s
}

func (s *memApprovalStore) StartWorkflow(_ context.Context, kpiIDs []string, approverID string) error {
	kept := s.decisions[:0]
	live := map[string]bool{}
	for _, id := range kpiIDs {
		live[id] = true
	}
	for _, d := range s.decisions {
		if !live[d.KpiID] {
			kept = append(kept, d)
		}
	}
	s.decisions = kept
	for _, id := range kpiIDs {
		s.nextID++
		s.decisions = append(s.decisions, Decision{
			ID: string(rune('a' + s.nextID)), KpiID: id, Level: LevelLineManager,
			ApproverID: approverID, Status: StatusPending, CreatedAt: time.Now(),
		})
		def := s.defs[id]
		def.Status = kpi.StatusPendingLM
		s.defs[id] = def
	}
	return nil
}

func (s *memApprovalStore) Decide(_ context.Context, p DecideParams) error {
	decided := false
	now := time.Now()
	for i, d := range s.decisions {
		if d.KpiID == p.KpiID && d.Level == p.Level && d.ApproverID == p.ApproverID && d.Status == StatusPending {
			s.decisions[i].Status = p.Status
			s.decisions[i].Comment = p.Comment
			s.decisions[i].DecidedAt = &now
			decided = true
		}
	}
	if !decided {
		return ErrLevelDecided
	}
	if p.NextApproverID != "" {
		s.nextID++
		s.decisions = append(s.decisions, Decision{
			ID: string(rune('a' + s.nextID)), KpiID: p.KpiID, Level: p.Level + 1,
			ApproverID: p.NextApproverID, Status: StatusPending, CreatedAt: now,
		})
	}
	def := s.defs[p.KpiID]
	def.Status = p.NextKpiStatus
	if p.Status == StatusRejected {
		def.RejectionReason = p.Comment
	}
	s.defs[p.KpiID] = def
	return nil
}

func (s *memApprovalStore) LiveDecisions(_ context.Context, kpiID string) ([]Decision, error) {
	var out []Decision
	for _, d := range s.decisions {
		if d.KpiID == kpiID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memApprovalStore) History(_ context.Context, kpiID string) ([]Decision, error) {
	return s.LiveDecisions(context.Background(), kpiID)
}

func (s *memApprovalStore) PendingForApprover(_ context.Context, approverID string) ([]PendingItem, error) {
	var out []PendingItem
	for _, d := range s.decisions {
		if d.ApproverID == approverID && d.Status == StatusPending {
			out = append(out, PendingItem{Decision: d, Kpi: s.defs[d.KpiID]})
		}
	}
	return out, nil
}

func (s *memApprovalStore) OwnerDefinitions(_ context.Context, cycleID, ownerID string) ([]kpi.Definition, error) {
	var out []kpi.Definition
	for _, def := range s.defs {
		if def.CycleID == cycleID && def.OwnerID == ownerID {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *memApprovalStore) Definition(_ context.Context, kpiID string) (kpi.Definition, error) {
	def, ok := s.defs[kpiID]
	if !ok {
		return kpi.Definition{}, kpi.ErrNotFound
	}
	return def, nil
}

type staticCharts struct{ chart *directory.Chart }

func (c staticCharts) ReportingChart(context.Context) (*directory.Chart, error) {
	return c.chart, nil
}

func testService(defs ...kpi.Definition) (*Service, *memApprovalStore) {
	store := newMemApprovalStore(defs...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, staticCharts{chart: testChart()}, logger), store
}

func goalSet() []kpi.Definition {
	return []kpi.Definition{
		{ID: "k1", CycleID: "c1", OwnerID: "staff", Title: "Revenue", Type: scoring.TypeQuantHigherBetter, Target: 100, Weight: 60, Status: kpi.StatusDraft},
		{ID: "k2", CycleID: "c1", OwnerID: "staff", Title: "Churn", Type: scoring.TypeQuantLowerBetter, Target: 5, Weight: 40, Status: kpi.StatusDraft},
	}
}

func TestSubmitStartsWorkflowAtLineManager(t *testing.T) {
	svc, store := testService(goalSet()...)

	defs, err := svc.Submit(context.Background(), "c1", "staff")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, def := range defs {
		if def.Status != kpi.StatusPendingLM {
			t.Fatalf("definition %s status = %s, want %s", def.ID, def.Status, kpi.StatusPendingLM)
		}
	}
	pending, _ := store.PendingForApprover(context.Background(), "lm")
	if len(pending) != 2 {
		t.Fatalf("line manager pending = %d, want 2", len(pending))
	}
}

func TestSubmitRejectsBadWeightSum(t *testing.T) {
	defs := goalSet()
	defs[1].Weight = 39
	svc, _ := testService(defs...)

	_, err := svc.Submit(context.Background(), "c1", "staff")
	if !errors.Is(err, kpi.ErrWeightSum) {
		t.Fatalf("Submit error = %v, want ErrWeightSum", err)
	}
}

func TestSubmitRejectsEmptyGoalSet(t *testing.T) {
	svc, _ := testService()

	_, err := svc.Submit(context.Background(), "c1", "staff")
	if !errors.Is(err, kpi.ErrNothingToSubmit) {
		t.Fatalf("Submit error = %v, want ErrNothingToSubmit", err)
	}
}

func TestSubmitRejectsNonEditableDefinitions(t *testing.T) {
	defs := goalSet()
	defs[0].Status = kpi.StatusApproved
	svc, _ := testService(defs...)

	_, err := svc.Submit(context.Background(), "c1", "staff")
	if !errors.Is(err, kpi.ErrNotEditable) {
		t.Fatalf("Submit error = %v, want ErrNotEditable", err)
	}
}

func TestFullApprovalChain(t *testing.T) {
	svc, store := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	steps := []struct {
		level    int
		approver string
		status   string
	}{
		{LevelLineManager, "lm", kpi.StatusPendingHOD},
		{LevelHeadOfDept, "hod", kpi.StatusPendingBOD},
		{LevelBoard, "bod", kpi.StatusApproved},
	}
	for _, step := range steps {
		wf, err := svc.RecordDecision(ctx, "k1", step.level, step.approver, StatusApproved, "")
		if err != nil {
			t.Fatalf("level %d approve: %v", step.level, err)
		}
		def, _ := store.Definition(ctx, "k1")
		if def.Status != step.status {
			t.Fatalf("after level %d: kpi status = %s, want %s", step.level, def.Status, step.status)
		}
		if step.level == LevelBoard {
			if !wf.IsComplete || wf.FinalStatus != StatusApproved {
				t.Fatalf("final workflow = %+v, want complete APPROVED", wf)
			}
		} else if wf.CurrentLevel != step.level+1 {
			t.Fatalf("after level %d: current level = %d, want %d", step.level, wf.CurrentLevel, step.level+1)
		}
	}
}

func TestRejectionTerminatesAndReopens(t *testing.T) {
	svc, store := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusApproved, ""); err != nil {
		t.Fatalf("level 1 approve: %v", err)
	}

	wf, err := svc.RecordDecision(ctx, "k1", LevelHeadOfDept, "hod", StatusRejected, "target too low")
	if err != nil {
		t.Fatalf("level 2 reject: %v", err)
	}
	if !wf.IsComplete || wf.FinalStatus != StatusRejected {
		t.Fatalf("workflow = %+v, want complete REJECTED", wf)
	}
	def, _ := store.Definition(ctx, "k1")
	if def.Status != kpi.StatusRejected {
		t.Fatalf("kpi status = %s, want %s", def.Status, kpi.StatusRejected)
	}
	if def.RejectionReason != "target too low" {
		t.Fatalf("rejection reason = %q", def.RejectionReason)
	}

	// No further decisions accepted on a terminated workflow.
	if _, err := svc.RecordDecision(ctx, "k1", LevelBoard, "bod", StatusApproved, ""); !errors.Is(err, ErrLevelDecided) {
		t.Fatalf("decision after rejection = %v, want ErrLevelDecided", err)
	}
}

func TestRejectionRequiresComment(t *testing.T) {
	svc, _ := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusRejected, "")
	if !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("reject without comment = %v, want ErrCommentRequired", err)
	}
}

func TestDecisionOutOfOrderAndUnauthorized(t *testing.T) {
	svc, _ := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.RecordDecision(ctx, "k1", LevelHeadOfDept, "hod", StatusApproved, ""); !errors.Is(err, ErrNotPendingLevel) {
		t.Fatalf("skip-ahead decision = %v, want ErrNotPendingLevel", err)
	}
	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "hod", StatusApproved, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("wrong approver = %v, want ErrNotAuthorized", err)
	}
	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", "MAYBE", ""); !errors.Is(err, ErrDecisionInvalid) {
		t.Fatalf("bad decision value = %v, want ErrDecisionInvalid", err)
	}
}

func TestDoubleDecisionSameLevel(t *testing.T) {
	svc, _ := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusApproved, ""); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	_, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusRejected, "changed my mind")
	if !errors.Is(err, ErrNotPendingLevel) && !errors.Is(err, ErrLevelDecided) {
		t.Fatalf("second decision = %v, want not-pending error", err)
	}
}

func TestResubmitAfterRejectionRestartsAtLevelOne(t *testing.T) {
	svc, store := testService(goalSet()...)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusRejected, "redo"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// k2 is still pending at level 1; owner edits and resubmits the set.
	if _, err := svc.Submit(ctx, "c1", "staff"); !errors.Is(err, kpi.ErrNotEditable) {
		t.Fatalf("resubmit with pending sibling = %v, want ErrNotEditable", err)
	}
	if _, err := svc.RecordDecision(ctx, "k2", LevelLineManager, "lm", StatusRejected, "redo"); err != nil {
		t.Fatalf("reject sibling: %v", err)
	}

	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	wf, err := svc.WorkflowFor(ctx, "k1")
	if err != nil {
		t.Fatalf("WorkflowFor: %v", err)
	}
	if wf.CurrentLevel != LevelLineManager || wf.IsComplete {
		t.Fatalf("resubmitted workflow = %+v, want pending at level 1", wf)
	}
	def, _ := store.Definition(ctx, "k1")
	if def.Status != kpi.StatusPendingLM {
		t.Fatalf("kpi status = %s, want %s", def.Status, kpi.StatusPendingLM)
	}
}

func TestDecisionRefusedAfterOwnerReassigned(t *testing.T) {
	store := newMemApprovalStore(goalSet()...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, staticCharts{chart: testChart()}, logger)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The owner moves to a new line manager before the old one decides.
	moved := directory.NewChart([]directory.User{
		{ID: "staff", Role: directory.RoleStaff, ManagerID: "lm2", Status: directory.UserStatusActive},
		{ID: "lm", Role: directory.RoleLineManager, ManagerID: "hod", Status: directory.UserStatusActive},
		{ID: "lm2", Role: directory.RoleLineManager, ManagerID: "hod", Status: directory.UserStatusActive},
		{ID: "hod", Role: directory.RoleHeadOfDept, Status: directory.UserStatusActive},
		{ID: "bod", Role: directory.RoleBOD, Status: directory.UserStatusActive},
	})
	svc = NewService(store, staticCharts{chart: moved}, logger)

	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusApproved, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stale manager decision = %v, want ErrNotAuthorized", err)
	}

	def, _ := store.Definition(ctx, "k1")
	if def.Status != kpi.StatusPendingLM {
		t.Fatalf("kpi status = %s, want %s untouched", def.Status, kpi.StatusPendingLM)
	}
}

func TestDecisionRefusedAfterManagerDeactivated(t *testing.T) {
	store := newMemApprovalStore(goalSet()...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, staticCharts{chart: testChart()}, logger)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, "c1", "staff"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	retired := directory.NewChart([]directory.User{
		{ID: "staff", Role: directory.RoleStaff, ManagerID: "lm", Status: directory.UserStatusActive},
		{ID: "lm", Role: directory.RoleLineManager, ManagerID: "hod", Status: directory.UserStatusInactive},
		{ID: "hod", Role: directory.RoleHeadOfDept, Status: directory.UserStatusActive},
		{ID: "bod", Role: directory.RoleBOD, Status: directory.UserStatusActive},
	})
	svc = NewService(store, staticCharts{chart: retired}, logger)

	if _, err := svc.RecordDecision(ctx, "k1", LevelLineManager, "lm", StatusApproved, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("deactivated manager decision = %v, want ErrNotAuthorized", err)
	}
}
