package approval

import (
	"errors"
	"testing"

	"kpm/internal/domain/directory"
)

func testChart() *directory.Chart {
	return directory.NewChart([]directory.User{
		{ID: "staff", Role: directory.RoleStaff, ManagerID: "lm", Status: directory.UserStatusActive},
		{ID: "lm", Role: directory.RoleLineManager, ManagerID: "hod", Status: directory.UserStatusActive},
		{ID: "hod", Role: directory.RoleHeadOfDept, Status: directory.UserStatusActive},
		{ID: "bod", Role: directory.RoleBOD, Status: directory.UserStatusActive},
	})
}

func TestResolveApproverChain(t *testing.T) {
	chart := testChart()

	// Repetition and call order must not matter.
	for i := 0; i < 3; i++ {
		approver, err := ResolveApprover("staff", LevelHeadOfDept, chart)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if approver.ID != "hod" {
			t.Fatalf("expected hod at level 2, got %s", approver.ID)
		}

		approver, err = ResolveApprover("staff", LevelLineManager, chart)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if approver.ID != "lm" {
			t.Fatalf("expected lm at level 1, got %s", approver.ID)
		}

		approver, err = ResolveApprover("staff", LevelBoard, chart)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if approver.ID != "bod" {
			t.Fatalf("expected bod at level 3, got %s", approver.ID)
		}
	}
}

func TestResolveApproverMissingManager(t *testing.T) {
	chart := directory.NewChart([]directory.User{
		{ID: "orphan", Role: directory.RoleStaff, Status: directory.UserStatusActive},
	})

	if _, err := ResolveApprover("orphan", LevelLineManager, chart); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover, got %v", err)
	}
	if _, err := ResolveApprover("orphan", LevelHeadOfDept, chart); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover, got %v", err)
	}
}

func TestResolveApproverMissingSecondHop(t *testing.T) {
	chart := directory.NewChart([]directory.User{
		{ID: "staff", Role: directory.RoleStaff, ManagerID: "lm", Status: directory.UserStatusActive},
		{ID: "lm", Role: directory.RoleLineManager, Status: directory.UserStatusActive},
	})

	if _, err := ResolveApprover("staff", LevelLineManager, chart); err != nil {
		t.Fatalf("level 1 should resolve: %v", err)
	}
	if _, err := ResolveApprover("staff", LevelHeadOfDept, chart); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover for missing second hop, got %v", err)
	}
}

func TestResolveApproverNoBoard(t *testing.T) {
	chart := directory.NewChart([]directory.User{
		{ID: "staff", Role: directory.RoleStaff, ManagerID: "lm", Status: directory.UserStatusActive},
		{ID: "lm", Role: directory.RoleLineManager, Status: directory.UserStatusActive},
	})
	if _, err := ResolveApprover("staff", LevelBoard, chart); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover with no board member, got %v", err)
	}
}

func TestResolveApproverInvalidLevel(t *testing.T) {
	if _, err := ResolveApprover("staff", 4, testChart()); !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover for invalid level, got %v", err)
	}
}

func TestCanApprove(t *testing.T) {
	chart := testChart()

	if !CanApprove("lm", "staff", LevelLineManager, chart) {
		t.Fatal("line manager must be able to approve level 1")
	}
	if CanApprove("hod", "staff", LevelLineManager, chart) {
		t.Fatal("head of department must not approve level 1")
	}
	if !CanApprove("bod", "staff", LevelBoard, chart) {
		t.Fatal("board member must be able to approve level 3")
	}
	if CanApprove("staff", "staff", LevelLineManager, chart) {
		t.Fatal("owners cannot approve their own KPIs")
	}
}
