package directory

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

func (s *Service) ListUsers(ctx context.Context, orgUnitID string) ([]User, error) {
	return s.store.ListUsers(ctx, orgUnitID)
}

func (s *Service) CreateUser(ctx context.Context, user User, passwordHash string) (string, error) {
	if !ValidRole(user.Role) {
		return "", fmt.Errorf("invalid role %q", user.Role)
	}
	if user.Status == "" {
		user.Status = UserStatusActive
	}
	if user.Locale == "" {
		user.Locale = "en-US"
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return s.store.CreateUser(ctx, user, passwordHash)
}

func (s *Service) UpdateUser(ctx context.Context, user User) error {
	if !ValidRole(user.Role) {
		return fmt.Errorf("invalid role %q", user.Role)
	}
	return s.store.UpdateUser(ctx, user)
}

func (s *Service) SetUserStatus(ctx context.Context, userID, status string) error {
	if status != UserStatusActive && status != UserStatusInactive {
		return fmt.Errorf("invalid status %q", status)
	}
	return s.store.SetUserStatus(ctx, userID, status)
}

func (s *Service) ListOrgUnits(ctx context.Context) ([]OrgUnit, error) {
	return s.store.ListOrgUnits(ctx)
}

func (s *Service) CreateOrgUnit(ctx context.Context, unit OrgUnit) (string, error) {
	return s.store.CreateOrgUnit(ctx, unit)
}

// ReportingChart loads every user and builds the reporting-chain snapshot
// used by approver resolution.
func (s *Service) ReportingChart(ctx context.Context) (*Chart, error) {
	users, err := s.store.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	return NewChart(users), nil
}
