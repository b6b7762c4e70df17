package directory

import "context"

type StoreAPI interface {
	GetUser(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, orgUnitID string) ([]User, error)
	CreateUser(ctx context.Context, user User, passwordHash string) (string, error)
	UpdateUser(ctx context.Context, user User) error
	SetUserStatus(ctx context.Context, userID, status string) error
	ListOrgUnits(ctx context.Context) ([]OrgUnit, error)
	CreateOrgUnit(ctx context.Context, unit OrgUnit) (string, error)
}
