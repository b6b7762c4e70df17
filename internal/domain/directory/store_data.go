package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `id, name, email, role, COALESCE(org_unit_id::text, ''), COALESCE(manager_id::text, ''), status, locale, created_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.OrgUnitID, &user.ManagerID, &user.Status, &user.Locale, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (s *Store) ListUsers(ctx context.Context, orgUnitID string) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if orgUnitID != "" {
		query += " WHERE org_unit_id = $1"
		args = append(args, orgUnitID)
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user User, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, role, org_unit_id, manager_id, status, locale, password_hash)
    VALUES ($1, $2, $3, NULLIF($4, '')::uuid, NULLIF($5, '')::uuid, $6, $7, $8)
    RETURNING id
  `, user.Name, user.Email, user.Role, user.OrgUnitID, user.ManagerID, user.Status, user.Locale, passwordHash).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateUser(ctx context.Context, user User) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $1, role = $2, org_unit_id = NULLIF($3, '')::uuid, manager_id = NULLIF($4, '')::uuid, locale = $5
    WHERE id = $6
  `, user.Name, user.Role, user.OrgUnitID, user.ManagerID, user.Locale, user.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) SetUserStatus(ctx context.Context, userID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2", status, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) ListOrgUnits(ctx context.Context) ([]OrgUnit, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, COALESCE(parent_id::text, ''), type FROM org_units ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []OrgUnit
	for rows.Next() {
		var unit OrgUnit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.ParentID, &unit.Type); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (s *Store) CreateOrgUnit(ctx context.Context, unit OrgUnit) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO org_units (name, parent_id, type)
    VALUES ($1, NULLIF($2, '')::uuid, $3)
    RETURNING id
  `, unit.Name, unit.ParentID, unit.Type).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
