package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"kpm/internal/domain/auth"
	"kpm/internal/domain/directory"
	"kpm/internal/platform/config"
)

var seedOrgUnits = []string{"Sales", "Marketing", "HR", "Quality"}

// Seed is idempotent: it creates the baseline org units plus the admin
// and board accounts when configured, and leaves existing rows alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	unitIDs, err := ensureOrgUnits(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword,
		"Administrator", directory.RoleAdmin, unitIDs["HR"]); err != nil {
		return err
	}

	if cfg.SeedBoardEmail != "" {
		if err := ensureUser(ctx, pool, cfg.SeedBoardEmail, cfg.SeedBoardPassword,
			"Board Member", directory.RoleBOD, ""); err != nil {
			return err
		}
	}

	return nil
}

func ensureOrgUnits(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	ids := map[string]string{}
	for _, name := range seedOrgUnits {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM org_units WHERE name = $1", name).Scan(&id)
		if err == nil {
			ids[name] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO org_units (name) VALUES ($1) RETURNING id", name).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, name string, role directory.Role, orgUnitID string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role, org_unit_id, status)
    VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
    RETURNING id
  `, name, email, hash, string(role), orgUnitID, directory.UserStatusActive).Scan(&id)
	return err
}
