package repository

import (
	"context"
	"database/sql"

	"busline/internal/database"
	"busline/internal/models"
)

type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, full_name, phone, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return profile, err
}

// Upsert is used by seeding tools when the auth trigger is not installed.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query, profile.ID, profile.FullName, profile.Phone).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListActiveByUserID(ctx context.Context, userID string) ([]models.UserRole, error) {
	var roles []models.UserRole
	query := `
		SELECT id, user_id, role, role_level, is_active, created_at
		FROM user_roles
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY role_level DESC, role ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role models.UserRole
		err := rows.Scan(
			&role.ID,
			&role.UserID,
			&role.Role,
			&role.RoleLevel,
			&role.IsActive,
			&role.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (r *RoleRepository) Grant(ctx context.Context, userID, role string, level int) error {
	query := `
		INSERT INTO user_roles (user_id, role, role_level)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role) DO UPDATE SET role_level = EXCLUDED.role_level, is_active = TRUE`

	_, err := r.db.ExecContext(ctx, query, userID, role, level)
	return err
}
