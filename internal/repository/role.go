package repository

import (
	"context"

	"github.com/armahof/supportdesk/internal/domain"
)

// PgRoleRepository implements RoleRepository using pgx.
type PgRoleRepository struct{}

// NewPgRoleRepository creates a new PgRoleRepository.
func NewPgRoleRepository() *PgRoleRepository {
	return &PgRoleRepository{}
}

// List returns all roles ordered by name.
func (r *PgRoleRepository) List(ctx context.Context, db DBTX) ([]domain.Role, error) {
	rows, err := db.Query(ctx, `SELECT id, name FROM admin_roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Create inserts a role, ignoring duplicates.
func (r *PgRoleRepository) Create(ctx context.Context, db DBTX, name string) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admin_roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// RolesByUser returns a user id -> roles map covering every assignment.
func (r *PgRoleRepository) RolesByUser(ctx context.Context, db DBTX) (map[int64][]domain.Role, error) {
	rows, err := db.Query(ctx, `
		SELECT ur.user_id, r.id, r.name
		FROM admin_user_roles ur
		JOIN admin_roles r ON r.id = ur.role_id
		ORDER BY r.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byUser := make(map[int64][]domain.Role)
	for rows.Next() {
		var userID int64
		var role domain.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, err
		}
		byUser[userID] = append(byUser[userID], role)
	}
	return byUser, rows.Err()
}

// Assign links a role to a user, ignoring duplicates.
func (r *PgRoleRepository) Assign(ctx context.Context, db DBTX, userID, roleID int64) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admin_user_roles (user_id, role_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

// Unassign removes a role from a user.
func (r *PgRoleRepository) Unassign(ctx context.Context, db DBTX, userID, roleID int64) error {
	_, err := db.Exec(ctx,
		`DELETE FROM admin_user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// Count returns the number of roles.
func (r *PgRoleRepository) Count(ctx context.Context, db DBTX) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_roles`).Scan(&n)
	return n, err
}
