package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgAdminUserRepository implements AdminUserRepository using pgx.
type PgAdminUserRepository struct{}

// NewPgAdminUserRepository creates a new PgAdminUserRepository.
func NewPgAdminUserRepository() *PgAdminUserRepository {
	return &PgAdminUserRepository{}
}

// FindByUsername returns a user by username, or nil if not found.
func (r *PgAdminUserRepository) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.AdminUser, error) {
	row := db.QueryRow(ctx,
		`SELECT id, username, password_hash, is_active, created_at
		 FROM admin_users WHERE username = $1`, username)
	return scanAdminUser(row)
}

// FindByID returns a user by id, or nil if not found.
func (r *PgAdminUserRepository) FindByID(ctx context.Context, db DBTX, id int64) (*domain.AdminUser, error) {
	row := db.QueryRow(ctx,
		`SELECT id, username, password_hash, is_active, created_at
		 FROM admin_users WHERE id = $1`, id)
	return scanAdminUser(row)
}

// List returns all users ordered by username.
func (r *PgAdminUserRepository) List(ctx context.Context, db DBTX) ([]domain.AdminUser, error) {
	rows, err := db.Query(ctx,
		`SELECT id, username, password_hash, is_active, created_at
		 FROM admin_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.AdminUser
	for rows.Next() {
		var u domain.AdminUser
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user and returns its id.
func (r *PgAdminUserRepository) Create(ctx context.Context, db DBTX, username, passwordHash string) (int64, error) {
	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO admin_users (username, password_hash, is_active)
		 VALUES ($1, $2, true) RETURNING id`,
		username, passwordHash).Scan(&id)
	return id, err
}

// ToggleActive flips the active flag.
func (r *PgAdminUserRepository) ToggleActive(ctx context.Context, db DBTX, id int64) error {
	tag, err := db.Exec(ctx,
		`UPDATE admin_users SET is_active = NOT is_active WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("user", strconv.FormatInt(id, 10))
	}
	return nil
}

// Count returns the number of users.
func (r *PgAdminUserRepository) Count(ctx context.Context, db DBTX) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n)
	return n, err
}

func scanAdminUser(row pgx.Row) (*domain.AdminUser, error) {
	u := &domain.AdminUser{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
