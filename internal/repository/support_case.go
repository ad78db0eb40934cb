package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgSupportCaseRepository implements SupportCaseRepository using pgx.
type PgSupportCaseRepository struct{}

// NewPgSupportCaseRepository creates a new PgSupportCaseRepository.
func NewPgSupportCaseRepository() *PgSupportCaseRepository {
	return &PgSupportCaseRepository{}
}

const supportCaseColumns = `id, player_pid, player_name, case_type, area, supporter_name, scn, content, status, created_at, updated_at`

// ListByPlayer returns a player's cases, newest first, bounded.
func (r *PgSupportCaseRepository) ListByPlayer(ctx context.Context, db DBTX, pid string, limit int) ([]domain.SupportCase, error) {
	rows, err := db.Query(ctx, `
		SELECT `+supportCaseColumns+`
		FROM support_cases
		WHERE player_pid = $1
		ORDER BY created_at DESC
		LIMIT $2`, pid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []domain.SupportCase
	for rows.Next() {
		c, err := scanSupportCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

// Find returns a case scoped to (id, player), or nil if not found.
func (r *PgSupportCaseRepository) Find(ctx context.Context, db DBTX, id int64, pid string) (*domain.SupportCase, error) {
	row := db.QueryRow(ctx, `
		SELECT `+supportCaseColumns+`
		FROM support_cases
		WHERE id = $1 AND player_pid = $2`, id, pid)

	c, err := scanSupportCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new open case.
func (r *PgSupportCaseRepository) Create(ctx context.Context, db DBTX, c *domain.SupportCase) error {
	return db.QueryRow(ctx, `
		INSERT INTO support_cases
			(player_pid, player_name, case_type, area, supporter_name, scn, content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open')
		RETURNING id`,
		c.PlayerID, c.PlayerName, c.CaseType, c.Area, c.SupporterName, c.Scenario, c.Content).
		Scan(&c.ID)
}

// Update rewrites the editable fields of a case scoped to (id, player).
func (r *PgSupportCaseRepository) Update(ctx context.Context, db DBTX, id int64, pid string, in domain.SupportCaseInput) error {
	tag, err := db.Exec(ctx, `
		UPDATE support_cases
		SET case_type = $3,
		    area = $4,
		    supporter_name = $5,
		    scn = $6,
		    content = $7,
		    status = $8,
		    updated_at = now()
		WHERE id = $1 AND player_pid = $2`,
		id, pid, in.CaseType, in.Area, in.SupporterName, in.Scenario, in.Content, string(in.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("support case", strconv.FormatInt(id, 10))
	}
	return nil
}

// ToggleStatus flips open/closed, scoped to (id, player).
func (r *PgSupportCaseRepository) ToggleStatus(ctx context.Context, db DBTX, id int64, pid string) error {
	tag, err := db.Exec(ctx, `
		UPDATE support_cases
		SET status = CASE WHEN status = 'open' THEN 'closed' ELSE 'open' END,
		    updated_at = now()
		WHERE id = $1 AND player_pid = $2`, id, pid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("support case", strconv.FormatInt(id, 10))
	}
	return nil
}

// Delete removes a case scoped to (id, player).
func (r *PgSupportCaseRepository) Delete(ctx context.Context, db DBTX, id int64, pid string) error {
	_, err := db.Exec(ctx,
		`DELETE FROM support_cases WHERE id = $1 AND player_pid = $2`, id, pid)
	return err
}

func scanSupportCase(row pgx.Row) (*domain.SupportCase, error) {
	c := &domain.SupportCase{}
	var status string
	err := row.Scan(&c.ID, &c.PlayerID, &c.PlayerName, &c.CaseType, &c.Area,
		&c.SupporterName, &c.Scenario, &c.Content, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = domain.ParseCaseStatus(status)
	return c, nil
}
