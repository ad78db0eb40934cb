package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgVehicleRepository implements VehicleRepository using pgx.
type PgVehicleRepository struct{}

// NewPgVehicleRepository creates a new PgVehicleRepository.
func NewPgVehicleRepository() *PgVehicleRepository {
	return &PgVehicleRepository{}
}

const vehicleColumns = `id, side, classname, type, pid, alive, active, sold, locked, color, trunk, chip, ts_bought, ts_modified`

// ListByPlayer returns a player's vehicles, most recently modified first,
// bounded.
func (r *PgVehicleRepository) ListByPlayer(ctx context.Context, db DBTX, pid string, limit int) ([]domain.Vehicle, error) {
	rows, err := db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE pid = $1
		ORDER BY ts_modified DESC, id DESC
		LIMIT $2`, pid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

// Find returns a vehicle by id, or nil if not found.
func (r *PgVehicleRepository) Find(ctx context.Context, db DBTX, id int64) (*domain.Vehicle, error) {
	row := db.QueryRow(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE id = $1`, id)

	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Update rewrites the editable flags and bumps ts_modified.
func (r *PgVehicleRepository) Update(ctx context.Context, db DBTX, id int64, upd domain.VehicleUpdate) error {
	tag, err := db.Exec(ctx, `
		UPDATE vehicles
		SET alive = $2,
		    active = $3,
		    sold = $4,
		    locked = $5,
		    color = $6,
		    trunk = $7,
		    ts_modified = now()
		WHERE id = $1`,
		id, boolFlag(upd.Alive), boolFlag(upd.Active), boolFlag(upd.Sold), boolFlag(upd.Locked), upd.Color, upd.Trunk)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("vehicle", strconv.FormatInt(id, 10))
	}
	return nil
}

// ApplyQuickAction applies a quick action's column effects and bumps
// ts_modified. The SET list is assembled from the fixed effect table, never
// from request input.
func (r *PgVehicleRepository) ApplyQuickAction(ctx context.Context, db DBTX, id int64, effect domain.QuickActionEffect) error {
	sets := "ts_modified = now()"
	args := []interface{}{id}
	n := 2

	add := func(col string, val *bool) {
		if val == nil {
			return
		}
		sets += fmt.Sprintf(", %s = $%d", col, n)
		args = append(args, boolFlag(*val))
		n++
	}
	add("alive", effect.Alive)
	add("active", effect.Active)
	add("sold", effect.Sold)
	add("locked", effect.Locked)

	tag, err := db.Exec(ctx, `UPDATE vehicles SET `+sets+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("vehicle", strconv.FormatInt(id, 10))
	}
	return nil
}

// boolFlag converts to the 0/1 integer flags the game schema stores.
func boolFlag(b bool) int16 {
	if b {
		return 1
	}
	return 0
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	var alive, active, sold, locked, chip int16
	err := row.Scan(&v.ID, &v.Side, &v.ClassName, &v.Type, &v.PlayerID,
		&alive, &active, &sold, &locked, &v.Color, &v.Trunk, &chip,
		&v.BoughtAt, &v.ModifiedAt)
	if err != nil {
		return nil, err
	}
	v.Alive = alive != 0
	v.Active = active != 0
	v.Sold = sold != 0
	v.Locked = locked != 0
	v.Chip = chip != 0
	return v, nil
}
