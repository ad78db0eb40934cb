package repository

import (
	"context"

	"github.com/armahof/supportdesk/internal/domain"
)

// PgKVStoreRepository implements KVStoreRepository using pgx.
//
// The kvstore table is a sparse attribute store keyed by (pid, k, side); the
// reads here pivot it into fixed-shape rows the templates can render.
type PgKVStoreRepository struct{}

// NewPgKVStoreRepository creates a new PgKVStoreRepository.
func NewPgKVStoreRepository() *PgKVStoreRepository {
	return &PgKVStoreRepository{}
}

// ListPlayers returns distinct players with coalesced display names. The
// civilian name wins, then police, then UNCDA.
func (r *PgKVStoreRepository) ListPlayers(ctx context.Context, db DBTX, limit int) ([]domain.PlayerSummary, error) {
	rows, err := db.Query(ctx, `
		SELECT pid,
		       COALESCE(
		         MAX(CASE WHEN side = 0 THEN v END),
		         MAX(CASE WHEN side = 1 THEN v END),
		         MAX(CASE WHEN side = 2 THEN v END),
		         pid
		       ) AS name
		FROM kvstore
		WHERE k = 'name'
		GROUP BY pid
		ORDER BY name
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.PlayerSummary
	for rows.Next() {
		var p domain.PlayerSummary
		if err := rows.Scan(&p.PlayerID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// DisplayName returns the first non-null name across sides 0,1,2, or the pid
// itself when the player has no name rows.
func (r *PgKVStoreRepository) DisplayName(ctx context.Context, db DBTX, pid string) (string, error) {
	var name *string
	err := db.QueryRow(ctx, `
		SELECT COALESCE(
		  MAX(CASE WHEN side = 0 THEN v END),
		  MAX(CASE WHEN side = 1 THEN v END),
		  MAX(CASE WHEN side = 2 THEN v END)
		)
		FROM kvstore
		WHERE pid = $1 AND k = 'name'`, pid).Scan(&name)
	if err != nil {
		return "", err
	}
	if name == nil {
		return pid, nil
	}
	return *name, nil
}

// InfoBySide pivots the editable attributes into one row per side.
func (r *PgKVStoreRepository) InfoBySide(ctx context.Context, db DBTX, pid string) (map[domain.Side]domain.PlayerInfo, error) {
	rows, err := db.Query(ctx, `
		SELECT side, k, v
		FROM kvstore
		WHERE pid = $1
		ORDER BY side, k`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := make(map[domain.Side]domain.PlayerInfo)
	for rows.Next() {
		var side int16
		var key, value string
		if err := rows.Scan(&side, &key, &value); err != nil {
			return nil, err
		}
		if !domain.IsKVField(key) {
			continue
		}
		s := domain.Side(side)
		row, ok := info[s]
		if !ok {
			row = domain.PlayerInfo{Side: s, Fields: make(map[string]string)}
		}
		row.Fields[key] = value
		info[s] = row
	}
	return info, rows.Err()
}

// GearBySide pivots the gear and licenses blobs into one row per side.
func (r *PgKVStoreRepository) GearBySide(ctx context.Context, db DBTX, pid string) (map[domain.Side]domain.PlayerGear, error) {
	rows, err := db.Query(ctx, `
		SELECT side, k, v
		FROM kvstore
		WHERE pid = $1 AND k IN ('gear', 'licenses')
		ORDER BY side`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gear := make(map[domain.Side]domain.PlayerGear)
	for rows.Next() {
		var side int16
		var key, value string
		if err := rows.Scan(&side, &key, &value); err != nil {
			return nil, err
		}
		s := domain.Side(side)
		row := gear[s]
		row.Side = s
		switch key {
		case "gear":
			row.Gear = value
		case "licenses":
			row.Licenses = value
		}
		gear[s] = row
	}
	return gear, rows.Err()
}

// Upsert writes one attribute value keyed by (pid, key, side). Last writer
// wins; the primary key prevents duplicate attribute rows.
func (r *PgKVStoreRepository) Upsert(ctx context.Context, db DBTX, kv domain.KeyValue) error {
	_, err := db.Exec(ctx, `
		INSERT INTO kvstore (pid, k, side, v, t)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pid, k, side) DO UPDATE SET
			v = EXCLUDED.v,
			t = EXCLUDED.t`,
		kv.PlayerID, kv.Key, int16(kv.Side), kv.Value, kv.Type)
	return err
}
