package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/armahof/supportdesk/internal/authz"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

const (
	// PlayerListLimit bounds the player directory page.
	PlayerListLimit = 2000

	// detailListLimit bounds the case and vehicle lists on the detail page.
	detailListLimit = 500
)

// TxBeginner is the slice of pgxpool.Pool the player service needs to run
// multi-row writes atomically.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlayerDetail aggregates everything the player detail page renders.
type PlayerDetail struct {
	PlayerID string
	Name     string
	Info     map[domain.Side]domain.PlayerInfo
	Gear     map[domain.Side]domain.PlayerGear
	Cases    []domain.SupportCase
	Vehicles []domain.Vehicle

	// Editable[side][field] reports whether the viewer may edit that
	// attribute; the template disables inputs accordingly.
	Editable map[domain.Side]map[string]bool
}

// PlayerService aggregates player data across the key/value store, support
// cases and vehicles, and applies per-field attribute edits.
type PlayerService struct {
	db       repository.DBTX
	tx       TxBeginner
	kv       repository.KVStoreRepository
	cases    repository.SupportCaseRepository
	vehicles repository.VehicleRepository
	checker  authz.Checker
}

// NewPlayerService creates a new PlayerService. db and tx are usually the
// same pgxpool.Pool.
func NewPlayerService(db repository.DBTX, tx TxBeginner, kv repository.KVStoreRepository, cases repository.SupportCaseRepository, vehicles repository.VehicleRepository, checker authz.Checker) *PlayerService {
	return &PlayerService{db: db, tx: tx, kv: kv, cases: cases, vehicles: vehicles, checker: checker}
}

// List returns the bounded player directory.
func (s *PlayerService) List(ctx context.Context) ([]domain.PlayerSummary, error) {
	return s.kv.ListPlayers(ctx, s.db, PlayerListLimit)
}

// Detail loads the full player view for one viewer, including the viewer's
// per-side, per-field edit matrix.
func (s *PlayerService) Detail(ctx context.Context, viewerID int64, pid string) (*PlayerDetail, error) {
	name, err := s.kv.DisplayName(ctx, s.db, pid)
	if err != nil {
		return nil, domain.ErrInternal("load player name", err)
	}
	info, err := s.kv.InfoBySide(ctx, s.db, pid)
	if err != nil {
		return nil, domain.ErrInternal("load player info", err)
	}
	gear, err := s.kv.GearBySide(ctx, s.db, pid)
	if err != nil {
		return nil, domain.ErrInternal("load player gear", err)
	}
	cases, err := s.cases.ListByPlayer(ctx, s.db, pid, detailListLimit)
	if err != nil {
		return nil, domain.ErrInternal("load support cases", err)
	}
	vehicles, err := s.vehicles.ListByPlayer(ctx, s.db, pid, detailListLimit)
	if err != nil {
		return nil, domain.ErrInternal("load vehicles", err)
	}

	editable := make(map[domain.Side]map[string]bool, len(domain.AllSides))
	for _, side := range domain.AllSides {
		row := make(map[string]bool, len(domain.KVFields))
		for _, field := range domain.KVFields {
			ok, err := s.checker.CanField(ctx, viewerID, side, field)
			if err != nil {
				return nil, domain.ErrInternal("check field permission", err)
			}
			row[field] = ok
		}
		editable[side] = row
	}

	return &PlayerDetail{
		PlayerID: pid,
		Name:     name,
		Info:     info,
		Gear:     gear,
		Cases:    cases,
		Vehicles: vehicles,
		Editable: editable,
	}, nil
}

// SaveInfo applies one side's attribute form for a viewer. Every submitted
// field is permission-checked again on the server; fields the viewer may not
// edit are skipped, as are blank values, so an empty input never erases a
// stored attribute. All writes land in one transaction. Returns the number
// of attributes written.
func (s *PlayerService) SaveInfo(ctx context.Context, viewerID int64, pid string, side domain.Side, form map[string]string) (int, error) {
	if side < domain.SideCivilian || side > domain.SideUNCDA {
		return 0, domain.ErrValidation("invalid side")
	}

	writes := make([]domain.KeyValue, 0, len(domain.KVFields))
	for _, field := range domain.KVFields {
		value := strings.TrimSpace(form[field])
		if value == "" {
			continue
		}
		ok, err := s.checker.CanField(ctx, viewerID, side, field)
		if err != nil {
			return 0, domain.ErrInternal("check field permission", err)
		}
		if !ok {
			continue
		}
		writes = append(writes, domain.KeyValue{
			PlayerID: pid,
			Key:      field,
			Side:     side,
			Value:    value,
			Type:     "STRING",
		})
	}
	if len(writes) == 0 {
		return 0, nil
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return 0, domain.ErrInternal("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, kv := range writes {
		if err := s.kv.Upsert(ctx, tx, kv); err != nil {
			return 0, domain.ErrInternal("save player attribute", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, domain.ErrInternal("commit player attributes", err)
	}
	return len(writes), nil
}
