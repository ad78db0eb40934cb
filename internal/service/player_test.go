package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

type fakeChecker struct {
	admin   bool
	granted map[string]bool // "side/field"
}

func (f *fakeChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) { return f.admin, nil }

func (f *fakeChecker) CanTable(ctx context.Context, userID int64, table string, action domain.TableAction) (bool, error) {
	return false, nil
}

func (f *fakeChecker) CanPanel(ctx context.Context, userID int64, action domain.PanelAction) (bool, error) {
	return f.admin, nil
}

func (f *fakeChecker) CanField(ctx context.Context, userID int64, side domain.Side, field string) (bool, error) {
	if !domain.IsKVField(field) || side < domain.SideCivilian || side > domain.SideUNCDA {
		return false, nil
	}
	if f.admin {
		return true, nil
	}
	return f.granted[string(rune('0'+side))+"/"+field], nil
}

type fakeKVRepo struct {
	repository.KVStoreRepository
	name    string
	info    map[domain.Side]domain.PlayerInfo
	gear    map[domain.Side]domain.PlayerGear
	upserts []domain.KeyValue
}

func (f *fakeKVRepo) DisplayName(ctx context.Context, db repository.DBTX, pid string) (string, error) {
	if f.name == "" {
		return pid, nil
	}
	return f.name, nil
}

func (f *fakeKVRepo) InfoBySide(ctx context.Context, db repository.DBTX, pid string) (map[domain.Side]domain.PlayerInfo, error) {
	return f.info, nil
}

func (f *fakeKVRepo) GearBySide(ctx context.Context, db repository.DBTX, pid string) (map[domain.Side]domain.PlayerGear, error) {
	return f.gear, nil
}

func (f *fakeKVRepo) Upsert(ctx context.Context, db repository.DBTX, kv domain.KeyValue) error {
	f.upserts = append(f.upserts, kv)
	return nil
}

type fakeCaseRepo struct {
	repository.SupportCaseRepository
	cases []domain.SupportCase
}

func (f *fakeCaseRepo) ListByPlayer(ctx context.Context, db repository.DBTX, pid string, limit int) ([]domain.SupportCase, error) {
	return f.cases, nil
}

type fakeVehicleRepo struct {
	repository.VehicleRepository
	vehicles []domain.Vehicle
}

func (f *fakeVehicleRepo) ListByPlayer(ctx context.Context, db repository.DBTX, pid string, limit int) ([]domain.Vehicle, error) {
	return f.vehicles, nil
}

// fakeTx satisfies pgx.Tx for the handful of calls SaveInfo makes. The
// embedded nil interface panics on anything unexpected.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(ctx context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(ctx context.Context) error { f.rolledBack = true; return nil }

type fakeTxBeginner struct {
	tx *fakeTx
}

func (f *fakeTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

func TestDetail(t *testing.T) {
	kv := &fakeKVRepo{
		name: "John Doe",
		info: map[domain.Side]domain.PlayerInfo{
			domain.SideCivilian: {Side: domain.SideCivilian, Fields: map[string]string{"name": "John Doe", "cash": "500"}},
		},
	}
	cases := &fakeCaseRepo{cases: []domain.SupportCase{{ID: 7, PlayerID: "76561198000000001"}}}
	vehicles := &fakeVehicleRepo{vehicles: []domain.Vehicle{{ID: 3, PlayerID: "76561198000000001"}}}
	checker := &fakeChecker{granted: map[string]bool{"0/cash": true}}

	svc := NewPlayerService(nil, nil, kv, cases, vehicles, checker)
	detail, err := svc.Detail(context.Background(), 1, "76561198000000001")
	require.NoError(t, err)

	assert.Equal(t, "John Doe", detail.Name)
	assert.Len(t, detail.Cases, 1)
	assert.Len(t, detail.Vehicles, 1)

	assert.True(t, detail.Editable[domain.SideCivilian]["cash"])
	assert.False(t, detail.Editable[domain.SideCivilian]["bank"])
	assert.False(t, detail.Editable[domain.SidePolice]["cash"])
}

func TestDetailAdminEditsEverything(t *testing.T) {
	svc := NewPlayerService(nil, nil, &fakeKVRepo{}, &fakeCaseRepo{}, &fakeVehicleRepo{}, &fakeChecker{admin: true})
	detail, err := svc.Detail(context.Background(), 1, "p1")
	require.NoError(t, err)

	for _, side := range domain.AllSides {
		for _, field := range domain.KVFields {
			assert.True(t, detail.Editable[side][field], "side %d field %s", side, field)
		}
	}
}

func TestSaveInfo(t *testing.T) {
	t.Run("writes permitted non-empty fields in one transaction", func(t *testing.T) {
		kv := &fakeKVRepo{}
		beginner := &fakeTxBeginner{}
		checker := &fakeChecker{granted: map[string]bool{"1/cash": true, "1/bank": true}}
		svc := NewPlayerService(nil, beginner, kv, &fakeCaseRepo{}, &fakeVehicleRepo{}, checker)

		n, err := svc.SaveInfo(context.Background(), 1, "p1", domain.SidePolice, map[string]string{
			"cash": "1000",
			"bank": "  2000  ",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.True(t, beginner.tx.committed)

		require.Len(t, kv.upserts, 2)
		assert.Equal(t, domain.KeyValue{PlayerID: "p1", Key: "cash", Side: domain.SidePolice, Value: "1000", Type: "STRING"}, kv.upserts[0])
		assert.Equal(t, "2000", kv.upserts[1].Value, "values are trimmed")
	})

	t.Run("blank value never erases a stored attribute", func(t *testing.T) {
		kv := &fakeKVRepo{}
		checker := &fakeChecker{admin: true}
		svc := NewPlayerService(nil, &fakeTxBeginner{}, kv, &fakeCaseRepo{}, &fakeVehicleRepo{}, checker)

		n, err := svc.SaveInfo(context.Background(), 1, "p1", domain.SideCivilian, map[string]string{
			"cash": "",
			"bank": "   ",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, kv.upserts)
	})

	t.Run("unpermitted fields are skipped", func(t *testing.T) {
		kv := &fakeKVRepo{}
		checker := &fakeChecker{granted: map[string]bool{"0/cash": true}}
		svc := NewPlayerService(nil, &fakeTxBeginner{}, kv, &fakeCaseRepo{}, &fakeVehicleRepo{}, checker)

		n, err := svc.SaveInfo(context.Background(), 1, "p1", domain.SideCivilian, map[string]string{
			"cash": "100",
			"bank": "999",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, kv.upserts, 1)
		assert.Equal(t, "cash", kv.upserts[0].Key)
	})

	t.Run("unknown form keys are ignored", func(t *testing.T) {
		kv := &fakeKVRepo{}
		svc := NewPlayerService(nil, &fakeTxBeginner{}, kv, &fakeCaseRepo{}, &fakeVehicleRepo{}, &fakeChecker{admin: true})

		n, err := svc.SaveInfo(context.Background(), 1, "p1", domain.SideCivilian, map[string]string{
			"gear":    "hacked",
			"dropped": "x",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, kv.upserts)
	})

	t.Run("invalid side is rejected", func(t *testing.T) {
		svc := NewPlayerService(nil, &fakeTxBeginner{}, &fakeKVRepo{}, &fakeCaseRepo{}, &fakeVehicleRepo{}, &fakeChecker{admin: true})
		_, err := svc.SaveInfo(context.Background(), 1, "p1", domain.Side(3), nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*domain.AppError).Code)
	})
}
