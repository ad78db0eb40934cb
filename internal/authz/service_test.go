package authz

import (
	"context"
	"strconv"
	"testing"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePermissionRepo records grants as simple keyed sets.
type fakePermissionRepo struct {
	repository.PermissionRepository

	adminUsers  map[int64]bool
	tableGrants map[string]bool // "uid/table/action"
	panelGrants map[string]bool // "uid/action"
	fieldGrants map[string]bool // "uid/side/field"
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{
		adminUsers:  map[int64]bool{},
		tableGrants: map[string]bool{},
		panelGrants: map[string]bool{},
		fieldGrants: map[string]bool{},
	}
}

func (f *fakePermissionRepo) UserHasRole(ctx context.Context, db repository.DBTX, userID int64, roleName string) (bool, error) {
	if roleName == domain.AdminRoleName {
		return f.adminUsers[userID], nil
	}
	return false, nil
}

func (f *fakePermissionRepo) TableGrant(ctx context.Context, db repository.DBTX, userID int64, table string, action domain.TableAction) (bool, error) {
	return f.tableGrants[key3(userID, table, string(action))], nil
}

func (f *fakePermissionRepo) PanelGrant(ctx context.Context, db repository.DBTX, userID int64, action domain.PanelAction) (bool, error) {
	return f.panelGrants[key2(userID, string(action))], nil
}

func (f *fakePermissionRepo) FieldGrant(ctx context.Context, db repository.DBTX, userID int64, side domain.Side, field string) (bool, error) {
	return f.fieldGrants[key3(userID, side.Label(), field)], nil
}

func key2(uid int64, a string) string    { return strconv.FormatInt(uid, 10) + "/" + a }
func key3(uid int64, a, b string) string { return strconv.FormatInt(uid, 10) + "/" + a + "/" + b }

func TestCanTable(t *testing.T) {
	ctx := context.Background()
	repo := newFakePermissionRepo()
	svc := NewService(nil, repo)

	const supporter, admin int64 = 1, 2
	repo.adminUsers[admin] = true
	repo.tableGrants[key3(supporter, "plog", "view")] = true

	t.Run("granted row allows", func(t *testing.T) {
		ok, err := svc.CanTable(ctx, supporter, "plog", domain.ActionView)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent row denies", func(t *testing.T) {
		ok, err := svc.CanTable(ctx, supporter, "plog", domain.ActionCreate)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no admin bypass for table rights", func(t *testing.T) {
		ok, err := svc.CanTable(ctx, admin, "plog", domain.ActionView)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown action denies", func(t *testing.T) {
		ok, err := svc.CanTable(ctx, supporter, "plog", domain.TableAction("truncate"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanPanel(t *testing.T) {
	ctx := context.Background()
	repo := newFakePermissionRepo()
	svc := NewService(nil, repo)

	const supporter, admin int64 = 1, 2
	repo.adminUsers[admin] = true
	repo.panelGrants[key2(supporter, "admin_access")] = true

	t.Run("granted capability allows", func(t *testing.T) {
		ok, err := svc.CanPanel(ctx, supporter, domain.PanelAccess)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent capability denies", func(t *testing.T) {
		ok, err := svc.CanPanel(ctx, supporter, domain.PanelUserCreate)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("admin bypass", func(t *testing.T) {
		for _, action := range domain.PanelActions {
			ok, err := svc.CanPanel(ctx, admin, action)
			require.NoError(t, err)
			assert.True(t, ok, string(action))
		}
	})

	t.Run("unknown action denies even admins", func(t *testing.T) {
		ok, err := svc.CanPanel(ctx, admin, domain.PanelAction("shutdown"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanField(t *testing.T) {
	ctx := context.Background()
	repo := newFakePermissionRepo()
	svc := NewService(nil, repo)

	const supporter, admin int64 = 1, 2
	repo.adminUsers[admin] = true
	repo.fieldGrants[key3(supporter, domain.SideCivilian.Label(), "cash")] = true

	t.Run("granted field allows", func(t *testing.T) {
		ok, err := svc.CanField(ctx, supporter, domain.SideCivilian, "cash")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("same field other side denies", func(t *testing.T) {
		ok, err := svc.CanField(ctx, supporter, domain.SidePolice, "cash")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("admin bypass", func(t *testing.T) {
		ok, err := svc.CanField(ctx, admin, domain.SideUNCDA, "bank")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown field denies even admins", func(t *testing.T) {
		ok, err := svc.CanField(ctx, admin, domain.SideCivilian, "gear")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid side denies even admins", func(t *testing.T) {
		ok, err := svc.CanField(ctx, admin, domain.Side(7), "cash")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
