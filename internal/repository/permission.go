package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgPermissionRepository implements PermissionRepository using pgx.
type PgPermissionRepository struct{}

// NewPgPermissionRepository creates a new PgPermissionRepository.
func NewPgPermissionRepository() *PgPermissionRepository {
	return &PgPermissionRepository{}
}

// UserHasRole reports whether the user holds a role with the given name.
func (r *PgPermissionRepository) UserHasRole(ctx context.Context, db DBTX, userID int64, roleName string) (bool, error) {
	return existsQuery(ctx, db, `
		SELECT 1
		FROM admin_user_roles ur
		JOIN admin_roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND r.name = $2
		LIMIT 1`, userID, roleName)
}

// tableActionColumn maps an action to its admin_permissions column. The
// action is validated by the caller; identifiers are never taken from user
// input.
var tableActionColumn = map[domain.TableAction]string{
	domain.ActionView:   "can_view",
	domain.ActionCreate: "can_create",
	domain.ActionUpdate: "can_update",
	domain.ActionDelete: "can_delete",
}

// TableGrant reports whether any of the user's roles grants the action
// column on the table.
func (r *PgPermissionRepository) TableGrant(ctx context.Context, db DBTX, userID int64, table string, action domain.TableAction) (bool, error) {
	col, ok := tableActionColumn[action]
	if !ok {
		return false, nil
	}
	return existsQuery(ctx, db, fmt.Sprintf(`
		SELECT 1
		FROM admin_user_roles ur
		JOIN admin_permissions p ON p.role_id = ur.role_id
		WHERE ur.user_id = $1 AND p.table_name = $2 AND p.%s
		LIMIT 1`, col), userID, table)
}

// panelActionColumn maps a panel action to its admin_panel_permissions
// column.
var panelActionColumn = map[domain.PanelAction]string{
	domain.PanelAccess:          "can_admin_access",
	domain.PanelUserCreate:      "can_user_create",
	domain.PanelUserToggle:      "can_user_toggle",
	domain.PanelUserRoleAdd:     "can_user_role_add",
	domain.PanelUserRoleRemove:  "can_user_role_remove",
	domain.PanelRoleCreate:      "can_role_create",
	domain.PanelPermissionsEdit: "can_permissions_edit",
}

// PanelGrant reports whether any of the user's roles grants the panel
// capability.
func (r *PgPermissionRepository) PanelGrant(ctx context.Context, db DBTX, userID int64, action domain.PanelAction) (bool, error) {
	col, ok := panelActionColumn[action]
	if !ok {
		return false, nil
	}
	return existsQuery(ctx, db, fmt.Sprintf(`
		SELECT 1
		FROM admin_user_roles ur
		JOIN admin_panel_permissions ap ON ap.role_id = ur.role_id
		WHERE ur.user_id = $1 AND ap.%s
		LIMIT 1`, col), userID)
}

// FieldGrant reports whether any of the user's roles may edit the player
// attribute on the side.
func (r *PgPermissionRepository) FieldGrant(ctx context.Context, db DBTX, userID int64, side domain.Side, field string) (bool, error) {
	return existsQuery(ctx, db, `
		SELECT 1
		FROM admin_user_roles ur
		JOIN admin_kv_permissions kp ON kp.role_id = ur.role_id
		WHERE ur.user_id = $1 AND kp.side = $2 AND kp.field_name = $3 AND kp.can_edit
		LIMIT 1`, userID, int16(side), field)
}

// TableRowsForRole returns the table permission rows of one role.
func (r *PgPermissionRepository) TableRowsForRole(ctx context.Context, db DBTX, roleID int64) ([]domain.TablePermissionRow, error) {
	rows, err := db.Query(ctx, `
		SELECT role_id, table_name, can_view, can_create, can_update, can_delete
		FROM admin_permissions
		WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.TablePermissionRow
	for rows.Next() {
		var p domain.TablePermissionRow
		if err := rows.Scan(&p.RoleID, &p.TableName, &p.CanView, &p.CanCreate, &p.CanUpdate, &p.CanDelete); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// PanelRowForRole returns the panel permission row of one role, or nil.
func (r *PgPermissionRepository) PanelRowForRole(ctx context.Context, db DBTX, roleID int64) (*domain.PanelPermissionRow, error) {
	p := &domain.PanelPermissionRow{}
	err := db.QueryRow(ctx, `
		SELECT role_id, can_admin_access, can_user_create, can_user_toggle,
		       can_user_role_add, can_user_role_remove, can_role_create, can_permissions_edit
		FROM admin_panel_permissions
		WHERE role_id = $1`, roleID).
		Scan(&p.RoleID, &p.CanAdminAccess, &p.CanUserCreate, &p.CanUserToggle,
			&p.CanUserRoleAdd, &p.CanUserRoleRemove, &p.CanRoleCreate, &p.CanPermissionsEdit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertTableRow inserts or replaces one role/table permission row.
func (r *PgPermissionRepository) UpsertTableRow(ctx context.Context, db DBTX, row domain.TablePermissionRow) error {
	_, err := db.Exec(ctx, `
		INSERT INTO admin_permissions (role_id, table_name, can_view, can_create, can_update, can_delete)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (role_id, table_name) DO UPDATE SET
			can_view = EXCLUDED.can_view,
			can_create = EXCLUDED.can_create,
			can_update = EXCLUDED.can_update,
			can_delete = EXCLUDED.can_delete`,
		row.RoleID, row.TableName, row.CanView, row.CanCreate, row.CanUpdate, row.CanDelete)
	return err
}

// UpsertPanelRow inserts or replaces one role panel permission row.
func (r *PgPermissionRepository) UpsertPanelRow(ctx context.Context, db DBTX, row domain.PanelPermissionRow) error {
	_, err := db.Exec(ctx, `
		INSERT INTO admin_panel_permissions
			(role_id, can_admin_access, can_user_create, can_user_toggle,
			 can_user_role_add, can_user_role_remove, can_role_create, can_permissions_edit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (role_id) DO UPDATE SET
			can_admin_access = EXCLUDED.can_admin_access,
			can_user_create = EXCLUDED.can_user_create,
			can_user_toggle = EXCLUDED.can_user_toggle,
			can_user_role_add = EXCLUDED.can_user_role_add,
			can_user_role_remove = EXCLUDED.can_user_role_remove,
			can_role_create = EXCLUDED.can_role_create,
			can_permissions_edit = EXCLUDED.can_permissions_edit`,
		row.RoleID, row.CanAdminAccess, row.CanUserCreate, row.CanUserToggle,
		row.CanUserRoleAdd, row.CanUserRoleRemove, row.CanRoleCreate, row.CanPermissionsEdit)
	return err
}

func existsQuery(ctx context.Context, db DBTX, sql string, args ...interface{}) (bool, error) {
	var one int
	err := db.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
