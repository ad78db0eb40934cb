package domain

// TableAction is one of the four per-table CRUD rights. Unknown action names
// never parse, and every permission check on an unparsed action denies.
type TableAction string

const (
	ActionView   TableAction = "view"
	ActionCreate TableAction = "create"
	ActionUpdate TableAction = "update"
	ActionDelete TableAction = "delete"
)

// TableActions lists the valid table actions in form order.
var TableActions = []TableAction{ActionView, ActionCreate, ActionUpdate, ActionDelete}

// ParseTableAction validates an action name from a form or URL.
func ParseTableAction(s string) (TableAction, bool) {
	switch TableAction(s) {
	case ActionView, ActionCreate, ActionUpdate, ActionDelete:
		return TableAction(s), true
	}
	return "", false
}

// PanelAction is one of the fixed admin-panel capabilities.
type PanelAction string

const (
	PanelAccess          PanelAction = "admin_access"
	PanelUserCreate      PanelAction = "user_create"
	PanelUserToggle      PanelAction = "user_toggle"
	PanelUserRoleAdd     PanelAction = "user_role_add"
	PanelUserRoleRemove  PanelAction = "user_role_remove"
	PanelRoleCreate      PanelAction = "role_create"
	PanelPermissionsEdit PanelAction = "permissions_edit"
)

// PanelActions lists the valid panel actions in form order.
var PanelActions = []PanelAction{
	PanelAccess,
	PanelUserCreate,
	PanelUserToggle,
	PanelUserRoleAdd,
	PanelUserRoleRemove,
	PanelRoleCreate,
	PanelPermissionsEdit,
}

// ParsePanelAction validates a panel action name.
func ParsePanelAction(s string) (PanelAction, bool) {
	for _, a := range PanelActions {
		if PanelAction(s) == a {
			return a, true
		}
	}
	return "", false
}

// TablePermissionRow is one admin_permissions row: the CRUD rights a role
// holds on a single table. Absence of a row means no access.
type TablePermissionRow struct {
	RoleID    int64
	TableName string
	CanView   bool
	CanCreate bool
	CanUpdate bool
	CanDelete bool
}

// Allows reports whether the row grants the given action.
func (p TablePermissionRow) Allows(action TableAction) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionCreate:
		return p.CanCreate
	case ActionUpdate:
		return p.CanUpdate
	case ActionDelete:
		return p.CanDelete
	}
	return false
}

// PanelPermissionRow is one admin_panel_permissions row: the panel
// capabilities a role holds.
type PanelPermissionRow struct {
	RoleID             int64
	CanAdminAccess     bool
	CanUserCreate      bool
	CanUserToggle      bool
	CanUserRoleAdd     bool
	CanUserRoleRemove  bool
	CanRoleCreate      bool
	CanPermissionsEdit bool
}

// Allows reports whether the row grants the given panel action.
func (p PanelPermissionRow) Allows(action PanelAction) bool {
	switch action {
	case PanelAccess:
		return p.CanAdminAccess
	case PanelUserCreate:
		return p.CanUserCreate
	case PanelUserToggle:
		return p.CanUserToggle
	case PanelUserRoleAdd:
		return p.CanUserRoleAdd
	case PanelUserRoleRemove:
		return p.CanUserRoleRemove
	case PanelRoleCreate:
		return p.CanRoleCreate
	case PanelPermissionsEdit:
		return p.CanPermissionsEdit
	}
	return false
}

// KVFieldPermissionRow is one admin_kv_permissions row: whether a role may
// edit a single player attribute on a single side.
type KVFieldPermissionRow struct {
	RoleID    int64
	Side      Side
	FieldName string
	CanEdit   bool
}
