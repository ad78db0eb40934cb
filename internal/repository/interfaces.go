package repository

import (
	"context"
	"time"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AdminUserRepository provides access to admin_users.
type AdminUserRepository interface {
	// FindByUsername returns a user by username, or nil if not found.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.AdminUser, error)

	// FindByID returns a user by id, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.AdminUser, error)

	// List returns all users ordered by username.
	List(ctx context.Context, db DBTX) ([]domain.AdminUser, error)

	// Create inserts a new user and returns its id.
	Create(ctx context.Context, db DBTX, username, passwordHash string) (int64, error)

	// ToggleActive flips the active flag.
	ToggleActive(ctx context.Context, db DBTX, id int64) error

	// Count returns the number of users.
	Count(ctx context.Context, db DBTX) (int, error)
}

// RoleRepository provides access to admin_roles and admin_user_roles.
type RoleRepository interface {
	// List returns all roles ordered by name.
	List(ctx context.Context, db DBTX) ([]domain.Role, error)

	// Create inserts a role, ignoring duplicates.
	Create(ctx context.Context, db DBTX, name string) error

	// RolesByUser returns a user id -> roles map covering every assignment.
	RolesByUser(ctx context.Context, db DBTX) (map[int64][]domain.Role, error)

	// Assign links a role to a user, ignoring duplicates.
	Assign(ctx context.Context, db DBTX, userID, roleID int64) error

	// Unassign removes a role from a user.
	Unassign(ctx context.Context, db DBTX, userID, roleID int64) error

	// Count returns the number of roles.
	Count(ctx context.Context, db DBTX) (int, error)
}

// SessionRepository provides access to admin_sessions, including the
// per-session flash queue.
type SessionRepository interface {
	// Create inserts a new session row.
	Create(ctx context.Context, db DBTX, s *domain.Session) error

	// Find returns a session by token, or nil if not found.
	Find(ctx context.Context, db DBTX, id string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, db DBTX, id string) error

	// DeleteExpired removes sessions past their expiry.
	DeleteExpired(ctx context.Context, db DBTX, now time.Time) error

	// AppendFlash pushes a flash message onto the session's queue.
	AppendFlash(ctx context.Context, db DBTX, id string, msg domain.FlashMessage) error

	// DrainFlash atomically returns and clears the session's flash queue.
	DrainFlash(ctx context.Context, db DBTX, id string) ([]domain.FlashMessage, error)
}

// PermissionRepository answers the raw authorization row lookups. The authz
// service layers the admin bypass and action validation on top.
type PermissionRepository interface {
	// UserHasRole reports whether the user holds a role with the given name.
	UserHasRole(ctx context.Context, db DBTX, userID int64, roleName string) (bool, error)

	// TableGrant reports whether any of the user's roles grants the action
	// column on the table.
	TableGrant(ctx context.Context, db DBTX, userID int64, table string, action domain.TableAction) (bool, error)

	// PanelGrant reports whether any of the user's roles grants the panel
	// capability.
	PanelGrant(ctx context.Context, db DBTX, userID int64, action domain.PanelAction) (bool, error)

	// FieldGrant reports whether any of the user's roles may edit the
	// player attribute on the side.
	FieldGrant(ctx context.Context, db DBTX, userID int64, side domain.Side, field string) (bool, error)

	// TableRowsForRole returns the table permission rows of one role.
	TableRowsForRole(ctx context.Context, db DBTX, roleID int64) ([]domain.TablePermissionRow, error)

	// PanelRowForRole returns the panel permission row of one role, or nil.
	PanelRowForRole(ctx context.Context, db DBTX, roleID int64) (*domain.PanelPermissionRow, error)

	// UpsertTableRow inserts or replaces one role/table permission row.
	UpsertTableRow(ctx context.Context, db DBTX, row domain.TablePermissionRow) error

	// UpsertPanelRow inserts or replaces one role panel permission row.
	UpsertPanelRow(ctx context.Context, db DBTX, row domain.PanelPermissionRow) error
}

// KVStoreRepository provides access to the sparse player attribute store.
type KVStoreRepository interface {
	// ListPlayers returns distinct players with coalesced display names.
	ListPlayers(ctx context.Context, db DBTX, limit int) ([]domain.PlayerSummary, error)

	// DisplayName returns the first non-null name across sides 0,1,2, or
	// the pid itself when the player has no name rows.
	DisplayName(ctx context.Context, db DBTX, pid string) (string, error)

	// InfoBySide pivots the editable attributes into one row per side.
	InfoBySide(ctx context.Context, db DBTX, pid string) (map[domain.Side]domain.PlayerInfo, error)

	// GearBySide pivots the gear and licenses blobs into one row per side.
	GearBySide(ctx context.Context, db DBTX, pid string) (map[domain.Side]domain.PlayerGear, error)

	// Upsert writes one attribute value keyed by (pid, key, side).
	Upsert(ctx context.Context, db DBTX, kv domain.KeyValue) error
}

// SupportCaseRepository provides access to support_cases.
type SupportCaseRepository interface {
	// ListByPlayer returns a player's cases, newest first, bounded.
	ListByPlayer(ctx context.Context, db DBTX, pid string, limit int) ([]domain.SupportCase, error)

	// Find returns a case scoped to (id, player), or nil if not found.
	Find(ctx context.Context, db DBTX, id int64, pid string) (*domain.SupportCase, error)

	// Create inserts a new open case.
	Create(ctx context.Context, db DBTX, c *domain.SupportCase) error

	// Update rewrites the editable fields of a case scoped to (id, player).
	Update(ctx context.Context, db DBTX, id int64, pid string, in domain.SupportCaseInput) error

	// ToggleStatus flips open/closed, scoped to (id, player).
	ToggleStatus(ctx context.Context, db DBTX, id int64, pid string) error

	// Delete removes a case scoped to (id, player).
	Delete(ctx context.Context, db DBTX, id int64, pid string) error
}

// VehicleRepository provides access to vehicles.
type VehicleRepository interface {
	// ListByPlayer returns a player's vehicles, most recently modified
	// first, bounded.
	ListByPlayer(ctx context.Context, db DBTX, pid string, limit int) ([]domain.Vehicle, error)

	// Find returns a vehicle by id, or nil if not found.
	Find(ctx context.Context, db DBTX, id int64) (*domain.Vehicle, error)

	// Update rewrites the editable flags and bumps ts_modified.
	Update(ctx context.Context, db DBTX, id int64, upd domain.VehicleUpdate) error

	// ApplyQuickAction applies a quick action's column effects and bumps
	// ts_modified.
	ApplyQuickAction(ctx context.Context, db DBTX, id int64, effect domain.QuickActionEffect) error
}
