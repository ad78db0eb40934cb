package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/authz"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
	"github.com/armahof/supportdesk/internal/service"
)

// AdminHandler serves the admin panel: user and role management and the
// permission matrix editor.
type AdminHandler struct {
	db        repository.DBTX
	tx        service.TxBeginner
	users     repository.AdminUserRepository
	roles     repository.RoleRepository
	perms     repository.PermissionRepository
	reflector *repository.Reflector
	checker   authz.Checker
	sessions  *auth.SessionManager
	renderer  *Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db repository.DBTX, tx service.TxBeginner, users repository.AdminUserRepository, roles repository.RoleRepository, perms repository.PermissionRepository, reflector *repository.Reflector, checker authz.Checker, sessions *auth.SessionManager, renderer *Renderer) *AdminHandler {
	return &AdminHandler{
		db: db, tx: tx, users: users, roles: roles, perms: perms,
		reflector: reflector, checker: checker, sessions: sessions, renderer: renderer,
	}
}

// requirePanel loads the current user and enforces one panel capability.
// Returns nil after writing the response when the check fails.
func (h *AdminHandler) requirePanel(w http.ResponseWriter, r *http.Request, action domain.PanelAction) *domain.AdminUser {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return nil
	}
	allowed, err := h.checker.CanPanel(r.Context(), user.ID, action)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("check panel permission", err))
		return nil
	}
	if !allowed {
		h.renderer.Error(w, r, domain.ErrForbidden("no "+string(action)+" capability"))
		return nil
	}
	return user
}

// dashboardPage is the data for GET /admin.
type dashboardPage struct {
	UserCount  int
	RoleCount  int
	TableCount int
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelAccess) == nil {
		return
	}

	userCount, err := h.users.Count(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("count users", err))
		return
	}
	roleCount, err := h.roles.Count(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("count roles", err))
		return
	}
	tables, err := h.reflector.ListTables(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list tables", err))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "admin_dashboard", dashboardPage{
		UserCount:  userCount,
		RoleCount:  roleCount,
		TableCount: len(tables),
	})
}

// usersPage is the data for GET /admin/users.
type usersPage struct {
	Users       []domain.AdminUser
	UserRoles   map[int64][]domain.Role
	Roles       []domain.Role
	CanCreate   bool
	CanToggle   bool
	CanAddRole  bool
	CanDropRole bool
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	user := h.requirePanel(w, r, domain.PanelAccess)
	if user == nil {
		return
	}

	users, err := h.users.List(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list users", err))
		return
	}
	userRoles, err := h.roles.RolesByUser(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("load role assignments", err))
		return
	}
	roles, err := h.roles.List(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list roles", err))
		return
	}

	page := usersPage{Users: users, UserRoles: userRoles, Roles: roles}
	page.CanCreate, _ = h.checker.CanPanel(r.Context(), user.ID, domain.PanelUserCreate)
	page.CanToggle, _ = h.checker.CanPanel(r.Context(), user.ID, domain.PanelUserToggle)
	page.CanAddRole, _ = h.checker.CanPanel(r.Context(), user.ID, domain.PanelUserRoleAdd)
	page.CanDropRole, _ = h.checker.CanPanel(r.Context(), user.ID, domain.PanelUserRoleRemove)

	h.renderer.Render(w, r, http.StatusOK, "admin_users", page)
}

// UserCreate handles POST /admin/users/create.
func (h *AdminHandler) UserCreate(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelUserCreate) == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if len(username) < 3 {
		h.flashAndBack(w, r, "username must be at least 3 characters", domain.FlashWarning)
		return
	}
	if len(password) < 8 {
		h.flashAndBack(w, r, "password must be at least 8 characters", domain.FlashWarning)
		return
	}

	existing, err := h.users.FindByUsername(r.Context(), h.db, username)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("find user", err))
		return
	}
	if existing != nil {
		h.flashAndBack(w, r, "username already taken", domain.FlashWarning)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("hash password", err))
		return
	}
	if _, err := h.users.Create(r.Context(), h.db, username, hash); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("create user", err))
		return
	}

	h.sessions.Flash(r.Context(), r, "user "+username+" created", domain.FlashSuccess)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserToggle handles POST /admin/users/{id}/toggle.
func (h *AdminHandler) UserToggle(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelUserToggle) == nil {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid user id"))
		return
	}

	if err := h.users.ToggleActive(r.Context(), h.db, id); err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	h.sessions.Flash(r.Context(), r, "user state toggled", domain.FlashSuccess)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserRoleAdd handles POST /admin/users/{id}/roles/add.
func (h *AdminHandler) UserRoleAdd(w http.ResponseWriter, r *http.Request) {
	h.userRoleChange(w, r, domain.PanelUserRoleAdd, "role assigned", h.roles.Assign)
}

// UserRoleRemove handles POST /admin/users/{id}/roles/remove.
func (h *AdminHandler) UserRoleRemove(w http.ResponseWriter, r *http.Request) {
	h.userRoleChange(w, r, domain.PanelUserRoleRemove, "role removed", h.roles.Unassign)
}

func (h *AdminHandler) userRoleChange(w http.ResponseWriter, r *http.Request, action domain.PanelAction, successMsg string, change func(ctx context.Context, db repository.DBTX, userID, roleID int64) error) {
	if h.requirePanel(w, r, action) == nil {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid user id"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}
	roleID, err := strconv.ParseInt(r.PostFormValue("role_id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid role id"))
		return
	}

	if err := change(r.Context(), h.db, userID, roleID); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("change role assignment", err))
		return
	}
	h.sessions.Flash(r.Context(), r, successMsg, domain.FlashSuccess)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// rolesPage is the data for GET /admin/roles.
type rolesPage struct {
	Roles     []domain.Role
	CanCreate bool
}

// Roles handles GET /admin/roles.
func (h *AdminHandler) Roles(w http.ResponseWriter, r *http.Request) {
	user := h.requirePanel(w, r, domain.PanelAccess)
	if user == nil {
		return
	}

	roles, err := h.roles.List(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list roles", err))
		return
	}

	page := rolesPage{Roles: roles}
	page.CanCreate, _ = h.checker.CanPanel(r.Context(), user.ID, domain.PanelRoleCreate)
	h.renderer.Render(w, r, http.StatusOK, "admin_roles", page)
}

// RoleCreate handles POST /admin/roles/create.
func (h *AdminHandler) RoleCreate(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelRoleCreate) == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		h.flashAndBack(w, r, "role name must not be empty", domain.FlashWarning)
		return
	}
	if err := h.roles.Create(r.Context(), h.db, name); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("create role", err))
		return
	}

	h.sessions.Flash(r.Context(), r, "role "+name+" created", domain.FlashSuccess)
	http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
}

// permissionsPage is the data for GET /admin/permissions.
type permissionsPage struct {
	Roles        []domain.Role
	Selected     *domain.Role
	Tables       []string
	TableActions []domain.TableAction
	PanelActions []domain.PanelAction
	TableRows    map[string]domain.TablePermissionRow
	PanelRow     domain.PanelPermissionRow
}

// Permissions handles GET /admin/permissions?role_id=N.
func (h *AdminHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelPermissionsEdit) == nil {
		return
	}

	roles, err := h.roles.List(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list roles", err))
		return
	}
	tables, err := h.reflector.ListTables(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list tables", err))
		return
	}

	page := permissionsPage{
		Roles:        roles,
		Tables:       tables,
		TableActions: domain.TableActions,
		PanelActions: domain.PanelActions,
		TableRows:    make(map[string]domain.TablePermissionRow),
	}

	if roleID, err := strconv.ParseInt(r.URL.Query().Get("role_id"), 10, 64); err == nil {
		for i := range roles {
			if roles[i].ID == roleID {
				page.Selected = &roles[i]
				break
			}
		}
	}
	if page.Selected != nil {
		rows, err := h.perms.TableRowsForRole(r.Context(), h.db, page.Selected.ID)
		if err != nil {
			h.renderer.Error(w, r, domain.ErrInternal("load table permissions", err))
			return
		}
		for _, row := range rows {
			page.TableRows[row.TableName] = row
		}
		panelRow, err := h.perms.PanelRowForRole(r.Context(), h.db, page.Selected.ID)
		if err != nil {
			h.renderer.Error(w, r, domain.ErrInternal("load panel permissions", err))
			return
		}
		if panelRow != nil {
			page.PanelRow = *panelRow
		}
	}

	h.renderer.Render(w, r, http.StatusOK, "admin_permissions", page)
}

// PermissionsSave handles POST /admin/permissions/save. Checkbox keys follow
// the form naming {table}__{action} and ap__{action}; an unchecked box simply
// does not appear in the form, so every row is rewritten from what is present.
// Both permission tables are written in one transaction.
func (h *AdminHandler) PermissionsSave(w http.ResponseWriter, r *http.Request) {
	if h.requirePanel(w, r, domain.PanelPermissionsEdit) == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	roleID, err := strconv.ParseInt(r.PostFormValue("role_id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid role id"))
		return
	}
	tables, err := h.reflector.ListTables(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list tables", err))
		return
	}

	tx, err := h.tx.Begin(r.Context())
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("begin transaction", err))
		return
	}
	defer tx.Rollback(r.Context())

	for _, table := range tables {
		row := domain.TablePermissionRow{
			RoleID:    roleID,
			TableName: table,
			CanView:   r.PostForm.Has(table + "__view"),
			CanCreate: r.PostForm.Has(table + "__create"),
			CanUpdate: r.PostForm.Has(table + "__update"),
			CanDelete: r.PostForm.Has(table + "__delete"),
		}
		if err := h.perms.UpsertTableRow(r.Context(), tx, row); err != nil {
			h.renderer.Error(w, r, domain.ErrInternal("save table permissions", err))
			return
		}
	}

	panelRow := domain.PanelPermissionRow{
		RoleID:             roleID,
		CanAdminAccess:     r.PostForm.Has("ap__admin_access"),
		CanUserCreate:      r.PostForm.Has("ap__user_create"),
		CanUserToggle:      r.PostForm.Has("ap__user_toggle"),
		CanUserRoleAdd:     r.PostForm.Has("ap__user_role_add"),
		CanUserRoleRemove:  r.PostForm.Has("ap__user_role_remove"),
		CanRoleCreate:      r.PostForm.Has("ap__role_create"),
		CanPermissionsEdit: r.PostForm.Has("ap__permissions_edit"),
	}
	if err := h.perms.UpsertPanelRow(r.Context(), tx, panelRow); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("save panel permissions", err))
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("commit permissions", err))
		return
	}

	h.sessions.Flash(r.Context(), r, "permissions saved", domain.FlashSuccess)
	http.Redirect(w, r, "/admin/permissions?role_id="+strconv.FormatInt(roleID, 10), http.StatusSeeOther)
}

// flashAndBack records a message and returns to the referring page.
func (h *AdminHandler) flashAndBack(w http.ResponseWriter, r *http.Request, message, category string) {
	h.sessions.Flash(r.Context(), r, message, category)
	redirectBack(w, r)
}
