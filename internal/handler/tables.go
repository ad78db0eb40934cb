package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/authz"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// TablesHandler serves the generic table browser: listing, row display and
// schema-driven row mutations over every exposed game table.
type TablesHandler struct {
	db        repository.DBTX
	reflector *repository.Reflector
	checker   authz.Checker
	sessions  *auth.SessionManager
	renderer  *Renderer
}

// NewTablesHandler creates a new TablesHandler.
func NewTablesHandler(db repository.DBTX, reflector *repository.Reflector, checker authz.Checker, sessions *auth.SessionManager, renderer *Renderer) *TablesHandler {
	return &TablesHandler{db: db, reflector: reflector, checker: checker, sessions: sessions, renderer: renderer}
}

// currentUser returns the authenticated user placed in context by RequireUser.
func currentUser(r *http.Request) (*domain.AdminUser, error) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		return nil, domain.ErrUnauthorized("not logged in")
	}
	return user, nil
}

// List handles GET /tables. Only tables the viewer may view are listed.
func (h *TablesHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	all, err := h.reflector.ListTables(r.Context(), h.db)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list tables", err))
		return
	}

	var visible []string
	for _, name := range all {
		ok, err := h.checker.CanTable(r.Context(), user.ID, name, domain.ActionView)
		if err != nil {
			h.renderer.Error(w, r, domain.ErrInternal("check table permission", err))
			return
		}
		if ok {
			visible = append(visible, name)
		}
	}
	h.renderer.Render(w, r, http.StatusOK, "tables", visible)
}

// tablePage is the data for the single-table view.
type tablePage struct {
	Schema *domain.TableSchema
	Rows   []map[string]string

	// Per-action abilities, already merged with UI rules and primary key
	// presence; the template renders forms only for what is actually allowed.
	CanCreate bool
	CanUpdate bool
	CanDelete bool
	HasPK     bool
}

// Show handles GET /table/{name}.
func (h *TablesHandler) Show(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	schema, err := h.reflector.LoadSchema(r.Context(), h.db, name)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	canView, err := h.checker.CanTable(r.Context(), user.ID, name, domain.ActionView)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("check table permission", err))
		return
	}
	if !canView {
		h.renderer.Error(w, r, domain.ErrForbidden("no access to table "+name))
		return
	}

	rows, err := h.reflector.ListRows(r.Context(), h.db, schema, repository.DefaultListLimit, 0)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list rows", err))
		return
	}

	page := tablePage{
		Schema: schema,
		Rows:   rows,
		HasPK:  len(schema.PrimaryKey()) > 0,
	}
	rule := domain.UIRuleFor(name)
	if ok, _ := h.checker.CanTable(r.Context(), user.ID, name, domain.ActionCreate); ok && !rule.Blocks(domain.ActionCreate) {
		page.CanCreate = true
	}
	if ok, _ := h.checker.CanTable(r.Context(), user.ID, name, domain.ActionUpdate); ok && !rule.Blocks(domain.ActionUpdate) && page.HasPK {
		page.CanUpdate = true
	}
	if ok, _ := h.checker.CanTable(r.Context(), user.ID, name, domain.ActionDelete); ok && !rule.Blocks(domain.ActionDelete) && page.HasPK {
		page.CanDelete = true
	}

	h.renderer.Render(w, r, http.StatusOK, "table", page)
}

// CreateRow handles POST /table/{name}/create.
func (h *TablesHandler) CreateRow(w http.ResponseWriter, r *http.Request) {
	h.mutateRow(w, r, domain.ActionCreate, "row created", func(req *http.Request, schema *domain.TableSchema, pk, data map[string]string) error {
		return h.reflector.InsertRow(req.Context(), h.db, schema, data)
	})
}

// UpdateRow handles POST /table/{name}/update.
func (h *TablesHandler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	h.mutateRow(w, r, domain.ActionUpdate, "row updated", func(req *http.Request, schema *domain.TableSchema, pk, data map[string]string) error {
		return h.reflector.UpdateRow(req.Context(), h.db, schema, pk, data)
	})
}

// DeleteRow handles POST /table/{name}/delete.
func (h *TablesHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	h.mutateRow(w, r, domain.ActionDelete, "row deleted", func(req *http.Request, schema *domain.TableSchema, pk, data map[string]string) error {
		return h.reflector.DeleteRow(req.Context(), h.db, schema, pk)
	})
}

// mutateRow is the shared permission-check-then-mutate-then-redirect path
// for the three row mutations. The permission and the UI rule are both
// re-checked here; hiding a form in the template is not enforcement.
func (h *TablesHandler) mutateRow(w http.ResponseWriter, r *http.Request, action domain.TableAction, successMsg string, mutate func(*http.Request, *domain.TableSchema, map[string]string, map[string]string) error) {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	allowed, err := h.checker.CanTable(r.Context(), user.ID, name, action)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("check table permission", err))
		return
	}
	if !allowed || domain.UIRuleFor(name).Blocks(action) {
		h.renderer.Error(w, r, domain.ErrForbidden("not allowed to "+string(action)+" on "+name))
		return
	}

	schema, err := h.reflector.LoadSchema(r.Context(), h.db, name)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}
	pk, data := splitRowForm(r.PostForm)

	if err := mutate(r, schema, pk, data); err != nil {
		if appErr, ok := err.(*domain.AppError); ok && appErr.Status < 500 {
			h.sessions.Flash(r.Context(), r, appErr.Message, domain.FlashDanger)
			http.Redirect(w, r, "/table/"+url.PathEscape(name), http.StatusSeeOther)
			return
		}
		h.renderer.Error(w, r, domain.ErrInternal(string(action)+" row", err))
		return
	}

	h.sessions.Flash(r.Context(), r, successMsg, domain.FlashSuccess)
	http.Redirect(w, r, "/table/"+url.PathEscape(name), http.StatusSeeOther)
}

// splitRowForm separates pk_<col> identity fields from payload fields,
// taking the first value of each key.
func splitRowForm(form url.Values) (pk, data map[string]string) {
	pk = make(map[string]string)
	data = make(map[string]string)
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		if col, ok := strings.CutPrefix(key, "pk_"); ok {
			pk[col] = values[0]
			continue
		}
		data[key] = values[0]
	}
	return pk, data
}
