package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every page template. Each is parsed together with the base
// layout into its own template set.
var pageNames = []string{
	"login",
	"tables",
	"table",
	"admin_dashboard",
	"admin_users",
	"admin_roles",
	"admin_permissions",
	"players",
	"player_detail",
	"support_edit",
	"vehicle_edit",
	"error",
}

var templateFuncs = template.FuncMap{
	"sideLabel": func(s domain.Side) string { return s.Label() },
}

// Renderer executes page templates inside the base layout and translates
// domain errors into the console's redirect-and-flash conventions.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(sessions *auth.SessionManager, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Renderer{pages: pages, sessions: sessions, logger: logger}, nil
}

// pageData is the envelope every template executes against. Flash messages
// are drained here, so each message renders exactly once.
type pageData struct {
	User  *domain.AdminUser
	Flash []domain.FlashMessage
	Data  interface{}
}

// Render executes a page template. Output is buffered so a template error
// mid-render never leaks a half page.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	tpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown page template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pd := pageData{
		User:  auth.UserFromContext(r.Context()),
		Flash: rn.sessions.DrainFlash(r.Context(), r),
		Data:  data,
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base.html", pd); err != nil {
		rn.logger.Error("template render failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error maps a domain error onto the console's conventions: unauthorized
// requests go back to the login page, forbidden ones flash and return to the
// referring page, everything else renders the error page.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*domain.AppError)
	if !ok {
		appErr = domain.ErrInternal("unexpected error", err)
	}

	switch appErr.Status {
	case http.StatusUnauthorized:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case http.StatusForbidden:
		rn.sessions.Flash(r.Context(), r, appErr.Message, domain.FlashDanger)
		redirectBack(w, r)
	case http.StatusInternalServerError:
		rn.logger.Error("request failed", "code", appErr.Code, "message", appErr.Message, "cause", appErr.Cause)
		rn.Render(w, r, appErr.Status, "error", "internal server error")
	default:
		rn.Render(w, r, appErr.Status, "error", appErr.Message)
	}
}

// redirectBack returns to the referring page, or the root when there is none.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.Referer()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
