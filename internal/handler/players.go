package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/service"
)

// PlayersHandler serves the player directory and the tabbed detail view.
type PlayersHandler struct {
	players  *service.PlayerService
	sessions *auth.SessionManager
	renderer *Renderer
}

// NewPlayersHandler creates a new PlayersHandler.
func NewPlayersHandler(players *service.PlayerService, sessions *auth.SessionManager, renderer *Renderer) *PlayersHandler {
	return &PlayersHandler{players: players, sessions: sessions, renderer: renderer}
}

// List handles GET /admin/players.
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.players.List(r.Context())
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("list players", err))
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "players", summaries)
}

// playerDetailPage is the data for GET /admin/players/{uid}.
type playerDetailPage struct {
	*service.PlayerDetail
	Tab    string
	Sides  []domain.Side
	Fields []string
}

// validTabs are the detail page tabs; anything else falls back to info.
var validTabs = map[string]bool{"info": true, "support": true, "gear": true, "vehicles": true}

// Detail handles GET /admin/players/{uid}?tab=info|support|gear|vehicles.
func (h *PlayersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	uid := chi.URLParam(r, "uid")

	detail, err := h.players.Detail(r.Context(), user.ID, uid)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	tab := r.URL.Query().Get("tab")
	if !validTabs[tab] {
		tab = "info"
	}

	h.renderer.Render(w, r, http.StatusOK, "player_detail", playerDetailPage{
		PlayerDetail: detail,
		Tab:          tab,
		Sides:        domain.AllSides,
		Fields:       domain.KVFields,
	})
}

// InfoSave handles POST /admin/players/{uid}/info/save/{side}.
func (h *PlayersHandler) InfoSave(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	uid := chi.URLParam(r, "uid")

	side, err := domain.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	form := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		form[key] = r.PostFormValue(key)
	}

	saved, err := h.players.SaveInfo(r.Context(), user.ID, uid, side, form)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	if saved > 0 {
		h.sessions.Flash(r.Context(), r, "saved "+strconv.Itoa(saved)+" attributes for "+side.Label(), domain.FlashSuccess)
	} else {
		h.sessions.Flash(r.Context(), r, "nothing to save", domain.FlashInfo)
	}
	http.Redirect(w, r, playerTabURL(uid, "info"), http.StatusSeeOther)
}

// playerTabURL builds the detail page URL for one tab.
func playerTabURL(uid, tab string) string {
	return "/admin/players/" + url.PathEscape(uid) + "?tab=" + tab
}
