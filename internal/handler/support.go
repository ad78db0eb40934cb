package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// SupportHandler serves support case CRUD under a player's support tab.
type SupportHandler struct {
	db       repository.DBTX
	cases    repository.SupportCaseRepository
	kv       repository.KVStoreRepository
	sessions *auth.SessionManager
	renderer *Renderer
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(db repository.DBTX, cases repository.SupportCaseRepository, kv repository.KVStoreRepository, sessions *auth.SessionManager, renderer *Renderer) *SupportHandler {
	return &SupportHandler{db: db, cases: cases, kv: kv, sessions: sessions, renderer: renderer}
}

// caseInputFromForm reads the case form fields and normalizes them.
func caseInputFromForm(r *http.Request) domain.SupportCaseInput {
	in := domain.SupportCaseInput{
		CaseType:      r.PostFormValue("case_type"),
		Area:          r.PostFormValue("area"),
		SupporterName: r.PostFormValue("supporter_name"),
		Scenario:      r.PostFormValue("scn"),
		Content:       r.PostFormValue("content"),
		Status:        domain.ParseCaseStatus(r.PostFormValue("status")),
	}
	in.Normalize()
	return in
}

// Create handles POST /admin/players/{uid}/support/create. The player's
// display name is snapshotted into the case at creation time.
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}
	in := caseInputFromForm(r)

	name, err := h.kv.DisplayName(r.Context(), h.db, uid)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("load player name", err))
		return
	}

	c := &domain.SupportCase{
		PlayerID:      uid,
		PlayerName:    name,
		CaseType:      in.CaseType,
		Area:          in.Area,
		SupporterName: in.SupporterName,
		Scenario:      in.Scenario,
		Content:       in.Content,
	}
	if err := h.cases.Create(r.Context(), h.db, c); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("create support case", err))
		return
	}

	h.sessions.Flash(r.Context(), r, "support case created", domain.FlashSuccess)
	http.Redirect(w, r, playerTabURL(uid, "support"), http.StatusSeeOther)
}

// supportEditPage is the data for the case edit form.
type supportEditPage struct {
	Case *domain.SupportCase
}

// Edit handles GET /admin/players/{uid}/support/{id}/edit.
func (h *SupportHandler) Edit(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid case id"))
		return
	}

	c, err := h.cases.Find(r.Context(), h.db, id, uid)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("find support case", err))
		return
	}
	if c == nil {
		h.renderer.Error(w, r, domain.ErrNotFound("support case", chi.URLParam(r, "id")))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "support_edit", supportEditPage{Case: c})
}

// Update handles POST /admin/players/{uid}/support/{id}/update.
func (h *SupportHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.caseAction(w, r, "support case updated", func(req *http.Request, id int64, uid string) error {
		if err := req.ParseForm(); err != nil {
			return domain.ErrValidation("malformed form")
		}
		return h.cases.Update(req.Context(), h.db, id, uid, caseInputFromForm(req))
	})
}

// ToggleStatus handles POST /admin/players/{uid}/support/{id}/toggle.
func (h *SupportHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	h.caseAction(w, r, "support case status toggled", func(req *http.Request, id int64, uid string) error {
		return h.cases.ToggleStatus(req.Context(), h.db, id, uid)
	})
}

// Delete handles POST /admin/players/{uid}/support/{id}/delete.
func (h *SupportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.caseAction(w, r, "support case deleted", func(req *http.Request, id int64, uid string) error {
		return h.cases.Delete(req.Context(), h.db, id, uid)
	})
}

// caseAction runs one (id, player)-scoped case mutation and redirects back to
// the support tab.
func (h *SupportHandler) caseAction(w http.ResponseWriter, r *http.Request, successMsg string, act func(*http.Request, int64, string) error) {
	uid := chi.URLParam(r, "uid")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid case id"))
		return
	}

	if err := act(r, id, uid); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.sessions.Flash(r.Context(), r, successMsg, domain.FlashSuccess)
	http.Redirect(w, r, playerTabURL(uid, "support"), http.StatusSeeOther)
}
