package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// VehiclesHandler serves vehicle editing under a player's vehicles tab.
type VehiclesHandler struct {
	db       repository.DBTX
	vehicles repository.VehicleRepository
	sessions *auth.SessionManager
	renderer *Renderer
}

// NewVehiclesHandler creates a new VehiclesHandler.
func NewVehiclesHandler(db repository.DBTX, vehicles repository.VehicleRepository, sessions *auth.SessionManager, renderer *Renderer) *VehiclesHandler {
	return &VehiclesHandler{db: db, vehicles: vehicles, sessions: sessions, renderer: renderer}
}

// findVehicle loads the path vehicle, writing the response itself on failure.
func (h *VehiclesHandler) findVehicle(w http.ResponseWriter, r *http.Request) *domain.Vehicle {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("invalid vehicle id"))
		return nil
	}

	vehicle, err := h.vehicles.Find(r.Context(), h.db, id)
	if err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("find vehicle", err))
		return nil
	}
	if vehicle == nil {
		h.renderer.Error(w, r, domain.ErrNotFound("vehicle", chi.URLParam(r, "id")))
		return nil
	}
	// The owner path segment must match the row; a URL cannot claim another
	// player's vehicle.
	if vehicle.PlayerID != chi.URLParam(r, "uid") {
		h.renderer.Error(w, r, domain.ErrNotFound("vehicle", chi.URLParam(r, "id")))
		return nil
	}
	return vehicle
}

// vehicleEditPage is the data for the vehicle edit form.
type vehicleEditPage struct {
	Vehicle *domain.Vehicle
}

// Edit handles GET /admin/players/{uid}/vehicles/{id}/edit.
func (h *VehiclesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	vehicle := h.findVehicle(w, r)
	if vehicle == nil {
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "vehicle_edit", vehicleEditPage{Vehicle: vehicle})
}

// Update handles POST /admin/players/{uid}/vehicles/{id}/update.
func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	vehicle := h.findVehicle(w, r)
	if vehicle == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	color := vehicle.Color
	if n, err := strconv.Atoi(r.PostFormValue("color")); err == nil {
		color = n
	}
	upd := domain.VehicleUpdate{
		Alive:  domain.ParseCheckbox(r.PostFormValue("alive")),
		Active: domain.ParseCheckbox(r.PostFormValue("active")),
		Sold:   domain.ParseCheckbox(r.PostFormValue("sold")),
		Locked: domain.ParseCheckbox(r.PostFormValue("locked")),
		Color:  color,
		Trunk:  r.PostFormValue("trunk"),
	}

	if err := h.vehicles.Update(r.Context(), h.db, vehicle.ID, upd); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.sessions.Flash(r.Context(), r, "vehicle updated", domain.FlashSuccess)
	http.Redirect(w, r, playerTabURL(vehicle.PlayerID, "vehicles"), http.StatusSeeOther)
}

// QuickAction handles POST /admin/players/{uid}/vehicles/{id}/qa/{action}.
// Unknown action names are rejected, never coerced.
func (h *VehiclesHandler) QuickAction(w http.ResponseWriter, r *http.Request) {
	vehicle := h.findVehicle(w, r)
	if vehicle == nil {
		return
	}

	actionName := chi.URLParam(r, "action")
	action, effect, ok := domain.ParseQuickAction(actionName)
	if !ok {
		h.renderer.Error(w, r, domain.ErrValidation("unknown quick action "+actionName))
		return
	}

	if err := h.vehicles.ApplyQuickAction(r.Context(), h.db, vehicle.ID, effect); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	h.sessions.Flash(r.Context(), r, "applied "+string(action)+" to vehicle", domain.FlashSuccess)
	http.Redirect(w, r, playerTabURL(vehicle.PlayerID, "vehicles"), http.StatusSeeOther)
}
