package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// controllerView is a controller with the number of tiers it drives.
type controllerView struct {
	*location.Controller
	Tiers int `json:"tiers"`
}

// handleListControllers returns every LED controller of a facility.
func (s *Server) handleListControllers(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var controllers []controllerView
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		tiers := make(map[string]int)
		for _, aisle := range f.Aisles() {
			for _, loc := range aisle.Descendants() {
				if loc.Level == location.LevelTier {
					tiers[loc.EffectiveControllerID()]++
				}
			}
		}
		controllers = make([]controllerView, 0, len(f.Controllers()))
		for _, c := range f.Controllers() {
			cp := *c
			controllers = append(controllers, controllerView{Controller: &cp, Tiers: tiers[c.ID]})
		}
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"controllers": controllers, "count": len(controllers)})
}

// createControllerRequest is the body of POST .../controllers.
type createControllerRequest struct {
	DomainID   string `json:"domain_id"`
	DeviceGUID string `json:"device_guid"`
}

// handleCreateController registers an LED controller.
func (s *Server) handleCreateController(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var req createControllerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := location.ValidateDomainID(req.DomainID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.DeviceGUID == "" {
		writeBadRequest(w, "device_guid is required")
		return
	}

	var created location.Controller
	err := s.updateFacility(r.Context(), facilityID, func(f *location.Facility) error {
		c, err := f.AddController(req.DomainID, req.DeviceGUID)
		if err != nil {
			return err
		}
		created = *c
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("controller created", "facility", facilityID, "controller", created.DomainID)
	writeJSON(w, http.StatusCreated, created)
}

// setControllerRequest is the body of PUT .../locations/{id}/controller.
// Scope "aisle" on a tier assigns every same-named tier in the aisle.
type setControllerRequest struct {
	Controller string `json:"controller"`
	Channel    int    `json:"channel"`
	Scope      string `json:"scope,omitempty"`
}

// handleSetController assigns a controller and channel to an aisle or tier
// and republishes the affected maps.
func (s *Server) handleSetController(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var req setControllerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Controller == "" {
		writeBadRequest(w, "controller is required")
		return
	}

	var (
		change ledChange
		v      locationView
	)
	err := s.updateFacility(r.Context(), facilityID, func(f *location.Facility) error {
		loc, err := findLocation(f, id)
		if err != nil {
			return err
		}
		if err := f.SetControllerChannel(loc, req.Controller, req.Channel, req.Scope); err != nil {
			return err
		}
		change.addAisleOf(f, loc)
		change.addControllers(f)
		v = newLocationView(loc)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.publishLeds(change)
	s.notifyLocation(facilityID, v.LocationID, "controller")
	writeJSON(w, http.StatusOK, v)
}
