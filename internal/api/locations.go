package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// locationView is the JSON form of a location. Level-specific fields are
// omitted where they do not apply.
type locationView struct {
	ID                 string             `json:"id"`
	DomainID           string             `json:"domain_id"`
	LocationID         string             `json:"location_id"`
	Level              string             `json:"level"`
	Active             bool               `json:"active"`
	Alias              string             `json:"alias,omitempty"`
	Anchor             location.Point     `json:"anchor"`
	PickFaceEnd        location.Point     `json:"pick_face_end"`
	Vertices           string             `json:"vertices,omitempty"`
	Leds               string             `json:"leds"`
	FirstLed           int                `json:"first_led"`
	LastLed            int                `json:"last_led"`
	LowerLedNearAnchor bool               `json:"lower_led_near_anchor"`
	Indicator          *lighting.LedRange `json:"indicator,omitempty"`
	Controller         string             `json:"controller,omitempty"`
	Channel            string             `json:"channel,omitempty"`
	PosAlongPath       *float64           `json:"pos_along_path,omitempty"`
	Pattern            string             `json:"pattern,omitempty"`
	Orientation        string             `json:"orientation,omitempty"`
	DepthM             float64            `json:"depth_m,omitempty"`
	LedOffset          int                `json:"led_offset,omitempty"`
	CloneSource        string             `json:"clone_source,omitempty"`
	LedCount           int                `json:"led_count,omitempty"`
	SlotCount          int                `json:"slot_count,omitempty"`
	FloorM             float64            `json:"floor_m,omitempty"`
	Children           []string           `json:"children,omitempty"`
}

func newLocationView(l *location.Location) locationView {
	v := locationView{
		ID:                 l.ID,
		DomainID:           l.DomainID,
		LocationID:         l.NominalLocationID(),
		Level:              l.Level.String(),
		Active:             l.Active,
		Alias:              l.PrimaryAliasID(),
		Anchor:             l.Anchor,
		PickFaceEnd:        l.PickFaceEnd,
		Vertices:           l.VerticesUI(),
		Leds:               lighting.LocationRange(l).String(),
		FirstLed:           l.FirstLed(),
		LastLed:            l.LastLed(),
		LowerLedNearAnchor: l.LowerLedNearAnchor,
		Controller:         l.LedControllerUI(),
		Channel:            l.LedChannelUI(),
		PosAlongPath:       l.PosAlongPath,
	}
	if first, last := l.IndicatorLeds(); first > 0 {
		v.Indicator = &lighting.LedRange{First: first, Last: last}
	}

	switch l.Level {
	case location.LevelAisle:
		v.Pattern = string(l.Pattern)
		v.Orientation = l.Orientation.String()
		v.DepthM = l.DepthM
	case location.LevelBay:
		v.LedOffset = l.LedOffset
		v.CloneSource = l.CloneSource
	case location.LevelTier:
		v.LedCount = l.LedCount
		v.SlotCount = l.SlotCount
		v.FloorM = l.FloorM
	}

	for _, c := range l.SortedChildren() {
		v.Children = append(v.Children, c.DomainID)
	}
	return v
}

// ledChange collects the LED maps affected by a mutation. Maps are built
// while the store lock is held and published after it is released.
type ledChange struct {
	aisles      []lighting.AisleMap
	controllers []lighting.ControllerMap
}

// addAisleOf records the map of the aisle containing loc.
func (c *ledChange) addAisleOf(f *location.Facility, loc *location.Location) {
	if aisle := loc.Ancestor(location.LevelAisle); aisle != nil {
		c.aisles = append(c.aisles, lighting.BuildAisleMap(f.DomainID, aisle))
	}
}

// addControllers records the map of every controller that drives a tier.
func (c *ledChange) addControllers(f *location.Facility) {
	for _, ctrl := range f.Controllers() {
		if m := lighting.BuildControllerMap(f, ctrl); len(m.Tiers) > 0 {
			c.controllers = append(c.controllers, m)
		}
	}
}

// publishLeds sends collected LED maps. Failures are logged only; the
// mutation has already been saved.
func (s *Server) publishLeds(c ledChange) {
	if s.publisher == nil {
		return
	}
	for _, m := range c.aisles {
		if err := s.publisher.PublishAisleMap(m); err != nil {
			s.logger.Warn("aisle LED map not published", "aisle", m.Aisle, "error", err)
		}
	}
	for _, m := range c.controllers {
		if err := s.publisher.PublishControllerMap(m); err != nil {
			s.logger.Warn("controller map not published", "controller", m.Controller, "error", err)
		}
	}
}

// updateFacility runs fn on an existing facility. Unlike Store.Update it
// never creates one; only imports do that.
func (s *Server) updateFacility(ctx context.Context, facilityID string, fn func(*location.Facility) error) error {
	if err := s.store.View(ctx, facilityID, func(*location.Facility) error { return nil }); err != nil {
		return err
	}
	return s.store.Update(ctx, facilityID, fn)
}

// notifyLocation broadcasts a location.updated event.
func (s *Server) notifyLocation(facilityID, locationID, change string) {
	s.hub.Broadcast(EventLocationUpdated, LocationEvent{
		Facility: facilityID,
		Location: locationID,
		Change:   change,
	})
}

// findLocation resolves an alias or dotted location ID.
func findLocation(f *location.Facility, id string) (*location.Location, error) {
	loc := f.FindLocation(id)
	if loc == nil || loc.Level == location.LevelFacility {
		return nil, fmt.Errorf("%w: %s", location.ErrNotFound, id)
	}
	return loc, nil
}

// decodeJSON decodes a request body into v. Oversized bodies are reported
// as 413; anything else unreadable as 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// handleListFacilities returns the domain IDs of every known facility.
func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.Facilities(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"facilities": ids, "count": len(ids)})
}

// handleListAisles returns every aisle of a facility.
func (s *Server) handleListAisles(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var aisles []locationView
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		aisles = make([]locationView, 0, len(f.Aisles()))
		for _, a := range f.Aisles() {
			aisles = append(aisles, newLocationView(a))
		}
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"aisles": aisles, "count": len(aisles)})
}

// handleAisleLeds returns the LED map of one aisle as it is published.
func (s *Server) handleAisleLeds(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	aisleID := chi.URLParam(r, "aisle")

	var m lighting.AisleMap
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		aisle := f.Aisle(aisleID)
		if aisle == nil {
			return fmt.Errorf("%w: aisle %s", location.ErrNotFound, aisleID)
		}
		m = lighting.BuildAisleMap(f.DomainID, aisle)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleGetLocation returns a location by alias or dotted ID.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var v locationView
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		loc, err := findLocation(f, id)
		if err != nil {
			return err
		}
		v = newLocationView(loc)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// locationLedsResponse is the body of GET .../locations/{id}/leds.
type locationLedsResponse struct {
	Location   string            `json:"location"`
	Controller string            `json:"controller,omitempty"`
	Channel    int               `json:"channel,omitempty"`
	Range      lighting.LedRange `json:"range"`
	Leds       lighting.LedRange `json:"leds"`
}

// handleLocationLeds returns the LEDs to light for a location. With
// ?position=<metres from anchor> the range is narrowed around that point.
func (s *Server) handleLocationLeds(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	position := 0.0
	if raw := r.URL.Query().Get("position"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 {
			writeBadRequest(w, "position must be a non-negative number of metres")
			return
		}
		position = p
	}

	var resp locationLedsResponse
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		loc, err := findLocation(f, id)
		if err != nil {
			return err
		}
		resp = locationLedsResponse{
			Location: loc.NominalLocationID(),
			Channel:  loc.EffectiveChannel(),
			Range:    lighting.LocationRange(loc),
		}
		if c := loc.EffectiveController(); c != nil {
			resp.Controller = c.DomainID
		}
		resp.Leds = lighting.LedsForPosition(loc, position)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetEndcap returns the explicit slot layout parameters of a tier.
func (s *Server) handleGetEndcap(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var params lighting.SlotTierParams
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		loc, err := findLocation(f, id)
		if err != nil {
			return err
		}
		params, err = lighting.SlotTierLedParameters(loc)
		return err
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

// handleSetEndcap gives each slot of a tier an explicit start LED.
func (s *Server) handleSetEndcap(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var req lighting.SlotTierParams
	if !decodeJSON(w, r, &req) {
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
		if err := lighting.SetSlotTierLeds(loc, req.StartLed, req.TotalLedCount, req.LowerLedNearAnchor, req.LedsPerSlot, req.SlotStarts); err != nil {
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
	s.notifyLocation(facilityID, v.LocationID, "endcap")
	writeJSON(w, http.StatusOK, v)
}

// indicatorRequest is the body of PUT .../locations/{id}/indicator.
// Zero for both clears the indicator.
type indicatorRequest struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// handleSetIndicator sets the indicator LEDs of an aisle, bay or tier.
func (s *Server) handleSetIndicator(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var req indicatorRequest
	if !decodeJSON(w, r, &req) {
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
		if err := loc.SetIndicatorLeds(req.First, req.Last); err != nil {
			return err
		}
		change.addAisleOf(f, loc)
		v = newLocationView(loc)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.publishLeds(change)
	s.notifyLocation(facilityID, v.LocationID, "indicator")
	writeJSON(w, http.StatusOK, v)
}

// offsetRequest is the body of POST .../locations/{id}/offset.
type offsetRequest struct {
	Offset int `json:"offset"`
}

// handleOffsetTier shifts a tier's LEDs and its slots' LEDs.
func (s *Server) handleOffsetTier(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var req offsetRequest
	if !decodeJSON(w, r, &req) {
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
		if err := lighting.OffsetTierLeds(loc, req.Offset); err != nil {
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
	s.notifyLocation(facilityID, v.LocationID, "offset")
	writeJSON(w, http.StatusOK, v)
}

// segmentRequest is the body of PUT .../locations/{id}/path-segment.
type segmentRequest struct {
	Path    string `json:"path"`
	Segment int    `json:"segment"`
}

// handleAssociateSegment puts a location on a path segment and recomputes
// the path positions below it.
func (s *Server) handleAssociateSegment(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	id := chi.URLParam(r, "id")

	var req segmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeBadRequest(w, "path is required")
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
		p := f.Path(req.Path)
		if p == nil {
			return fmt.Errorf("%w: %s", location.ErrPathNotFound, req.Path)
		}
		seg := p.Segment(req.Segment)
		if seg == nil {
			return fmt.Errorf("%w: %s segment %d", location.ErrPathNotFound, req.Path, req.Segment)
		}
		f.AssociatePathSegment(loc, seg)
		// Which end bay 1 starts from depends on the segment direction.
		change.addAisleOf(f, loc)
		v = newLocationView(loc)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.publishLeds(change)
	s.notifyLocation(facilityID, v.LocationID, "path_segment")
	writeJSON(w, http.StatusOK, v)
}

// aliasRequest is the body of POST .../aliases.
type aliasRequest struct {
	Alias    string `json:"alias"`
	Location string `json:"location"`
}

// handleCreateAlias maps an alias to a location. An existing alias of the
// same name is moved.
func (s *Server) handleCreateAlias(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var req aliasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := location.ValidateAlias(req.Alias); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var v locationView
	err := s.updateFacility(r.Context(), facilityID, func(f *location.Facility) error {
		loc := f.FindSubLocation(req.Location)
		if loc == nil {
			return fmt.Errorf("%w: %s", location.ErrNotFound, req.Location)
		}
		if _, err := f.AddAlias(req.Alias, loc); err != nil {
			return err
		}
		v = newLocationView(loc)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.notifyLocation(facilityID, v.LocationID, "alias")
	writeJSON(w, http.StatusCreated, v)
}
