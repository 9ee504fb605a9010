package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// segmentView is the JSON form of a path segment.
type segmentView struct {
	ID                string         `json:"id"`
	Order             int            `json:"order"`
	Start             location.Point `json:"start"`
	End               location.Point `json:"end"`
	StartPosAlongPath float64        `json:"start_pos_along_path"`
	Length            float64        `json:"length"`
	Locations         []string       `json:"locations"`
}

// pathView is the JSON form of a path.
type pathView struct {
	ID          string        `json:"id"`
	DomainID    string        `json:"domain_id"`
	Description string        `json:"description,omitempty"`
	Length      float64       `json:"length"`
	Segments    []segmentView `json:"segments"`
}

func newPathView(p *location.Path) pathView {
	v := pathView{
		ID:          p.ID,
		DomainID:    p.DomainID,
		Description: p.Description,
		Length:      p.Length(),
		Segments:    make([]segmentView, 0, len(p.Segments())),
	}
	for _, seg := range p.Segments() {
		sv := segmentView{
			ID:                seg.ID,
			Order:             seg.Order,
			Start:             seg.Start,
			End:               seg.End,
			StartPosAlongPath: seg.StartPosAlongPath,
			Length:            seg.Length(),
			Locations:         make([]string, 0, len(seg.Locations())),
		}
		for _, loc := range seg.Locations() {
			sv.Locations = append(sv.Locations, loc.NominalLocationID())
		}
		v.Segments = append(v.Segments, sv)
	}
	return v
}

// handleListPaths returns every pick path of a facility.
func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var paths []pathView
	err := s.store.View(r.Context(), facilityID, func(f *location.Facility) error {
		paths = make([]pathView, 0, len(f.Paths()))
		for _, p := range f.Paths() {
			paths = append(paths, newPathView(p))
		}
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths, "count": len(paths)})
}

// createPathRequest is the body of POST .../paths.
type createPathRequest struct {
	DomainID    string `json:"domain_id"`
	Description string `json:"description"`
}

// handleCreatePath adds an empty pick path.
func (s *Server) handleCreatePath(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	var req createPathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := location.ValidateDomainID(req.DomainID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var v pathView
	err := s.updateFacility(r.Context(), facilityID, func(f *location.Facility) error {
		p, err := f.CreatePath(req.DomainID, req.Description)
		if err != nil {
			return err
		}
		v = newPathView(p)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// pointRequest is an absolute facility position in metres.
type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p pointRequest) point() location.Point {
	return location.NewPoint(location.PositionTypeAbsolute, p.X, p.Y, p.Z)
}

// addSegmentRequest is the body of POST .../paths/{path}/segments.
type addSegmentRequest struct {
	Start pointRequest `json:"start"`
	End   pointRequest `json:"end"`
}

// handleAddSegment appends a segment to a path and refreshes the path
// positions of locations already on it.
func (s *Server) handleAddSegment(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")
	pathID := chi.URLParam(r, "path")

	var req addSegmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Start == req.End {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "segment start and end must differ")
		return
	}

	var v pathView
	err := s.updateFacility(r.Context(), facilityID, func(f *location.Facility) error {
		p := f.Path(pathID)
		if p == nil {
			return location.ErrPathNotFound
		}
		p.AddSegment(req.Start.point(), req.End.point())
		f.RecomputePathDistances(p)
		v = newPathView(p)
		return nil
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.notifyLocation(facilityID, "", "path")
	writeJSON(w, http.StatusCreated, v)
}
