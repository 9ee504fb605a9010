package location

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Path is a directed pick route through the facility made of straight
// segments. Distances along it are cumulative from the first segment.
type Path struct {
	ID          string
	DomainID    string
	Description string

	segments []*PathSegment
}

// PathSegment is one straight leg of a Path between two absolute points.
type PathSegment struct {
	ID                string
	Order             int
	Start, End        Point
	StartPosAlongPath float64

	path      *Path
	locations []*Location
}

// CreatePath adds an empty path to the facility.
func (f *Facility) CreatePath(domainID, description string) (*Path, error) {
	if f.Path(domainID) != nil {
		return nil, fmt.Errorf("%w: path %s", ErrDuplicateDomainID, domainID)
	}
	p := &Path{ID: uuid.NewString(), DomainID: domainID, Description: description}
	f.paths = append(f.paths, p)
	return p, nil
}

// Path finds a path by ID or domain ID.
func (f *Facility) Path(idOrDomainID string) *Path {
	for _, p := range f.paths {
		if p.ID == idOrDomainID || strings.EqualFold(p.DomainID, idOrDomainID) {
			return p
		}
	}
	return nil
}

// Paths returns every path in the facility.
func (f *Facility) Paths() []*Path {
	return f.paths
}

// Segments returns the path's segments in order.
func (p *Path) Segments() []*PathSegment {
	return p.segments
}

// Segment returns the segment at the given order, or nil.
func (p *Path) Segment(order int) *PathSegment {
	if order < 0 || order >= len(p.segments) {
		return nil
	}
	return p.segments[order]
}

// AddSegment appends a segment. Its StartPosAlongPath is the total length
// of the segments before it.
func (p *Path) AddSegment(start, end Point) *PathSegment {
	startPos := 0.0
	if n := len(p.segments); n > 0 {
		last := p.segments[n-1]
		startPos = last.StartPosAlongPath + last.Length()
	}
	s := &PathSegment{
		ID:                uuid.NewString(),
		Order:             len(p.segments),
		Start:             start.WithType(PositionTypeAbsolute),
		End:               end.WithType(PositionTypeAbsolute),
		StartPosAlongPath: startPos,
		path:              p,
	}
	p.segments = append(p.segments, s)
	return s
}

// Length returns the planar length of the path.
func (p *Path) Length() float64 {
	total := 0.0
	for _, s := range p.segments {
		total += s.Length()
	}
	return total
}

// Path returns the owning path.
func (s *PathSegment) Path() *Path {
	return s.path
}

// Length returns the planar length of the segment.
func (s *PathSegment) Length() float64 {
	return s.Start.DistanceXY(s.End)
}

// Locations returns the locations associated directly with the segment.
func (s *PathSegment) Locations() []*Location {
	return s.locations
}

// ComputeNormalizedPosition projects p onto the segment's line and returns
// its distance along the whole path. Points beyond either end report that
// end's distance.
func (s *PathSegment) ComputeNormalizedPosition(p Point) float64 {
	length := s.Length()
	if length == 0 {
		return s.StartPosAlongPath
	}
	dx, dy := s.End.X-s.Start.X, s.End.Y-s.Start.Y
	t := ((p.X-s.Start.X)*dx + (p.Y-s.Start.Y)*dy) / length
	return s.StartPosAlongPath + math.Max(0, math.Min(t, length))
}

func (s *PathSegment) removeLocation(l *Location) {
	for i, existing := range s.locations {
		if existing == l {
			s.locations = append(s.locations[:i], s.locations[i+1:]...)
			return
		}
	}
}

// ComputePosAlongPath sets l.PosAlongPath from seg: the smaller of the
// positions of its absolute anchor and absolute pick-face end.
func (l *Location) ComputePosAlongPath(seg *PathSegment) {
	if seg == nil {
		return
	}
	pos := math.Min(
		seg.ComputeNormalizedPosition(l.AbsoluteAnchor()),
		seg.ComputeNormalizedPosition(l.AbsolutePickFaceEnd()),
	)
	l.PosAlongPath = &pos
}

// computePosAlongPathTree recurses with seg until a descendant carries its
// own segment.
func (l *Location) computePosAlongPathTree(seg *PathSegment) {
	l.ComputePosAlongPath(seg)
	for _, c := range l.children {
		s := seg
		if c.pathSegment != nil {
			s = c.pathSegment
		}
		c.computePosAlongPathTree(s)
	}
}

// AssociatePathSegment moves loc onto seg and recomputes the path position
// of loc and everything below it.
func (f *Facility) AssociatePathSegment(loc *Location, seg *PathSegment) {
	if loc.pathSegment != nil && loc.pathSegment != seg {
		loc.pathSegment.removeLocation(loc)
	}
	if loc.pathSegment != seg {
		seg.locations = append(seg.locations, loc)
	}
	loc.pathSegment = seg
	loc.computePosAlongPathTree(seg)
}

// RecomputePathDistances refreshes the path positions of every location
// associated with any of the path's segments.
func (f *Facility) RecomputePathDistances(p *Path) {
	for _, seg := range p.segments {
		for _, loc := range seg.locations {
			loc.computePosAlongPathTree(seg)
		}
	}
}
