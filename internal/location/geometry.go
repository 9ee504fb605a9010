package location

import (
	"math"
	"strings"
)

// Orientation is the axis along which an aisle's bays are laid out.
type Orientation int

const (
	// OrientationX lays bays out along the facility X axis.
	OrientationX Orientation = iota
	// OrientationY lays bays out along the facility Y axis.
	OrientationY
)

// String returns "X" or "Y".
func (o Orientation) String() string {
	if o == OrientationY {
		return "Y"
	}
	return "X"
}

// ParseOrientation maps "Y" (any case, surrounding blanks ignored) to
// OrientationY. Everything else, including the empty string, is OrientationX.
func ParseOrientation(s string) Orientation {
	if strings.EqualFold(strings.TrimSpace(s), "Y") {
		return OrientationY
	}
	return OrientationX
}

// Geometry is the computed placement of one location.
type Geometry struct {
	// Anchor is relative to the parent location.
	Anchor Point
	// PickFaceEnd is relative to Anchor.
	PickFaceEnd Point
	// Vertices are relative to Anchor, in draw order V01..V04.
	Vertices [4]Point
}

// ComputeGeometry places a rectangle of the given length along o and the
// given depth across it. Callers must pass a positive length.
//
// Vertex index 2 is always the corner furthest from the anchor on both axes:
//
//	X: (0,0) (length,0) (length,depth) (0,depth)
//	Y: (0,0) (depth,0) (depth,length) (0,length)
func ComputeGeometry(anchor Point, length, depth float64, o Orientation) Geometry {
	dx, dy := length, depth
	if o == OrientationY {
		dx, dy = depth, length
	}
	return Geometry{
		Anchor:      anchor,
		PickFaceEnd: pickFaceVector(length, o),
		Vertices:    rectangle(dx, dy),
	}
}

// pickFaceVector returns the parent-relative vector of length along o.
func pickFaceVector(length float64, o Orientation) Point {
	if o == OrientationY {
		return NewPoint(PositionTypeParent, 0, length, 0)
	}
	return NewPoint(PositionTypeParent, length, 0, 0)
}

func rectangle(dx, dy float64) [4]Point {
	return [4]Point{
		NewPoint(PositionTypeParent, 0, 0, 0),
		NewPoint(PositionTypeParent, dx, 0, 0),
		NewPoint(PositionTypeParent, dx, dy, 0),
		NewPoint(PositionTypeParent, 0, dy, 0),
	}
}

// alongAxis projects a vector onto the orientation axis.
func alongAxis(p Point, o Orientation) float64 {
	if o == OrientationY {
		return p.Y
	}
	return p.X
}

// ApplyGeometry stores g on the location and refreshes its vertices.
func (l *Location) ApplyGeometry(g Geometry) {
	l.Anchor = g.Anchor
	l.PickFaceEnd = g.PickFaceEnd
	l.SetVertices(g.Vertices)
}

// PickFaceLength returns the length of the pick face in metres. The pick face
// lies on a single axis, so this holds even after the aisle is re-oriented.
func (l *Location) PickFaceLength() float64 {
	return math.Abs(l.PickFaceEnd.X) + math.Abs(l.PickFaceEnd.Y)
}

// AisleOrientation returns the orientation of the aisle that owns l, or of
// l itself when it is an aisle. Locations outside any aisle report X.
func (l *Location) AisleOrientation() Orientation {
	if a := l.Ancestor(LevelAisle); a != nil {
		return a.Orientation
	}
	return OrientationX
}

// AbsoluteAnchor composes anchors up the ownership chain. Nothing is cached,
// so the result always reflects the current hierarchy.
func (l *Location) AbsoluteAnchor() Point {
	p := l.Anchor.WithType(PositionTypeAbsolute)
	for parent := l.parent; parent != nil; parent = parent.parent {
		p = p.AddPoint(parent.Anchor)
	}
	return p
}

// AbsolutePickFaceEnd returns the facility-relative end of the pick face.
func (l *Location) AbsolutePickFaceEnd() Point {
	return l.AbsoluteAnchor().AddPoint(l.PickFaceEnd)
}

// MetersFromAnchor returns how far the absolute point p lies from the
// location's anchor along its aisle's axis, clamped to the pick face.
func (l *Location) MetersFromAnchor(p Point) float64 {
	o := l.AisleOrientation()
	d := alongAxis(p, o) - alongAxis(l.AbsoluteAnchor(), o)
	length := l.PickFaceLength()
	switch {
	case d < 0:
		return 0
	case d > length:
		return length
	}
	return d
}
