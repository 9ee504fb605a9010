package location

import (
	"fmt"
	"math"
)

// PositionType says what a Point's coordinates are measured from.
type PositionType int

const (
	// PositionTypeParent points are metres from the parent location's anchor.
	PositionTypeParent PositionType = iota
	// PositionTypeAbsolute points are metres from the facility origin.
	PositionTypeAbsolute
)

// String returns the persisted name of the position type.
func (t PositionType) String() string {
	if t == PositionTypeAbsolute {
		return "ABSOLUTE"
	}
	return "PARENT"
}

// ParsePositionType is the inverse of String. Unknown values are PositionTypeParent.
func ParsePositionType(s string) PositionType {
	if s == "ABSOLUTE" {
		return PositionTypeAbsolute
	}
	return PositionTypeParent
}

// Point is an immutable 3D position in metres.
type Point struct {
	Type PositionType `json:"type"`
	X    float64      `json:"x"`
	Y    float64      `json:"y"`
	Z    float64      `json:"z"`
}

// NewPoint returns a point of the given type.
func NewPoint(t PositionType, x, y, z float64) Point {
	return Point{Type: t, X: x, Y: y, Z: z}
}

// ZeroPoint returns the parent-relative origin.
func ZeroPoint() Point {
	return Point{Type: PositionTypeParent}
}

// Add returns p translated by (x, y, z). The position type is kept.
func (p Point) Add(x, y, z float64) Point {
	return Point{Type: p.Type, X: p.X + x, Y: p.Y + y, Z: p.Z + z}
}

// AddPoint returns p translated by o. The position type of p is kept.
func (p Point) AddPoint(o Point) Point {
	return p.Add(o.X, o.Y, o.Z)
}

// WithType returns p re-tagged with t.
func (p Point) WithType(t PositionType) Point {
	p.Type = t
	return p
}

// DistanceXY returns the planar distance between p and o.
func (p Point) DistanceXY(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// String renders the point with centimetre precision.
func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}
