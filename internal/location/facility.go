package location

import (
	"strings"

	"github.com/google/uuid"
)

// Facility is the root of a location hierarchy. It also owns the objects
// that are addressed facility-wide: LED controllers, pick paths and aliases.
type Facility struct {
	*Location

	// Network is the radio network new controllers are registered on.
	Network string

	controllers []*Controller
	paths       []*Path
	aliases     map[string]*Alias
}

// NewFacility returns an empty facility with its anchor at the origin.
func NewFacility(domainID, network string) *Facility {
	root := NewLocation(LevelFacility, domainID)
	root.Anchor = NewPoint(PositionTypeAbsolute, 0, 0, 0)
	f := &Facility{
		Location: root,
		Network:  network,
		aliases:  make(map[string]*Alias),
	}
	root.facility = f
	return f
}

// Aisles returns the facility's aisles ordered by aisle number.
func (f *Facility) Aisles() []*Location {
	return f.SortedChildren()
}

// Aisle returns the named aisle or nil.
func (f *Facility) Aisle(domainID string) *Location {
	return f.Child(domainID)
}

// IsLeftSideTowardAnchor reports whether bay 1 slot 1 is on the left as a
// picker standing on the aisle's path segment faces the pick face. Without a
// segment the answer is true.
func IsLeftSideTowardAnchor(aisle *Location) bool {
	seg := aisle.PathSegment()
	if seg == nil {
		return true
	}
	anchor := aisle.AbsoluteAnchor()
	if aisle.Orientation == OrientationY {
		flowsDown := seg.End.Y > seg.Start.Y
		return (anchor.X < seg.Start.X) == flowsDown
	}
	flowsRight := seg.End.X > seg.Start.X
	return (anchor.Y < seg.Start.Y) == flowsRight
}

// PathIncreasesFromAnchor reports whether the aisle's path segment runs in
// the same direction as its bays. Without a segment the answer is true.
func PathIncreasesFromAnchor(aisle *Location) bool {
	seg := aisle.PathSegment()
	if seg == nil {
		return true
	}
	if aisle.Orientation == OrientationY {
		return seg.End.Y > seg.Start.Y
	}
	return seg.End.X > seg.Start.X
}

// Alias is an alternative name for a location, unique within a facility.
type Alias struct {
	ID     string `json:"id"`
	Name   string `json:"alias"`
	Active bool   `json:"active"`

	location *Location
}

// Location returns the aliased location.
func (a *Alias) Location() *Location {
	return a.location
}

// AddAlias maps name to loc. An existing alias with the same name is moved
// to loc and reactivated.
func (f *Facility) AddAlias(name string, loc *Location) (*Alias, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyAlias
	}
	key := normalizeAlias(name)
	a, ok := f.aliases[key]
	if ok {
		a.location.removeAlias(a)
	} else {
		a = &Alias{ID: uuid.NewString(), Name: name}
		f.aliases[key] = a
	}
	a.Active = true
	a.location = loc
	loc.aliases = append(loc.aliases, a)
	return a, nil
}

// LookupAlias returns the alias with the given name, case-insensitively.
func (f *Facility) LookupAlias(name string) *Alias {
	return f.aliases[normalizeAlias(name)]
}

func normalizeAlias(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Aliases returns every alias in the facility.
func (f *Facility) Aliases() []*Alias {
	out := make([]*Alias, 0, len(f.aliases))
	for _, a := range f.aliases {
		out = append(out, a)
	}
	return out
}

func (l *Location) removeAlias(a *Alias) {
	for i, existing := range l.aliases {
		if existing == a {
			l.aliases = append(l.aliases[:i], l.aliases[i+1:]...)
			return
		}
	}
}

// PrimaryAliasID returns the first alias of l, wrapped in angle brackets
// when l is inactive, or "" when l has none.
func (l *Location) PrimaryAliasID() string {
	if len(l.aliases) == 0 {
		return ""
	}
	if !l.Active {
		return "<" + l.aliases[0].Name + ">"
	}
	return l.aliases[0].Name
}
