package location

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Location is one node of the storage hierarchy. Facility, aisle, bay, tier
// and slot are all Locations distinguished by Level; fields that only make
// sense at one level are zero elsewhere.
type Location struct {
	ID       string
	DomainID string
	Level    Level
	Active   bool

	// Anchor is relative to the parent's anchor. PickFaceEnd is relative to Anchor.
	Anchor      Point
	PickFaceEnd Point
	Vertices    []*Vertex

	firstLed, lastLed  int
	ledsSet            bool
	LowerLedNearAnchor bool

	// ControllerID is the Controller.ID assigned here, empty to inherit.
	// Channel is zero to inherit.
	ControllerID string
	Channel      int

	// PosAlongPath is nil until a path segment is associated.
	PosAlongPath *float64

	indicatorFirst, indicatorLast int

	// Aisle attributes.
	Pattern     Pattern
	Orientation Orientation
	DepthM      float64

	// Bay attributes. LedOffset is never copied by a clone.
	LedOffset   int
	CloneSource string

	// Tier attributes.
	LedCount  int
	SlotCount int
	FloorM    float64

	parent      *Location
	children    []*Location
	pathSegment *PathSegment
	aliases     []*Alias
	facility    *Facility
}

// NewLocation returns an active, unattached location with a fresh ID.
func NewLocation(level Level, domainID string) *Location {
	return &Location{
		ID:       uuid.NewString(),
		DomainID: domainID,
		Level:    level,
		Active:   true,
	}
}

// Parent returns the owning location, nil for a facility.
func (l *Location) Parent() *Location {
	return l.parent
}

// Children returns the owned locations in insertion order. The slice must not
// be modified.
func (l *Location) Children() []*Location {
	return l.children
}

// Child finds a direct child by domain ID, case-insensitively.
func (l *Location) Child(domainID string) *Location {
	for _, c := range l.children {
		if strings.EqualFold(c.DomainID, domainID) {
			return c
		}
	}
	return nil
}

// AddChild attaches c below l. The child must be exactly one level down and
// its domain ID must be unique among its siblings.
func (l *Location) AddChild(c *Location) error {
	if c.Level != l.Level.Child() {
		return fmt.Errorf("%w: %s %s under %s %s", ErrLevelMismatch, c.Level, c.DomainID, l.Level, l.DomainID)
	}
	if l.Child(c.DomainID) != nil {
		return fmt.Errorf("%w: %s under %s", ErrDuplicateDomainID, c.DomainID, l.DomainID)
	}
	c.parent = l
	l.children = append(l.children, c)
	return nil
}

// EnsureChild returns the named child, creating it when absent. created
// reports whether a new location was made.
func (l *Location) EnsureChild(domainID string) (child *Location, created bool, err error) {
	if c := l.Child(domainID); c != nil {
		return c, false, nil
	}
	c := NewLocation(l.Level.Child(), domainID)
	if err := l.AddChild(c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// SortedChildren returns the children ordered by the number in their domain
// ID (S2 before S10). Names without a number sort last, by name.
func (l *Location) SortedChildren() []*Location {
	out := slices.Clone(l.children)
	slices.SortStableFunc(out, func(a, b *Location) int {
		na, okA := NameNumber(a.DomainID)
		nb, okB := NameNumber(b.DomainID)
		switch {
		case okA && okB:
			return na - nb
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(a.DomainID, b.DomainID)
	})
	return out
}

// Ancestor returns l or the nearest location above it at the given level.
func (l *Location) Ancestor(level Level) *Location {
	for loc := l; loc != nil; loc = loc.parent {
		if loc.Level == level {
			return loc
		}
	}
	return nil
}

// Facility returns the facility that owns l.
func (l *Location) Facility() *Facility {
	if root := l.Ancestor(LevelFacility); root != nil {
		return root.facility
	}
	return nil
}

// Descendants returns every location below l, depth first.
func (l *Location) Descendants() []*Location {
	var out []*Location
	l.Walk(func(d *Location) {
		if d != l {
			out = append(out, d)
		}
	})
	return out
}

// Walk calls fn for l and then every descendant, depth first.
func (l *Location) Walk(fn func(*Location)) {
	fn(l)
	for _, c := range l.children {
		c.Walk(fn)
	}
}

// FirstLed returns the first pick-face LED, 0 when unset.
func (l *Location) FirstLed() int {
	return l.firstLed
}

// LastLed returns the last pick-face LED, 0 when unset.
func (l *Location) LastLed() int {
	return l.lastLed
}

// LedsSet reports whether a pick-face LED range was ever assigned. Tiers with
// no LEDs are assigned 0/0 and still report true.
func (l *Location) LedsSet() bool {
	return l.ledsSet
}

// SetLeds assigns the pick-face LED range.
func (l *Location) SetLeds(first, last int) {
	l.firstLed, l.lastLed, l.ledsSet = first, last, true
}

// ClearLeds forgets the pick-face LED range.
func (l *Location) ClearLeds() {
	l.firstLed, l.lastLed, l.ledsSet = 0, 0, false
}

// IndicatorLeds returns the indicator range. 0/0 means unset.
func (l *Location) IndicatorLeds() (first, last int) {
	return l.indicatorFirst, l.indicatorLast
}

// SetIndicatorLeds sets the indicator range on an aisle, bay or tier. Passing
// 0/0 resets it.
func (l *Location) SetIndicatorLeds(first, last int) error {
	if l.Level < LevelAisle || l.Level > LevelTier {
		return fmt.Errorf("%w: %s", ErrIndicatorLevel, l.Level)
	}
	if first < 0 || last < 0 || (first == 0) != (last == 0) || first > last {
		return fmt.Errorf("%w: %d>%d", ErrInvalidLedRange, first, last)
	}
	l.indicatorFirst, l.indicatorLast = first, last
	return nil
}

// PathSegment returns the segment associated directly with l, or nil.
func (l *Location) PathSegment() *PathSegment {
	return l.pathSegment
}

// AssociatedPathSegment returns l's segment or the nearest ancestor's.
func (l *Location) AssociatedPathSegment() *PathSegment {
	for loc := l; loc != nil && loc.Level != LevelFacility; loc = loc.parent {
		if loc.pathSegment != nil {
			return loc.pathSegment
		}
	}
	return nil
}

// String returns the nominal ID, or the domain ID for a facility.
func (l *Location) String() string {
	if l.Level == LevelFacility {
		return l.DomainID
	}
	return l.NominalLocationID()
}
