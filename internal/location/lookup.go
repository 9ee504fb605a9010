package location

import "strings"

// FindSubLocation resolves a dotted path such as "A9.B1.T1.S3" below l.
// Each segment matches a child's domain ID case-insensitively.
func (l *Location) FindSubLocation(id string) *Location {
	first, rest, dotted := strings.Cut(id, ".")
	child := l.Child(first)
	if child == nil || !dotted {
		return child
	}
	return child.FindSubLocation(rest)
}

// FindLocation resolves name within the facility. An active alias wins over
// a dotted domain path.
func (f *Facility) FindLocation(name string) *Location {
	if a := f.LookupAlias(name); a != nil && a.Active {
		return a.location
	}
	return f.FindSubLocation(name)
}

// LocationIDToParentLevel joins domain IDs from l up to and including the
// ancestor at level. Asking a tier for LevelBay gives "B1.T1". The facility
// itself never appears in the result.
func (l *Location) LocationIDToParentLevel(level Level) string {
	var parts []string
	for loc := l; loc != nil && loc.Level > LevelFacility && loc.Level >= level; loc = loc.parent {
		parts = append(parts, loc.DomainID)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// NominalLocationID returns the full dotted ID from the aisle down, for
// example "A9.B1.T1.S3".
func (l *Location) NominalLocationID() string {
	return l.LocationIDToParentLevel(LevelAisle)
}
