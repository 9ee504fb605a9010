package location

import (
	"strconv"
	"strings"
)

// Level is the position of a location in the storage hierarchy.
type Level int

// Hierarchy levels, outermost first.
const (
	LevelFacility Level = iota
	LevelAisle
	LevelBay
	LevelTier
	LevelSlot
)

var levelNames = [...]string{"Facility", "Aisle", "Bay", "Tier", "Slot"}

// String returns the level name, for example "Bay".
func (l Level) String() string {
	if l < LevelFacility || l > LevelSlot {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Prefix returns the letter used in domain IDs at this level ("A", "B", "T", "S").
func (l Level) Prefix() string {
	switch l {
	case LevelAisle:
		return "A"
	case LevelBay:
		return "B"
	case LevelTier:
		return "T"
	case LevelSlot:
		return "S"
	}
	return ""
}

// Child returns the level directly below l.
func (l Level) Child() Level {
	return l + 1
}

// ParseLevel matches a level name case-insensitively.
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Level(i), true
		}
	}
	return 0, false
}

// Pattern is an aisle's LED traversal policy.
type Pattern string

// Lighting patterns. "B1S1Side" is the end of the aisle where bay 1 slot 1 sits.
const (
	PatternTierB1S1Side      Pattern = "tierB1S1Side"
	PatternTierNotB1S1Side   Pattern = "tierNotB1S1Side"
	PatternZigzagB1S1Side    Pattern = "zigzagB1S1Side"
	PatternZigzagNotB1S1Side Pattern = "zigzagNotB1S1Side"
)

// deprecatedPatterns maps legacy names still found in older aisle files.
var deprecatedPatterns = map[string]Pattern{
	"zigzagleft":  PatternZigzagB1S1Side,
	"zigzagright": PatternZigzagNotB1S1Side,
	"tierleft":    PatternTierB1S1Side,
	"tierright":   PatternTierNotB1S1Side,
}

// ParsePattern matches a pattern name case-insensitively, accepting the
// deprecated left/right names. ok is false for anything else.
func ParsePattern(s string) (p Pattern, ok bool) {
	s = strings.TrimSpace(s)
	for _, known := range []Pattern{
		PatternTierB1S1Side, PatternTierNotB1S1Side,
		PatternZigzagB1S1Side, PatternZigzagNotB1S1Side,
	} {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	p, ok = deprecatedPatterns[strings.ToLower(s)]
	return p, ok
}

// IsZigzag reports whether the pattern runs row by row across bays.
func (p Pattern) IsZigzag() bool {
	return p == PatternZigzagB1S1Side || p == PatternZigzagNotB1S1Side
}

// StartsAtB1S1 reports whether the first LED sits at the bay 1 slot 1 end.
func (p Pattern) StartsAtB1S1() bool {
	return p == PatternTierB1S1Side || p == PatternZigzagB1S1Side
}

// NameNumber returns the ordinal in a domain ID such as "B12" or "s3".
// ok is false when the name does not end in a positive number.
func NameNumber(domainID string) (n int, ok bool) {
	i := len(domainID)
	for i > 0 && domainID[i-1] >= '0' && domainID[i-1] <= '9' {
		i--
	}
	if i == len(domainID) {
		return 0, false
	}
	n, err := strconv.Atoi(domainID[i:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// OrdinalName builds a domain ID such as "T3" for a level.
func OrdinalName(level Level, n int) string {
	return level.Prefix() + strconv.Itoa(n)
}
