package lighting

import (
	"math"
	"strconv"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

const (
	// ledsBelowCentre and ledsAboveCentre frame the four LEDs lit around a
	// position on a non-slotted location.
	ledsBelowCentre = 1
	ledsAboveCentre = 2

	// maxSlottedSpan is the widest range still treated as slotted when no
	// position is given.
	maxSlottedSpan = 5

	// Full-pallet slots light their whole tube regardless of the cap.
	fullPalletMinLeds = 26
	fullPalletMaxLeds = 31
)

// LedRange is an inclusive span of LED numbers. The zero value lights nothing.
type LedRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// LocationRange returns the pick-face range of loc, or the zero range when
// it has none.
func LocationRange(loc *location.Location) LedRange {
	if loc == nil || !loc.LedsSet() {
		return LedRange{}
	}
	return LedRange{First: loc.FirstLed(), Last: loc.LastLed()}
}

// IsZero reports whether r lights nothing.
func (r LedRange) IsZero() bool {
	return r.First <= 0
}

// Count returns the number of LEDs in r.
func (r LedRange) Count() int {
	if r.IsZero() || r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// IsWithin reports whether led lies inside r, inclusive.
func (r LedRange) IsWithin(led int) bool {
	return r.First <= led && led <= r.Last
}

// String renders r as "first>last", or "" for the zero range.
func (r LedRange) String() string {
	if r.IsZero() {
		return ""
	}
	return strconv.Itoa(r.First) + ">" + strconv.Itoa(r.Last)
}

// CapLeds keeps at most maxLeds LEDs from the start of r. Ranges of 26 to
// 31 LEDs are full-pallet slots and are returned whole.
func (r LedRange) CapLeds(maxLeds int) LedRange {
	n := r.Count()
	if n == 0 {
		return LedRange{}
	}
	limit := min(n, maxLeds)
	if n >= fullPalletMinLeds && n <= fullPalletMaxLeds {
		limit = n
	}
	return LedRange{First: r.First, Last: max(0, r.First+limit-1)}
}

// ComputeLedsToLight picks the LEDs to light for a position
// metersFromAnchor along a location of the given width whose range is
// [first, last].
//
// Without a position (zero, or at either end) a slot or a narrow range
// lights entirely. Otherwise four LEDs are centred on the position and
// clamped to the range. Invalid input yields the zero range.
func ComputeLedsToLight(first, last int, lowerNearAnchor bool, width, metersFromAnchor float64, isSlot bool) LedRange {
	if first <= 0 || last <= 0 || first > last {
		return LedRange{}
	}
	if metersFromAnchor < 0 || width < 0 || metersFromAnchor > width {
		return LedRange{}
	}

	fraction := 0.5
	unpositioned := width == 0 || metersFromAnchor == 0 || metersFromAnchor == width
	if !unpositioned {
		fraction = metersFromAnchor / width
	}

	span := last - first + 1
	if unpositioned && (isSlot || span <= maxSlottedSpan) {
		return LedRange{First: first, Last: last}
	}
	if !lowerNearAnchor {
		fraction = 1 - fraction
	}

	centre := int(math.Round(fraction*float64(span))) + first - 1
	return LedRange{
		First: max(centre-ledsBelowCentre, first),
		Last:  min(centre+ledsAboveCentre, last),
	}
}

// LedsForPosition applies ComputeLedsToLight to loc's own range, width and
// direction.
func LedsForPosition(loc *location.Location, metersFromAnchor float64) LedRange {
	r := LocationRange(loc)
	if r.IsZero() {
		return LedRange{}
	}
	return ComputeLedsToLight(r.First, r.Last, loc.LowerLedNearAnchor,
		loc.PickFaceLength(), metersFromAnchor, loc.Level == location.LevelSlot)
}
