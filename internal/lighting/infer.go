package lighting

import (
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// InferPattern reads an aisle's current LED layout and names the pattern
// that produced it. It looks only at bay B1: when its two lowest tiers
// start on the same LED the aisle is tier-wise, otherwise zigzag, and the
// side is whichever puts LED 1 in B1.
//
// Aisles that do not fit this picture, such as a B1 with one tier under a
// zigzag, read as a tier pattern. An aisle without B1 is tierB1S1Side.
func InferPattern(aisle *location.Location) location.Pattern {
	if aisle == nil || aisle.Level != location.LevelAisle {
		return location.PatternTierB1S1Side
	}
	b1 := aisle.Child("B1")
	if b1 == nil {
		return location.PatternTierB1S1Side
	}

	tiers := b1.SortedChildren()
	switch {
	case len(tiers) == 0:
		return tierSide(b1.FirstLed() == 1)
	case len(tiers) == 1:
		return tierSide(tiers[0].FirstLed() == 1)
	case tiers[0].FirstLed() == tiers[1].FirstLed():
		return tierSide(tiers[0].FirstLed() == 1)
	case tiers[len(tiers)-1].FirstLed() == 1:
		return location.PatternZigzagB1S1Side
	default:
		return location.PatternZigzagNotB1S1Side
	}
}

func tierSide(b1First bool) location.Pattern {
	if b1First {
		return location.PatternTierB1S1Side
	}
	return location.PatternTierNotB1S1Side
}
