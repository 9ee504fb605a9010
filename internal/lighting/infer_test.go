package lighting

import (
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

func TestInferPattern(t *testing.T) {
	patterns := []location.Pattern{
		location.PatternTierB1S1Side,
		location.PatternTierNotB1S1Side,
		location.PatternZigzagB1S1Side,
		location.PatternZigzagNotB1S1Side,
	}
	for _, p := range patterns {
		t.Run(string(p), func(t *testing.T) {
			_, aisle := newAisle(t, p, 3, 2, 4, 40)
			allocate(t, aisle)
			if got := InferPattern(aisle); got != p {
				t.Errorf("InferPattern() = %q, want %q", got, p)
			}
		})
	}
}

func TestInferPattern_Degenerate(t *testing.T) {
	if got := InferPattern(nil); got != location.PatternTierB1S1Side {
		t.Errorf("nil = %q", got)
	}

	f := location.NewFacility("F1", "NET")
	aisle, _, _ := f.EnsureChild("A1")
	if got := InferPattern(aisle); got != location.PatternTierB1S1Side {
		t.Errorf("no bays = %q", got)
	}

	// A single tier row under zigzag is indistinguishable from a tier pattern.
	_, aisle = newAisle(t, location.PatternZigzagNotB1S1Side, 2, 1, 1, 10)
	allocate(t, aisle)
	if got := InferPattern(aisle); got != location.PatternTierNotB1S1Side {
		t.Errorf("one-row zigzag = %q, want tierNotB1S1Side", got)
	}
}
