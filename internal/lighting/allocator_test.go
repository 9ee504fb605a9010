package lighting

import (
	"errors"
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// newAisle builds aisle A1 in a fresh facility with the given number of
// bays, each holding tiers T1..Tn of ledsPerTier LEDs and slotsPerTier
// slots.
func newAisle(t *testing.T, pattern location.Pattern, bays, tiers, slotsPerTier, ledsPerTier int) (*location.Facility, *location.Location) {
	t.Helper()

	f := location.NewFacility("F1", "NET")
	aisle, _, err := f.EnsureChild("A1")
	if err != nil {
		t.Fatalf("EnsureChild(A1): %v", err)
	}
	aisle.Pattern = pattern
	for b := 1; b <= bays; b++ {
		bay, _, err := aisle.EnsureChild(location.OrdinalName(location.LevelBay, b))
		if err != nil {
			t.Fatalf("EnsureChild bay: %v", err)
		}
		location.SetBayLength(bay, 1.22)
		for ti := 1; ti <= tiers; ti++ {
			tier, _, err := bay.EnsureChild(location.OrdinalName(location.LevelTier, ti))
			if err != nil {
				t.Fatalf("EnsureChild tier: %v", err)
			}
			tier.LedCount = ledsPerTier
			tier.SlotCount = slotsPerTier
			for s := 1; s <= slotsPerTier; s++ {
				if _, _, err := tier.EnsureChild(location.OrdinalName(location.LevelSlot, s)); err != nil {
					t.Fatalf("EnsureChild slot: %v", err)
				}
			}
		}
	}
	return f, aisle
}

func allocate(t *testing.T, aisle *location.Location) {
	t.Helper()
	if err := NewAllocator().Allocate(aisle); err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
}

func mustFind(t *testing.T, f *location.Facility, id string) *location.Location {
	t.Helper()
	loc := f.FindLocation(id)
	if loc == nil {
		t.Fatalf("FindLocation(%q) = nil", id)
	}
	return loc
}

func assertLeds(t *testing.T, f *location.Facility, id string, first, last int) {
	t.Helper()
	loc := mustFind(t, f, id)
	if loc.FirstLed() != first || loc.LastLed() != last {
		t.Errorf("%s LEDs = %d>%d, want %d>%d", id, loc.FirstLed(), loc.LastLed(), first, last)
	}
}

func TestAllocate_NotAisle(t *testing.T) {
	f, _ := newAisle(t, location.PatternTierB1S1Side, 1, 1, 1, 10)
	if err := NewAllocator().Allocate(mustFind(t, f, "A1.B1")); !errors.Is(err, ErrNotAisle) {
		t.Errorf("Allocate(bay) error = %v, want ErrNotAisle", err)
	}
	if err := NewAllocator().Allocate(nil); !errors.Is(err, ErrNotAisle) {
		t.Errorf("Allocate(nil) error = %v, want ErrNotAisle", err)
	}
}

func TestAllocate_TierB1S1Side(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 2, 2, 8, 80)
	allocate(t, aisle)

	// Each tier level is its own strip starting at bay 1.
	assertLeds(t, f, "A1.B1.T1", 1, 80)
	assertLeds(t, f, "A1.B2.T1", 81, 160)
	assertLeds(t, f, "A1.B1.T2", 1, 80)
	assertLeds(t, f, "A1.B2.T2", 81, 160)

	assertLeds(t, f, "A1.B1.T1.S1", 3, 6)
	assertLeds(t, f, "A1.B1.T1.S8", 76, 79)
	assertLeds(t, f, "A1.B2.T1.S1", 83, 86)

	if !mustFind(t, f, "A1.B2.T2").LowerLedNearAnchor {
		t.Error("B2.T2 LowerLedNearAnchor = false, want true")
	}
	if !mustFind(t, f, "A1.B1.T1.S4").LowerLedNearAnchor {
		t.Error("slot LowerLedNearAnchor = false, want inherited true")
	}
}

func TestAllocate_TierNotB1S1Side(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierNotB1S1Side, 2, 1, 6, 60)
	allocate(t, aisle)

	assertLeds(t, f, "A1.B2.T1", 1, 60)
	assertLeds(t, f, "A1.B1.T1", 61, 120)

	// Slots count from the far end.
	assertLeds(t, f, "A1.B1.T1.S6", 63, 66)
	assertLeds(t, f, "A1.B2.T1.S1", 56, 59)

	if mustFind(t, f, "A1.B1.T1").LowerLedNearAnchor {
		t.Error("LowerLedNearAnchor = true, want false")
	}
}

func TestAllocate_ZigzagB1S1Side(t *testing.T) {
	f, aisle := newAisle(t, location.PatternZigzagB1S1Side, 2, 2, 1, 10)
	allocate(t, aisle)

	// Top row first, left to right, then back along the row below.
	assertLeds(t, f, "A1.B1.T2", 1, 10)
	assertLeds(t, f, "A1.B2.T2", 11, 20)
	assertLeds(t, f, "A1.B2.T1", 21, 30)
	assertLeds(t, f, "A1.B1.T1", 31, 40)

	if !mustFind(t, f, "A1.B1.T2").LowerLedNearAnchor {
		t.Error("T2 LowerLedNearAnchor = false, want true")
	}
	if mustFind(t, f, "A1.B1.T1").LowerLedNearAnchor {
		t.Error("T1 LowerLedNearAnchor = true, want false")
	}
}

func TestAllocate_ZigzagNotB1S1Side(t *testing.T) {
	f, aisle := newAisle(t, location.PatternZigzagNotB1S1Side, 2, 2, 1, 10)
	allocate(t, aisle)

	assertLeds(t, f, "A1.B2.T2", 1, 10)
	assertLeds(t, f, "A1.B1.T2", 11, 20)
	assertLeds(t, f, "A1.B1.T1", 21, 30)
	assertLeds(t, f, "A1.B2.T1", 31, 40)
}

func TestAllocate_DeprecatedPatternNames(t *testing.T) {
	tests := []struct {
		name string
		want location.Pattern
	}{
		{"zigzagLeft", location.PatternZigzagB1S1Side},
		{"zigzagRight", location.PatternZigzagNotB1S1Side},
		{"tierLeft", location.PatternTierB1S1Side},
		{"tierRight", location.PatternTierNotB1S1Side},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := location.ParsePattern(tt.name)
			if !ok || p != tt.want {
				t.Fatalf("ParsePattern(%q) = %q, %v", tt.name, p, ok)
			}
			_, aisle := newAisle(t, p, 2, 2, 1, 10)
			allocate(t, aisle)
			if got := InferPattern(aisle); got != tt.want {
				t.Errorf("InferPattern() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllocate_EmptyPatternDefaultsToTier(t *testing.T) {
	f, aisle := newAisle(t, "", 2, 1, 1, 10)
	allocate(t, aisle)
	assertLeds(t, f, "A1.B1.T1", 1, 10)
	assertLeds(t, f, "A1.B2.T1", 11, 20)
}

func TestAllocate_ZeroLedTier(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 2, 1, 3, 0)
	mustFind(t, f, "A1.B2.T1").LedCount = 30
	allocate(t, aisle)

	tier := mustFind(t, f, "A1.B1.T1")
	if !tier.LedsSet() || tier.FirstLed() != 0 || tier.LastLed() != 0 {
		t.Errorf("zero-LED tier = set %v %d>%d, want set 0>0", tier.LedsSet(), tier.FirstLed(), tier.LastLed())
	}
	assertLeds(t, f, "A1.B1.T1.S2", 0, 0)
	// The counter does not advance past a tier without LEDs.
	assertLeds(t, f, "A1.B2.T1", 1, 30)
}

func TestAllocate_BayOffset(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 3, 1, 1, 20)
	mustFind(t, f, "A1.B2").LedOffset = 3
	allocate(t, aisle)

	assertLeds(t, f, "A1.B1.T1", 1, 20)
	assertLeds(t, f, "A1.B2.T1", 24, 43)
	// Later bays keep counting from the unshifted position.
	assertLeds(t, f, "A1.B3.T1", 41, 60)
}

func TestAllocate_NegativeOffsetBelowOneIgnored(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 2, 1, 1, 20)
	mustFind(t, f, "A1.B1").LedOffset = -5
	mustFind(t, f, "A1.B2").LedOffset = -5
	allocate(t, aisle)

	assertLeds(t, f, "A1.B1.T1", 1, 20)
	assertLeds(t, f, "A1.B2.T1", 16, 35)
}

func TestAllocate_Idempotent(t *testing.T) {
	f, aisle := newAisle(t, location.PatternZigzagB1S1Side, 3, 3, 4, 40)
	allocate(t, aisle)
	before := BuildAisleMap(f.DomainID, aisle)
	allocate(t, aisle)
	after := BuildAisleMap(f.DomainID, aisle)

	for i := range before.Tiers {
		if before.Tiers[i].First != after.Tiers[i].First || before.Tiers[i].Last != after.Tiers[i].Last {
			t.Errorf("tier %s changed on second allocation", before.Tiers[i].Location)
		}
	}
}

func TestAllocate_UnevenTiers(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 2, 2, 1, 10)
	// B2 has a third tier that B1 lacks.
	t3, _, err := mustFind(t, f, "A1.B2").EnsureChild("T3")
	if err != nil {
		t.Fatalf("EnsureChild(T3): %v", err)
	}
	t3.LedCount = 10
	allocate(t, aisle)

	assertLeds(t, f, "A1.B2.T3", 1, 10)
	assertLeds(t, f, "A1.B2.T2", 11, 20)
}
