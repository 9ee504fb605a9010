package lighting

import (
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

func TestLedRange(t *testing.T) {
	r := LedRange{First: 3, Last: 6}
	if r.IsZero() || r.Count() != 4 || r.String() != "3>6" {
		t.Errorf("LedRange{3,6}: zero %v count %d string %q", r.IsZero(), r.Count(), r.String())
	}
	if !r.IsWithin(3) || !r.IsWithin(6) || r.IsWithin(7) {
		t.Error("IsWithin bounds wrong")
	}

	var zero LedRange
	if !zero.IsZero() || zero.Count() != 0 || zero.String() != "" {
		t.Errorf("zero LedRange: zero %v count %d string %q", zero.IsZero(), zero.Count(), zero.String())
	}
}

func TestCapLeds(t *testing.T) {
	tests := []struct {
		name string
		in   LedRange
		max  int
		want LedRange
	}{
		{"wide range capped", LedRange{10, 50}, 4, LedRange{10, 13}},
		{"narrow range untouched", LedRange{1, 3}, 4, LedRange{1, 3}},
		{"full pallet lower bound", LedRange{1, 26}, 4, LedRange{1, 26}},
		{"full pallet upper bound", LedRange{10, 40}, 4, LedRange{10, 40}},
		{"just past full pallet", LedRange{1, 32}, 4, LedRange{1, 4}},
		{"zero", LedRange{}, 4, LedRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.CapLeds(tt.max); got != tt.want {
				t.Errorf("CapLeds(%d) = %v, want %v", tt.max, got, tt.want)
			}
		})
	}
}

func TestComputeLedsToLight(t *testing.T) {
	tests := []struct {
		name   string
		first  int
		last   int
		lower  bool
		width  float64
		meters float64
		slot   bool
		want   LedRange
	}{
		{"slot without position lights all", 5, 8, true, 1, 0, true, LedRange{5, 8}},
		{"narrow tier without position lights all", 5, 9, true, 1, 0, false, LedRange{5, 9}},
		{"wide tier without position lights centre", 1, 20, true, 2, 0, false, LedRange{9, 12}},
		{"quarter along", 1, 20, true, 2, 0.5, false, LedRange{4, 7}},
		{"quarter along reversed", 1, 20, false, 2, 0.5, false, LedRange{14, 17}},
		{"near anchor clamps", 1, 20, true, 2, 0.1, false, LedRange{1, 3}},
		{"far end of pick face", 1, 20, true, 2, 2, false, LedRange{9, 12}},
		{"past the pick face", 1, 20, true, 2, 2.5, false, LedRange{}},
		{"negative position", 1, 20, true, 2, -1, false, LedRange{}},
		{"unset range", 0, 0, true, 2, 1, false, LedRange{}},
		{"inverted range", 9, 3, true, 2, 1, false, LedRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLedsToLight(tt.first, tt.last, tt.lower, tt.width, tt.meters, tt.slot)
			if got != tt.want {
				t.Errorf("ComputeLedsToLight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedsForPosition(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, 5, 80)
	allocate(t, aisle)
	if err := location.LayoutAisle(aisle); err != nil {
		t.Fatalf("LayoutAisle() error = %v", err)
	}

	if got, want := LedsForPosition(mustFind(t, f, "A1.B1.T1"), 0.61), (LedRange{39, 42}); got != want {
		t.Errorf("tier midpoint = %v, want %v", got, want)
	}
	slot := mustFind(t, f, "A1.B1.T1.S2")
	if got, want := LedsForPosition(slot, 0), LocationRange(slot); got != want {
		t.Errorf("slot = %v, want %v", got, want)
	}
	if got := LedsForPosition(nil, 0); !got.IsZero() {
		t.Errorf("nil location = %v, want zero", got)
	}
}
