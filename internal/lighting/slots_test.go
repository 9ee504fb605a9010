package lighting

import (
	"fmt"
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

func TestLayoutSlots(t *testing.T) {
	tests := []struct {
		name   string
		leds   int
		slots  int
		expect map[int][2]int
	}{
		{
			name: "80 LEDs over 8 slots",
			leds: 80, slots: 8,
			expect: map[int][2]int{1: {3, 6}, 2: {13, 16}, 8: {76, 79}},
		},
		{
			name: "42 LEDs over 5 slots with remainder",
			leds: 42, slots: 5,
			expect: map[int][2]int{1: {3, 6}, 2: {12, 15}, 3: {22, 25}, 4: {30, 33}, 5: {38, 41}},
		},
		{
			name: "narrow slots get no guard",
			leds: 20, slots: 10,
			expect: map[int][2]int{1: {1, 1}, 2: {3, 3}, 10: {19, 19}},
		},
		{
			name: "one LED per slot",
			leds: 4, slots: 4,
			expect: map[int][2]int{1: {1, 1}, 2: {2, 2}, 3: {3, 3}, 4: {4, 4}},
		},
		{
			name: "32 LED strip is unguarded",
			leds: 32, slots: 4,
			expect: map[int][2]int{1: {1, 4}, 4: {28, 31}},
		},
		{
			name: "more slots than LEDs stays inside the tier",
			leds: 3, slots: 5,
			expect: map[int][2]int{1: {1, 1}, 2: {2, 2}, 3: {3, 3}, 5: {3, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, tt.slots, tt.leds)
			allocate(t, aisle)
			for s, want := range tt.expect {
				assertLeds(t, f, fmt.Sprintf("A1.B1.T1.S%d", s), want[0], want[1])
			}
		})
	}
}

func TestLayoutSlots_Reversed(t *testing.T) {
	// Second bay of a tierNotB1S1Side aisle: B1 holds 43..84 with its
	// slots numbered from the far end.
	f, aisle := newAisle(t, location.PatternTierNotB1S1Side, 2, 1, 5, 42)
	allocate(t, aisle)

	assertLeds(t, f, "A1.B1.T1", 43, 84)
	assertLeds(t, f, "A1.B1.T1.S5", 45, 48)
	assertLeds(t, f, "A1.B1.T1.S4", 54, 57)
	assertLeds(t, f, "A1.B1.T1.S3", 64, 67)
	assertLeds(t, f, "A1.B1.T1.S2", 72, 75)
	assertLeds(t, f, "A1.B1.T1.S1", 80, 83)
}

func TestLayoutSlots_WithinTier(t *testing.T) {
	for _, leds := range []int{1, 7, 15, 31, 32, 33, 60, 100} {
		for _, slots := range []int{1, 2, 3, 5, 8} {
			f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, slots, leds)
			allocate(t, aisle)
			tier := mustFind(t, f, "A1.B1.T1")
			for _, slot := range tier.Children() {
				if slot.FirstLed() < tier.FirstLed() || slot.LastLed() > tier.LastLed() || slot.FirstLed() > slot.LastLed() {
					t.Errorf("%d LEDs/%d slots: %s = %d>%d outside tier %d>%d",
						leds, slots, slot.DomainID, slot.FirstLed(), slot.LastLed(), tier.FirstLed(), tier.LastLed())
				}
				if n := slot.LastLed() - slot.FirstLed() + 1; n > maxLitPerSlot+1 {
					t.Errorf("%d LEDs/%d slots: %s lights %d LEDs", leds, slots, slot.DomainID, n)
				}
			}
		}
	}
}
