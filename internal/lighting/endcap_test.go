package lighting

import (
	"errors"
	"reflect"
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

func TestParseSlotStarts(t *testing.T) {
	got, err := ParseSlotStarts(" 45/54 / 64 ")
	if err != nil {
		t.Fatalf("ParseSlotStarts() error = %v", err)
	}
	if want := []int{45, 54, 64}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSlotStarts() = %v, want %v", got, want)
	}

	for _, in := range []string{"", "45//64", "a/b", "0/4", "-3"} {
		if _, err := ParseSlotStarts(in); !errors.Is(err, ErrInvalidSlotStarts) {
			t.Errorf("ParseSlotStarts(%q) error = %v, want ErrInvalidSlotStarts", in, err)
		}
	}
}

func TestSetSlotTierLeds(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, 3, 30)
	allocate(t, aisle)
	tier := mustFind(t, f, "A1.B1.T1")

	if err := SetSlotTierLeds(tier, 45, 30, true, 4, []int{45, 54, 64}); err != nil {
		t.Fatalf("SetSlotTierLeds() error = %v", err)
	}
	assertLeds(t, f, "A1.B1.T1", 45, 74)
	assertLeds(t, f, "A1.B1.T1.S1", 45, 48)
	assertLeds(t, f, "A1.B1.T1.S2", 54, 57)
	assertLeds(t, f, "A1.B1.T1.S3", 64, 67)

	p, err := SlotTierLedParameters(tier)
	if err != nil {
		t.Fatalf("SlotTierLedParameters() error = %v", err)
	}
	want := SlotTierParams{StartLed: 45, TotalLedCount: 30, LowerLedNearAnchor: true, LedsPerSlot: 4, SlotStarts: []int{45, 54, 64}}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("SlotTierLedParameters() = %+v, want %+v", p, want)
	}
	if got := p.SlotStartsString(); got != "45/54/64" {
		t.Errorf("SlotStartsString() = %q", got)
	}
}

func TestSetSlotTierLeds_Reversed(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, 3, 30)
	allocate(t, aisle)
	tier := mustFind(t, f, "A1.B1.T1")

	if err := SetSlotTierLeds(tier, 1, 30, false, 2, []int{1, 11, 21}); err != nil {
		t.Fatalf("SetSlotTierLeds() error = %v", err)
	}
	// Starts are given in LED order, so S3 takes the first one.
	assertLeds(t, f, "A1.B1.T1.S3", 1, 2)
	assertLeds(t, f, "A1.B1.T1.S1", 21, 22)
	if mustFind(t, f, "A1.B1.T1.S2").LowerLedNearAnchor {
		t.Error("slot LowerLedNearAnchor = true, want false")
	}
}

func TestSetSlotTierLeds_CountMismatch(t *testing.T) {
	f, aisle := newAisle(t, location.PatternTierB1S1Side, 1, 1, 3, 30)
	allocate(t, aisle)
	tier := mustFind(t, f, "A1.B1.T1")

	err := SetSlotTierLeds(tier, 10, 20, true, 4, []int{10, 20})
	if !errors.Is(err, ErrSlotCountMismatch) {
		t.Fatalf("SetSlotTierLeds() error = %v, want ErrSlotCountMismatch", err)
	}
	// The tier range is applied, the slots keep their old layout.
	assertLeds(t, f, "A1.B1.T1", 10, 29)
	assertLeds(t, f, "A1.B1.T1.S1", 3, 6)
}

func TestSetSlotTierLeds_Invalid(t *testing.T) {
	f, _ := newAisle(t, location.PatternTierB1S1Side, 1, 1, 1, 10)

	if err := SetSlotTierLeds(mustFind(t, f, "A1.B1"), 1, 10, true, 1, []int{1}); !errors.Is(err, ErrNotTier) {
		t.Errorf("bay: error = %v, want ErrNotTier", err)
	}
	if err := SetSlotTierLeds(mustFind(t, f, "A1.B1.T1"), 0, 10, true, 1, []int{1}); !errors.Is(err, ErrInvalidLedRange) {
		t.Errorf("start 0: error = %v, want ErrInvalidLedRange", err)
	}
}
