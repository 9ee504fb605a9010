package location

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	f := NewFacility("F1", "")
	buildAisle(t, f, "A9", OrientationX, ZeroPoint(), 1, []float64{1.22, 1.22}, 2, 3)

	s3 := f.FindLocation("A9.B1.T1.S3")
	if s3 == nil {
		t.Fatal("FindLocation(A9.B1.T1.S3) = nil")
	}
	if got := f.FindLocation("a9.b1.t1.s3"); got != s3 {
		t.Error("lookup should be case-insensitive")
	}
	if f.FindLocation("A9.B7") != nil || f.FindLocation("A9.B1.T1.S3.X") != nil {
		t.Error("missing segments should resolve to nil")
	}

	tests := []struct {
		level Level
		want  string
	}{
		{LevelAisle, "A9.B1.T1.S3"},
		{LevelBay, "B1.T1.S3"},
		{LevelTier, "T1.S3"},
		{LevelSlot, "S3"},
		{LevelFacility, "A9.B1.T1.S3"},
	}
	for _, tt := range tests {
		if got := s3.LocationIDToParentLevel(tt.level); got != tt.want {
			t.Errorf("LocationIDToParentLevel(%s) = %q, want %q", tt.level, got, tt.want)
		}
	}

	tier := f.FindLocation("A9.B1.T1")
	if got := tier.LocationIDToParentLevel(LevelBay); got != "B1.T1" {
		t.Errorf("tier to bay = %q, want B1.T1", got)
	}
	if got := s3.NominalLocationID(); got != "A9.B1.T1.S3" {
		t.Errorf("NominalLocationID() = %q", got)
	}
	if s3.Facility() != f {
		t.Error("Facility() should return the owning facility")
	}
}

func TestSetControllerChannel(t *testing.T) {
	f := NewFacility("F1", "NET")
	aisle := buildAisle(t, f, "A1", OrientationX, ZeroPoint(), 1, []float64{1.22, 1.22}, 2, 2)
	c1, err := f.AddController("0x00000011", "0x00000011")
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := f.AddController("0x00000012", "0x00000012")

	if err := f.SetControllerChannel(aisle, "missing", 1, ""); !errors.Is(err, ErrControllerNotFound) {
		t.Errorf("unknown controller: got %v", err)
	}

	b1t1 := aisle.FindSubLocation("B1.T1")
	b2t1 := aisle.FindSubLocation("B2.T1")
	b1t2 := aisle.FindSubLocation("B1.T2")

	// Single tier with a missing channel defaults to 1.
	if err := f.SetControllerChannel(b1t1, c2.DomainID, 0, ""); err != nil {
		t.Fatal(err)
	}
	if b1t1.ControllerID != c2.ID || b1t1.Channel != 1 {
		t.Errorf("tier assignment = %s/%d", b1t1.ControllerID, b1t1.Channel)
	}
	if b2t1.ControllerID != "" {
		t.Error("empty scope should only touch one tier")
	}

	// Aisle scope on a tier sets every T1.
	if err := f.SetControllerChannel(b1t1, c1.ID, 2, ScopeAisle); err != nil {
		t.Fatal(err)
	}
	for _, tier := range []*Location{b1t1, b2t1} {
		if tier.ControllerID != c1.ID || tier.Channel != 2 {
			t.Errorf("%s = %s/%d, want c1/2", tier, tier.ControllerID, tier.Channel)
		}
	}
	if b1t2.ControllerID != "" {
		t.Error("T2 should not be assigned by a T1 aisle-scope change")
	}

	// Aisle level clears tier overrides.
	if err := f.SetControllerChannel(aisle, c2.DomainID, 3, ""); err != nil {
		t.Fatal(err)
	}
	if b1t1.ControllerID != "" || b1t1.Channel != 0 {
		t.Error("aisle assignment should clear tier overrides")
	}
	slot := aisle.FindSubLocation("B2.T1.S2")
	if slot.EffectiveControllerID() != c2.ID || slot.EffectiveChannel() != 3 {
		t.Errorf("effective = %s/%d", slot.EffectiveControllerID(), slot.EffectiveChannel())
	}
	if got := slot.LedControllerUI(); got != "(0x00000012)" {
		t.Errorf("LedControllerUI() = %q", got)
	}
	if got := slot.LedChannelUI(); got != "(3)" {
		t.Errorf("LedChannelUI() = %q", got)
	}
	if got := aisle.LedControllerUI(); got != "0x00000012" {
		t.Errorf("aisle LedControllerUI() = %q", got)
	}
	if got := aisle.LedChannelUI(); got != "3" {
		t.Errorf("aisle LedChannelUI() = %q", got)
	}

	if err := f.SetControllerChannel(slot, c1.ID, 1, ""); !errors.Is(err, ErrControllerLevel) {
		t.Errorf("slot assignment: got %v", err)
	}
	if err := f.SetControllerChannel(b1t1, c1.ID, 1, "bay"); !errors.Is(err, ErrUnknownScope) {
		t.Errorf("bad scope: got %v", err)
	}
}

func TestEnsureLedControllers(t *testing.T) {
	f := NewFacility("F1", "NET")
	aisle := buildAisle(t, f, "A1", OrientationX, ZeroPoint(), 1, []float64{1.22, 1.22}, 2, 1)

	// Two strips: each tier level restarts at 1.
	aisle.FindSubLocation("B1.T1").SetLeds(1, 20)
	aisle.FindSubLocation("B2.T1").SetLeds(21, 40)
	aisle.FindSubLocation("B1.T2").SetLeds(1, 20)
	aisle.FindSubLocation("B2.T2").SetLeds(21, 40)

	created := f.EnsureLedControllers()
	if len(created) != 2 {
		t.Fatalf("created %d controllers, want 2", len(created))
	}
	if created[0].DomainID != "99999999" || created[0].DeviceGUID != "0x99999999" {
		t.Errorf("first placeholder = %+v", created[0])
	}
	if created[1].DomainID != "99999998" {
		t.Errorf("second placeholder = %s", created[1].DomainID)
	}
	if created[0].Network != "NET" {
		t.Errorf("network = %q, want NET", created[0].Network)
	}

	if again := f.EnsureLedControllers(); len(again) != 0 {
		t.Errorf("second call created %d controllers", len(again))
	}
}
