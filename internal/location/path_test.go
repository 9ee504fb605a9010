package location

import (
	"errors"
	"testing"
)

func abs(x, y float64) Point {
	return NewPoint(PositionTypeAbsolute, x, y, 0)
}

func TestComputeNormalizedPosition(t *testing.T) {
	f := NewFacility("F1", "")
	p, err := f.CreatePath("P1", "main route")
	if err != nil {
		t.Fatal(err)
	}
	seg0 := p.AddSegment(abs(22, 48), abs(12, 48))
	seg1 := p.AddSegment(abs(12, 48), abs(12, 58))

	if seg1.StartPosAlongPath != 10 {
		t.Fatalf("seg1 start = %v, want 10", seg1.StartPosAlongPath)
	}
	if p.Length() != 20 {
		t.Errorf("path length = %v, want 20", p.Length())
	}

	tests := []struct {
		name string
		seg  *PathSegment
		at   Point
		want float64
	}{
		{"before start", seg0, abs(25, 48), 0},
		{"at start", seg0, abs(22, 48), 0},
		{"midway", seg0, abs(18, 48), 4},
		{"off line", seg0, abs(18, 40), 4},
		{"at end", seg0, abs(12, 48), 10},
		{"beyond end", seg0, abs(8, 48), 10},
		{"second segment", seg1, abs(12, 55), 17},
		{"beyond second", seg1, abs(12, 62), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.ComputeNormalizedPosition(tt.at); !almostEqual(got, tt.want) {
				t.Errorf("ComputeNormalizedPosition(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestComputeNormalizedPosition_Monotonic(t *testing.T) {
	f := NewFacility("F1", "")
	p, _ := f.CreatePath("P1", "")
	seg := p.AddSegment(abs(0, 0), abs(3, 4))

	prev := -1.0
	for i := 0; i <= 10; i++ {
		frac := float64(i) / 10
		got := seg.ComputeNormalizedPosition(abs(3*frac, 4*frac))
		if got <= prev {
			t.Fatalf("position %v at step %d not above %v", got, i, prev)
		}
		prev = got
	}
	if !almostEqual(prev, 5) {
		t.Errorf("end position = %v, want 5", prev)
	}
}

func TestAssociatePathSegment_RightToLeft(t *testing.T) {
	f := NewFacility("F1", "")
	aisle := buildAisle(t, f, "A1", OrientationX, NewPoint(PositionTypeParent, 2, 5, 0), 1, []float64{1.22, 1.22, 1.22}, 2, 4)

	if aisle.PosAlongPath != nil {
		t.Fatal("PosAlongPath should be nil before association")
	}

	p, _ := f.CreatePath("P1", "")
	seg := p.AddSegment(abs(10, 4), abs(0, 4))
	f.AssociatePathSegment(aisle, seg)

	var smallest *Location
	aisle.Walk(func(l *Location) {
		if l.PosAlongPath == nil {
			t.Fatalf("%s has no path position", l)
		}
		if l.Level == LevelSlot && (smallest == nil || *l.PosAlongPath < *smallest.PosAlongPath) {
			smallest = l
		}
	})
	if smallest.NominalLocationID() != "A1.B3.T1.S4" && smallest.NominalLocationID() != "A1.B3.T2.S4" {
		t.Errorf("smallest slot = %s, want the last slot of B3", smallest)
	}

	b1 := *aisle.Child("B1").PosAlongPath
	b3 := *aisle.Child("B3").PosAlongPath
	if !(b3 < b1) {
		t.Errorf("B3 pos %v should be below B1 pos %v", b3, b1)
	}
	if got := aisle.FindSubLocation("B2.T1.S2").AssociatedPathSegment(); got != seg {
		t.Error("slot should inherit the aisle's segment")
	}
	if PathIncreasesFromAnchor(aisle) {
		t.Error("right to left segment should not increase from anchor")
	}
}

func TestAssociatePathSegment_Reassociate(t *testing.T) {
	f := NewFacility("F1", "")
	aisle := buildAisle(t, f, "A1", OrientationX, ZeroPoint(), 1, []float64{1}, 1, 1)
	p, _ := f.CreatePath("P1", "")
	s0 := p.AddSegment(abs(0, -1), abs(5, -1))
	s1 := p.AddSegment(abs(5, -1), abs(10, -1))

	f.AssociatePathSegment(aisle, s0)
	f.AssociatePathSegment(aisle, s0)
	if len(s0.Locations()) != 1 {
		t.Errorf("s0 has %d locations after double association, want 1", len(s0.Locations()))
	}

	f.AssociatePathSegment(aisle, s1)
	if len(s0.Locations()) != 0 {
		t.Error("aisle should be removed from its previous segment")
	}
	if len(s1.Locations()) != 1 {
		t.Error("aisle should be on the new segment")
	}
	if got := *aisle.PosAlongPath; got != 5 {
		t.Errorf("pos on clamped segment = %v, want 5", got)
	}
}

func TestRecomputePathDistances(t *testing.T) {
	f := NewFacility("F1", "")
	aisle := buildAisle(t, f, "A1", OrientationX, ZeroPoint(), 1, []float64{1, 1}, 1, 1)
	p, _ := f.CreatePath("P1", "")
	seg := p.AddSegment(abs(0, -1), abs(10, -1))
	f.AssociatePathSegment(aisle, seg)

	b2 := aisle.Child("B2")
	if got := *b2.PosAlongPath; got != 1 {
		t.Fatalf("B2 pos = %v, want 1", got)
	}

	SetBayLength(aisle.Child("B1"), 3)
	if err := LayoutAisle(aisle); err != nil {
		t.Fatal(err)
	}
	f.RecomputePathDistances(p)

	if got := *b2.PosAlongPath; got != 3 {
		t.Errorf("B2 pos after relayout = %v, want 3", got)
	}
}

func TestCreatePath_Duplicate(t *testing.T) {
	f := NewFacility("F1", "")
	if _, err := f.CreatePath("P1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CreatePath("p1", ""); !errors.Is(err, ErrDuplicateDomainID) {
		t.Errorf("duplicate path: got %v, want ErrDuplicateDomainID", err)
	}
	if f.Path("P1").Segment(0) != nil {
		t.Error("empty path should have no segment 0")
	}
}

func TestIsLeftSideTowardAnchor(t *testing.T) {
	f := NewFacility("F1", "")
	aisle := buildAisle(t, f, "A1", OrientationX, NewPoint(PositionTypeParent, 0, 5, 0), 1, []float64{1}, 1, 1)
	if !IsLeftSideTowardAnchor(aisle) {
		t.Error("no segment should default to true")
	}

	p, _ := f.CreatePath("P1", "")
	f.AssociatePathSegment(aisle, p.AddSegment(abs(0, 8), abs(10, 8)))
	if !IsLeftSideTowardAnchor(aisle) {
		t.Error("aisle y 5 < path y 8 flowing right should be true")
	}

	p2, _ := f.CreatePath("P2", "")
	f.AssociatePathSegment(aisle, p2.AddSegment(abs(10, 8), abs(0, 8)))
	if IsLeftSideTowardAnchor(aisle) {
		t.Error("reversed segment should be false")
	}
}
