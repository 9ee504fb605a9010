package location

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/database"
	_ "github.com/codeshelf/Codeshelf-sub002/migrations"
)

// setupTestDB opens an in-memory SQLite database with the embedded migrations applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.DB
}

func populatedFacility(t *testing.T) *Facility {
	t.Helper()

	f := NewFacility("F1", "NET")
	aisle := buildAisle(t, f, "A9", OrientationY, NewPoint(PositionTypeParent, 3, 4, 0), 1.2, []float64{1.15, 1.15}, 2, 3)
	aisle.Pattern = PatternZigzagNotB1S1Side

	tier := aisle.FindSubLocation("B1.T1")
	tier.LedCount = 30
	tier.SetLeds(1, 30)
	tier.LowerLedNearAnchor = true
	aisle.FindSubLocation("B1.T1.S1").SetLeds(3, 6)
	aisle.FindSubLocation("B2.T2").SetLeds(0, 0)
	aisle.Child("B2").LedOffset = 3
	aisle.Child("B2").CloneSource = "B1"
	if err := aisle.SetIndicatorLeds(1, 4); err != nil {
		t.Fatal(err)
	}

	c, _ := f.AddController("0x0001", "0x0001")
	if err := f.SetControllerChannel(tier, c.ID, 2, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AddAlias("D-1", aisle.FindSubLocation("B1.T1.S1")); err != nil {
		t.Fatal(err)
	}

	p, _ := f.CreatePath("P1", "main")
	p.AddSegment(NewPoint(PositionTypeAbsolute, 0, 0, 0), NewPoint(PositionTypeAbsolute, 0, 10, 0))
	seg := p.AddSegment(NewPoint(PositionTypeAbsolute, 0, 10, 0), NewPoint(PositionTypeAbsolute, 10, 10, 0))
	f.AssociatePathSegment(aisle, seg)
	return f
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	orig := populatedFacility(t)

	if err := repo.SaveFacility(ctx, orig); err != nil {
		t.Fatalf("SaveFacility: %v", err)
	}
	got, err := repo.LoadFacility(ctx, "F1")
	if err != nil {
		t.Fatalf("LoadFacility: %v", err)
	}

	if got.ID != orig.ID || got.Network != "NET" {
		t.Errorf("facility = %s/%s, want %s/NET", got.ID, got.Network, orig.ID)
	}

	aisle := got.Aisle("A9")
	if aisle == nil {
		t.Fatal("aisle A9 not loaded")
	}
	if aisle.Pattern != PatternZigzagNotB1S1Side || aisle.Orientation != OrientationY || aisle.DepthM != 1.2 {
		t.Errorf("aisle attributes = %s/%s/%v", aisle.Pattern, aisle.Orientation, aisle.DepthM)
	}
	if first, last := aisle.IndicatorLeds(); first != 1 || last != 4 {
		t.Errorf("indicator = %d>%d", first, last)
	}
	if n := len(aisle.Children()); n != 2 {
		t.Fatalf("aisle has %d bays, want 2", n)
	}

	tier := got.FindLocation("A9.B1.T1")
	if tier.FirstLed() != 1 || tier.LastLed() != 30 || !tier.LowerLedNearAnchor || tier.LedCount != 30 {
		t.Errorf("tier leds = %d>%d near=%v count=%d", tier.FirstLed(), tier.LastLed(), tier.LowerLedNearAnchor, tier.LedCount)
	}
	if tier.LedControllerUI() != "0x0001" || tier.Channel != 2 {
		t.Errorf("tier controller = %q/%d", tier.LedControllerUI(), tier.Channel)
	}
	if zero := got.FindLocation("A9.B2.T2"); !zero.LedsSet() || zero.FirstLed() != 0 {
		t.Error("zero led range should survive as set")
	}
	if unset := got.FindLocation("A9.B2.T1"); unset.LedsSet() {
		t.Error("unset led range should stay unset")
	}
	if b2 := got.FindLocation("A9.B2"); b2.LedOffset != 3 || b2.CloneSource != "B1" {
		t.Errorf("B2 offset/clone = %d/%q", b2.LedOffset, b2.CloneSource)
	}

	slot := got.FindLocation("D-1")
	if slot == nil || slot.NominalLocationID() != "A9.B1.T1.S1" {
		t.Fatalf("alias D-1 resolved to %v", slot)
	}
	origSlot := orig.FindLocation("A9.B1.T1.S1")
	if len(slot.Vertices) != 4 || slot.Vertices[2].Point != origSlot.Vertices[2].Point {
		t.Errorf("slot vertices = %v, want %v", slot.VerticesUI(), origSlot.VerticesUI())
	}
	if slot.AbsoluteAnchor() != origSlot.AbsoluteAnchor() {
		t.Errorf("absolute anchor = %v, want %v", slot.AbsoluteAnchor(), origSlot.AbsoluteAnchor())
	}

	p := got.Path("P1")
	if p == nil || len(p.Segments()) != 2 {
		t.Fatal("path P1 not loaded with 2 segments")
	}
	if p.Segment(1).StartPosAlongPath != 10 {
		t.Errorf("segment 1 start = %v, want 10", p.Segment(1).StartPosAlongPath)
	}
	if aisle.PathSegment() != p.Segment(1) || len(p.Segment(1).Locations()) != 1 {
		t.Error("aisle segment association not restored")
	}
	if aisle.PosAlongPath == nil || *aisle.PosAlongPath != *orig.Aisle("A9").PosAlongPath {
		t.Error("aisle PosAlongPath not restored")
	}
}

func TestSQLiteRepository_SaveTwiceReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	f := populatedFacility(t)

	if err := repo.SaveFacility(ctx, f); err != nil {
		t.Fatal(err)
	}
	f.FindLocation("A9.B1.T1").SetLeds(5, 34)
	if err := repo.SaveFacility(ctx, f); err != nil {
		t.Fatalf("second SaveFacility: %v", err)
	}

	got, err := repo.LoadFacility(ctx, "F1")
	if err != nil {
		t.Fatal(err)
	}
	if tier := got.FindLocation("A9.B1.T1"); tier.FirstLed() != 5 {
		t.Errorf("first led = %d, want 5", tier.FirstLed())
	}
	if n := len(got.Aisle("A9").Descendants()); n != len(f.Aisle("A9").Descendants()) {
		t.Errorf("descendants = %d, want %d", n, len(f.Aisle("A9").Descendants()))
	}

	ids, err := repo.ListFacilities(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "F1" {
		t.Errorf("ListFacilities() = %v, %v", ids, err)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	if _, err := repo.LoadFacility(context.Background(), "nope"); !errors.Is(err, ErrFacilityNotFound) {
		t.Errorf("LoadFacility(nope) = %v, want ErrFacilityNotFound", err)
	}
}
