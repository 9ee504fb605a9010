package location

import (
	"context"
	"errors"
	"sync"
	"testing"
)

var errBoom = errors.New("boom")

func TestStore_UpdateCreatesAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	store := NewStore(repo, "NET")
	store.SetLogger(noopLogger{})

	err := store.Update(ctx, "F1", func(f *Facility) error {
		_, _, err := f.EnsureChild("A1")
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A fresh store sees the persisted facility.
	fresh := NewStore(repo, "NET")
	err = fresh.View(ctx, "F1", func(f *Facility) error {
		if f.Network != "NET" {
			t.Errorf("network = %q", f.Network)
		}
		if f.Aisle("A1") == nil {
			t.Error("aisle A1 not persisted")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestStore_FailedUpdateDiscarded(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewSQLiteRepository(setupTestDB(t)), "")

	if err := store.Update(ctx, "F1", func(f *Facility) error {
		_, _, err := f.EnsureChild("A1")
		return err
	}); err != nil {
		t.Fatal(err)
	}

	err := store.Update(ctx, "F1", func(f *Facility) error {
		f.EnsureChild("A2") //nolint:errcheck // test mutation before failure
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Update() = %v, want errBoom", err)
	}

	_ = store.View(ctx, "F1", func(f *Facility) error {
		if f.Aisle("A2") != nil {
			t.Error("mutation from failed update should be discarded")
		}
		if f.Aisle("A1") == nil {
			t.Error("persisted aisle missing")
		}
		return nil
	})
}

func TestStore_MemoryFailedUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, "")

	err := store.Update(ctx, "F1", func(f *Facility) error {
		f.EnsureChild("A1") //nolint:errcheck // test mutation before failure
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Update() = %v, want errBoom", err)
	}
	if err := store.View(ctx, "F1", func(*Facility) error { return nil }); !errors.Is(err, ErrFacilityNotFound) {
		t.Errorf("View() after failed create = %v, want ErrFacilityNotFound", err)
	}
	if ids, err := store.Facilities(ctx); err != nil || len(ids) != 0 {
		t.Errorf("Facilities() = %v, %v; want none", ids, err)
	}

	// An existing facility stays available after a failed update.
	if err := store.Update(ctx, "F1", func(f *Facility) error {
		_, _, err := f.EnsureChild("A1")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, "F1", func(*Facility) error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("Update() = %v, want errBoom", err)
	}
	err = store.View(ctx, "F1", func(f *Facility) error {
		if f.Aisle("A1") == nil {
			t.Error("aisle A1 lost after failed update")
		}
		return nil
	})
	if err != nil {
		t.Errorf("View() = %v", err)
	}
}

func TestStore_ViewMissing(t *testing.T) {
	store := NewStore(nil, "")
	err := store.View(context.Background(), "F9", func(*Facility) error { return nil })
	if !errors.Is(err, ErrFacilityNotFound) {
		t.Errorf("View(missing) = %v, want ErrFacilityNotFound", err)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, "")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Update(ctx, "F1", func(f *Facility) error {
				_, _, err := f.EnsureChild(OrdinalName(LevelAisle, n))
				return err
			})
		}(i)
	}
	wg.Wait()

	ids, err := store.Facilities(ctx)
	if err != nil || len(ids) != 1 {
		t.Fatalf("Facilities() = %v, %v", ids, err)
	}
	_ = store.View(ctx, "F1", func(f *Facility) error {
		if n := len(f.Aisles()); n != 20 {
			t.Errorf("aisles = %d, want 20", n)
		}
		return nil
	})
}
