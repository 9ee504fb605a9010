package aisleimport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

type fakePublisher struct {
	aisles      []lighting.AisleMap
	controllers []lighting.ControllerMap
	err         error
}

func (p *fakePublisher) PublishAisleMap(m lighting.AisleMap) error {
	p.aisles = append(p.aisles, m)
	return p.err
}

func (p *fakePublisher) PublishControllerMap(m lighting.ControllerMap) error {
	p.controllers = append(p.controllers, m)
	return p.err
}

type fakeRecorder struct {
	results  []*ImportResult
	aisles   int
	failures []error
}

func (r *fakeRecorder) RecordImportFailure(_ context.Context, _, _ string, err error) {
	r.failures = append(r.failures, err)
}

func (r *fakeRecorder) RecordImport(_ context.Context, res *ImportResult, aisles []lighting.AisleMap) {
	r.results = append(r.results, res)
	r.aisles += len(aisles)
}

func TestService_ImportCSV(t *testing.T) {
	store := location.NewStore(nil, "NET")
	svc := NewService(store, Limits{})
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	var notified []string
	svc.SetPublisher(pub)
	svc.AddRecorder(rec)
	svc.OnImport(func(res *ImportResult) { notified = append(notified, res.ImportID) })

	ctx := context.Background()
	res, err := svc.ImportCSV(ctx, "F1", "aisles.csv", strings.NewReader(header+singleBayAisle))
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	if res.Source != "aisles.csv" || res.Facility != "F1" || !strings.HasPrefix(res.ImportID, "imp_") {
		t.Errorf("result header = %q %q %q", res.Source, res.Facility, res.ImportID)
	}
	if len(res.Controllers) != 1 {
		t.Fatalf("Controllers = %v, want one placeholder", res.Controllers)
	}
	if len(pub.aisles) != 1 || pub.aisles[0].Aisle != "A1" || pub.aisles[0].TotalLeds != 20 {
		t.Errorf("published aisles = %+v", pub.aisles)
	}
	if len(pub.controllers) != 0 {
		t.Errorf("unassigned placeholder published: %+v", pub.controllers)
	}
	if len(rec.results) != 1 || rec.aisles != 1 {
		t.Errorf("recorder saw %d results, %d aisles", len(rec.results), rec.aisles)
	}
	if len(notified) != 1 || notified[0] != res.ImportID {
		t.Errorf("listeners saw %v", notified)
	}

	placeholder := res.Controllers[0]
	err = store.Update(ctx, "F1", func(f *location.Facility) error {
		return f.SetControllerChannel(f.FindLocation("A1"), placeholder, 1, "")
	})
	if err != nil {
		t.Fatalf("SetControllerChannel() error = %v", err)
	}

	// Re-import reuses the placeholder and now publishes its map.
	res, err = svc.ImportCSV(ctx, "F1", "aisles.csv", strings.NewReader(header+singleBayAisle))
	if err != nil {
		t.Fatalf("second ImportCSV() error = %v", err)
	}
	if len(res.Controllers) != 0 || res.TotalCreated() != 0 {
		t.Errorf("second import created %v, controllers %v", res.Created, res.Controllers)
	}
	if len(pub.controllers) != 1 || pub.controllers[0].Controller != placeholder || len(pub.controllers[0].Tiers) != 1 {
		t.Errorf("published controllers = %+v", pub.controllers)
	}
	if len(notified) != 2 {
		t.Errorf("listeners called %d times, want 2", len(notified))
	}
}

func TestService_PublishFailureDoesNotFailImport(t *testing.T) {
	svc := NewService(location.NewStore(nil, "NET"), DefaultLimits())
	svc.SetLogger(nil)
	svc.SetPublisher(&fakePublisher{err: errors.New("broker down")})

	res, err := svc.ImportCSV(context.Background(), "F1", "", strings.NewReader(header+singleBayAisle))
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if len(res.Aisles) != 1 {
		t.Errorf("Aisles = %v", res.Aisles)
	}
}

func TestService_ImportCSVErrors(t *testing.T) {
	svc := NewService(location.NewStore(nil, "NET"), DefaultLimits())
	rec := &fakeRecorder{}
	svc.AddRecorder(rec)

	if _, err := svc.ImportCSV(context.Background(), "F1", "", strings.NewReader("")); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("empty input error = %v, want ErrMissingHeader", err)
	}

	big := bytes.Repeat([]byte("x"), MaxImportSize+1)
	if _, err := svc.ImportCSV(context.Background(), "F1", "", bytes.NewReader(big)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized input error = %v, want ErrFileTooLarge", err)
	}

	if len(rec.failures) != 2 || len(rec.results) != 0 {
		t.Errorf("recorder saw %d failures and %d results, want 2 and 0", len(rec.failures), len(rec.results))
	}
}

func TestService_ImportRowsKeepsPartialStructure(t *testing.T) {
	store := location.NewStore(nil, "NET")
	svc := NewService(store, DefaultLimits())

	rows := []Row{
		{BinType: "Aisle", NominalDomainID: "A1", AnchorX: "0", AnchorY: "0", DepthCm: "100"},
		{BinType: "Bay", NominalDomainID: "B1", LengthCm: "100"},
		{BinType: "Tier", NominalDomainID: "T1", SlotsInTier: "2", LedCountInTier: "10"},
		{BinType: "Tier", NominalDomainID: "T3", SlotsInTier: "2", LedCountInTier: "10"},
	}
	res, err := svc.ImportRows(context.Background(), "F1", "rows", rows)
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}
	if len(res.Failed) != 1 || res.Warnings[0].Row != 4 {
		t.Errorf("Failed = %v, warnings = %+v", res.Failed, res.Warnings)
	}

	err = store.View(context.Background(), "F1", func(f *location.Facility) error {
		if f.FindLocation("A1.B1.T1.S2") == nil {
			return errors.New("rows before the error were not kept")
		}
		return nil
	})
	if err != nil {
		t.Error(err)
	}
}
