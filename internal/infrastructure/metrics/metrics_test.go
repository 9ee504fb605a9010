package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestImport_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewImport(reg)
	if err != nil {
		t.Fatalf("NewImport() error = %v", err)
	}

	m.Record(ImportRecord{
		Source:       "cli",
		Rows:         7,
		Created:      map[string]int{"Aisle": 1, "Bay": 2},
		Updated:      map[string]int{"Tier": 3},
		WarningCodes: []string{"CLONE_SOURCE_UNRESOLVED", "CLONE_SOURCE_UNRESOLVED", "DEFAULT_APPLIED"},
		Duration:     20 * time.Millisecond,
	})
	m.Record(ImportRecord{Source: "cli", Rows: 1, Failed: true})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"rows", testutil.ToFloat64(m.rows), 8},
		{"ok runs", testutil.ToFloat64(m.runs.WithLabelValues("cli", "ok")), 1},
		{"failed runs", testutil.ToFloat64(m.runs.WithLabelValues("cli", "failed")), 1},
		{"clone warnings", testutil.ToFloat64(m.warnings.WithLabelValues("CLONE_SOURCE_UNRESOLVED")), 2},
		{"bays created", testutil.ToFloat64(m.locations.WithLabelValues("Bay", "created")), 2},
		{"tiers updated", testutil.ToFloat64(m.locations.WithLabelValues("Tier", "updated")), 3},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewImport_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewImport(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewImport(reg); err == nil {
		t.Error("second NewImport() on the same registry should fail")
	}
}

func TestImport_NilRecord(t *testing.T) {
	var m *Import
	m.Record(ImportRecord{Rows: 1})
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m, err := NewImport(reg)
	if err != nil {
		t.Fatal(err)
	}
	m.Record(ImportRecord{Source: "api", Rows: 2})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"codeshelf_import_rows_total 2", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
