package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codeshelf"

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ImportRecord is what one aisle import run reports to Prometheus.
type ImportRecord struct {
	Source       string
	Rows         int
	Created      map[string]int // by level name
	Updated      map[string]int // by level name
	WarningCodes []string
	Duration     time.Duration
	Failed       bool
}

// Import holds the aisle import collectors.
type Import struct {
	runs      *prometheus.CounterVec
	rows      prometheus.Counter
	warnings  *prometheus.CounterVec
	locations *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewImport creates the import collectors and registers them with reg.
//
// Parameters:
//   - reg: Registerer to attach the collectors to
//
// Returns:
//   - *Import: Collectors ready for Record
//   - error: If any collector is already registered
func NewImport(reg prometheus.Registerer) (*Import, error) {
	m := &Import{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Aisle import runs by source and outcome.",
		}, []string{"source", "outcome"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Aisle definition rows interpreted.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "warnings_total",
			Help:      "Import warnings by code.",
		}, []string{"code"}),
		locations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "locations_total",
			Help:      "Locations created or updated by imports.",
		}, []string{"level", "action"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Time to interpret, allocate and persist one import.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.rows, m.warnings, m.locations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Record adds one import run. A nil *Import records nothing.
func (m *Import) Record(r ImportRecord) {
	if m == nil {
		return
	}

	outcome := "ok"
	if r.Failed {
		outcome = "failed"
	}
	m.runs.WithLabelValues(r.Source, outcome).Inc()
	m.rows.Add(float64(r.Rows))
	for _, code := range r.WarningCodes {
		m.warnings.WithLabelValues(code).Inc()
	}
	for level, n := range r.Created {
		m.locations.WithLabelValues(level, "created").Add(float64(n))
	}
	for level, n := range r.Updated {
		m.locations.WithLabelValues(level, "updated").Add(float64(n))
	}
	m.duration.Observe(r.Duration.Seconds())
}
