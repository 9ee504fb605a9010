package api

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// DBStatter reports connection pool statistics. *sql.DB satisfies it.
type DBStatter interface {
	Stats() sql.DBStats
}

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       RuntimeMetrics    `json:"runtime"`
	WebSocket     WSMetrics         `json:"websocket"`
	MQTT          MQTTMetrics       `json:"mqtt"`
	Facilities    []FacilityMetrics `json:"facilities"`
	Database      *DatabaseMetrics  `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// FacilityMetrics counts the contents of one facility.
type FacilityMetrics struct {
	Facility    string         `json:"facility"`
	Locations   map[string]int `json:"locations"`
	Inactive    int            `json:"inactive"`
	Unlit       int            `json:"unlit_slots"`
	Controllers int            `json:"controllers"`
	Paths       int            `json:"paths"`
	Aliases     int            `json:"aliases"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns runtime, connection and facility statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Facilities: []FacilityMetrics{},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{Connected: s.mqtt.IsConnected()}
	}

	ids, err := s.store.Facilities(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	for _, id := range ids {
		err := s.store.View(r.Context(), id, func(f *location.Facility) error {
			metrics.Facilities = append(metrics.Facilities, facilityMetrics(f))
			return nil
		})
		if err != nil {
			s.logger.Warn("facility metrics unavailable", "facility", id, "error", err)
		}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

func facilityMetrics(f *location.Facility) FacilityMetrics {
	m := FacilityMetrics{
		Facility:    f.DomainID,
		Locations:   make(map[string]int),
		Controllers: len(f.Controllers()),
		Paths:       len(f.Paths()),
		Aliases:     len(f.Aliases()),
	}
	for _, loc := range f.Descendants() {
		m.Locations[loc.Level.String()]++
		if !loc.Active {
			m.Inactive++
		}
		if loc.Level == location.LevelSlot && loc.FirstLed() <= 0 {
			m.Unlit++
		}
	}
	return m
}
