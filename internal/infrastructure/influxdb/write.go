package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementImport    = "aisle_import"
	measurementAisleLeds = "aisle_leds"
)

// ImportStats summarises one aisle import run.
type ImportStats struct {
	FacilityID string
	Source     string // "cli", "api" or "mqtt"
	Rows       int
	Created    int
	Updated    int
	Retained   int
	Warnings   int
	Aisles     int
	Duration   time.Duration
}

// AisleLeds summarises the LED layout of one finalized aisle.
type AisleLeds struct {
	FacilityID string
	AisleID    string
	Pattern    string
	Tiers      int
	Slots      int
	Leds       int
}

// WriteImport records an aisle_import point. Non-blocking; a nil or
// disconnected client drops the point.
func (c *Client) WriteImport(s ImportStats) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(importPoint(s, time.Now()))
}

// WriteAisleLeds records an aisle_leds point.
func (c *Client) WriteAisleLeds(a AisleLeds) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(aisleLedsPoint(a, time.Now()))
}

func importPoint(s ImportStats, at time.Time) *write.Point {
	return write.NewPoint(
		measurementImport,
		map[string]string{
			"facility": s.FacilityID,
			"source":   s.Source,
		},
		map[string]interface{}{
			"rows":        s.Rows,
			"created":     s.Created,
			"updated":     s.Updated,
			"retained":    s.Retained,
			"warnings":    s.Warnings,
			"aisles":      s.Aisles,
			"duration_ms": float64(s.Duration.Microseconds()) / 1000,
		},
		at,
	)
}

func aisleLedsPoint(a AisleLeds, at time.Time) *write.Point {
	return write.NewPoint(
		measurementAisleLeds,
		map[string]string{
			"facility": a.FacilityID,
			"aisle":    a.AisleID,
			"pattern":  a.Pattern,
		},
		map[string]interface{}{
			"tiers": a.Tiers,
			"slots": a.Slots,
			"leds":  a.Leds,
		},
		at,
	)
}
