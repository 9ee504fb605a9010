package main

import (
	"context"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/influxdb"
	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/metrics"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
)

// telemetry reports import runs to Prometheus and InfluxDB. Either sink
// may be nil.
type telemetry struct {
	metrics *metrics.Import
	influx  *influxdb.Client
}

// RecordImport implements aisleimport.Recorder.
func (t *telemetry) RecordImport(_ context.Context, res *aisleimport.ImportResult, aisles []lighting.AisleMap) {
	t.metrics.Record(metrics.ImportRecord{
		Source:       res.Source,
		Rows:         res.Rows,
		Created:      res.Created,
		Updated:      res.Updated,
		WarningCodes: res.WarningCodes(),
		Duration:     res.Duration,
	})

	t.influx.WriteImport(influxdb.ImportStats{
		FacilityID: res.Facility,
		Source:     res.Source,
		Rows:       res.Rows,
		Created:    res.TotalCreated(),
		Updated:    res.TotalUpdated(),
		Retained:   len(res.Retained),
		Warnings:   len(res.Warnings),
		Aisles:     len(res.Aisles),
		Duration:   res.Duration,
	})
	for _, m := range aisles {
		t.influx.WriteAisleLeds(influxdb.AisleLeds{
			FacilityID: m.Facility,
			AisleID:    m.Aisle,
			Pattern:    m.Pattern,
			Tiers:      len(m.Tiers),
			Slots:      m.SlotCount,
			Leds:       m.TotalLeds,
		})
	}
}

// RecordImportFailure implements aisleimport.FailureRecorder.
func (t *telemetry) RecordImportFailure(_ context.Context, _, source string, _ error) {
	t.metrics.Record(metrics.ImportRecord{Source: source, Failed: true})
}
