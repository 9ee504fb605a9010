// Package influxdb records Codeshelf import telemetry in InfluxDB v2.
//
// Two measurements are written:
//   - aisle_import: one point per import run, tagged by facility and
//     source, with row, created, updated, retained and warning counts and
//     the run duration;
//   - aisle_leds: one point per finalized aisle with its tier, slot and
//     LED totals.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteImport(influxdb.ImportStats{FacilityID: "F1", Source: "cli", Rows: 12})
//
// Writes are batched according to batch_size and flush_interval. A nil
// *Client is valid and drops every point, so telemetry can be disabled
// without branching at call sites.
package influxdb
