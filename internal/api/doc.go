// Package api implements the HTTP REST API and WebSocket server for Codeshelf.
//
// This package provides:
//   - Read endpoints for facilities, aisles, locations and their LED ranges
//   - Aisle file imports (multipart, raw CSV or JSON rows)
//   - Editing of LED controllers, indicator LEDs, endcap layouts, offsets,
//     aliases and pick paths
//   - A WebSocket hub broadcasting "aisles.imported" and "location.updated"
//   - Bearer token authentication for mutating routes
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// Handlers never hold facility pointers beyond a location.Store callback.
// LED maps affected by a change are built inside the callback and
// published to controllers over MQTT after it returns.
//
// # Security
//
// Tokens are HS256 JWTs issued by POST /auth/token in exchange for a
// configured API key. Reads and the event stream are unauthenticated. With
// no JWT secret configured, authentication is disabled and a warning is
// logged at start.
//
// # Graceful Degradation
//
// The server operates without MQTT. Reads, imports and edits work; LED maps
// are simply not delivered.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// All methods are safe for concurrent use from multiple goroutines.
package api
