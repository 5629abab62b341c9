// Package api implements the read-only admin HTTP surface of the hub.
//
// Routes:
//
//	GET /api/v1/health          liveness plus sink health checks
//	GET /api/v1/devices         quick views of every device (?kind= filter)
//	GET /api/v1/devices/{name}  one device, case-insensitive name
//	GET /api/v1/journal         paginated device journal, when enabled
//	GET /metrics                Prometheus exposition, when enabled
//
// The API never changes device state; the console is the only writer.
// Handlers read through the device registry's locked Summaries view, so
// they are safe alongside console activity and running timers.
package api
