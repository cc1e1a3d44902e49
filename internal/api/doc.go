// Package api implements the HTTP API and WebSocket server for the
// appliance simulator.
//
// This package provides:
//   - GET /consumo and GET /consumo/{id} in the wire shape of the active mode
//   - A WebSocket hub that broadcasts every published snapshot
//   - Health, device catalogue and JSON metrics under /api/v1
//   - Prometheus exposition when metrics are enabled
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// Handlers never mutate simulation state. Each request reads one snapshot
// from a simulation.Provider, so every entry in a response comes from the
// same tick. The Hub is registered as an Updater listener and pushes the
// same per-device entries to subscribers of the consumo.snapshot channel.
//
// CORS allows any origin unless api.cors.allowed_origins narrows it.
package api
