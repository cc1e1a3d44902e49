// Package logging provides structured logging for the appliance simulator.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same handler, level and default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting simulator", "mode", cfg.Simulation.Mode)
//	logger.Error("exporter failed", "error", err)
//
// Never log broker passwords or API tokens.
package logging
