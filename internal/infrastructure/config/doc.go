// Package config handles loading and validating the appliance simulator configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (including the platform PORT)
//   - Validation of required fields
//   - Default value handling
//
// The simulator runs without any file at all: Load("") yields the defaults,
// which serve the on/off simulation on port 3000 with every exporter disabled.
//
// Security Considerations:
//   - Broker passwords and tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Simulation.Mode)
package config
