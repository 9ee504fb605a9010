// Package config loads and validates Codeshelf configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with CODESHELF_* environment variables
//   - Validation of required fields and import limits
//   - Default value handling
//
// Security Considerations:
//   - Broker passwords, InfluxDB tokens and the JWT secret should be set via
//     environment variables rather than committed config files
//   - An empty JWT secret disables bearer auth on mutating API routes
//
// Usage:
//
//	cfg, err := config.Load("configs/codeshelf.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Facility.ID)
package config
