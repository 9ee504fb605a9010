// Package logging provides structured logging for Codeshelf.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same default fields (service, version).
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
//	logger := logging.New(cfg.Logging, version)
//	interp := aisleimport.NewInterpreter(facility, opts)
//	interp.SetLogger(logger.Component("aisleimport"))
//
// Never log secrets, tokens or API keys.
package logging
