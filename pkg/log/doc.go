// Package log provides structured protocol logging for fritzlink.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events: descriptor fetches, SOAP exchanges and call-monitor
// socket activity. It is separate from operational logging (slog) - protocol
// capture provides a machine-readable event trace for debugging device
// firmware quirks.
//
// # Basic Usage
//
// Components take a Logger in their Config; leaving it nil disables
// capture:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/fritzlink/box.flog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with .flog extension.
package log
