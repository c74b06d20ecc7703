// Package log provides structured protocol logging for the multiworld
// client.
//
// This package defines the Logger interface and Event types for
// capturing protocol-level events at the transport, wire, and protocol
// layers. It is separate from operational logging (slog) - protocol
// capture provides a machine-readable event trace for debugging a
// session after the fact.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("session.aplog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a CBOR event stream with .aplog extension. The
// multiworld-log CLI tool renders and exports them.
package log
