// Package logging provides structured logging for klfgate.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used across the CLI, the session layer and the bridge.
//
// # Log Levels
//
//   - Debug: frame hex dumps, websocket traffic, keepalives
//   - Info: connections, logins, HTTP requests
//   - Warn: damaged frames, dropped packets, reconnect hints
//   - Error: transport failures, startup errors
//
// # Structured Logging
//
//	logging.Info("Gateway connected",
//	    zap.String("host", "192.168.1.50"),
//	    zap.Int("port", 51200),
//	)
//
// Components take a named child logger:
//
//	log := logging.Named("session")
//
// # Configuration
//
// CLI commands stay silent unless KLF_LOG_LEVEL or --log-level is set:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The bridge writes JSON to stdout and a rotating file:
//
//	logging.InitializeWithOptions(logging.Options{
//	    Level:  "info",
//	    Format: "json",
//	    File:   "/var/log/klf-bridge.log",
//	    MaxSizeMB: 50,
//	})
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
