// Package config provides user configuration management for klfgate.
//
// Two kinds of configuration live here. The registry is a YAML file the
// tools write: gateway nicknames, last known hosts, pinned certificate
// fingerprints, node labels and preferences. Settings are read-only runtime
// options (gateway address, timeouts, logging, bridge and Redis) loaded with
// viper from klfgate.yaml and KLF_* environment variables.
//
// # Configuration File Location
//
// The registry is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/klfgate/config.yaml or $HOME/.config/klfgate/config.yaml
//   - macOS: $HOME/.config/klfgate/config.yaml
//   - Windows: %LOCALAPPDATA%\klfgate\config.yaml
//
// KLF_CONFIG_DIR overrides the directory.
//
// # Security
//
// IMPORTANT: This package NEVER stores the gateway password. It is read from
// KLF_PASSWORD or prompted when needed.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.UpdateLastSeen("1A2B", "192.168.1.50")
//	registry.PinFingerprint("1A2B", fp)
//	registry.SetNodeLabel("1A2B", 0, "Bedroom skylight", "Bedroom", "window")
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
