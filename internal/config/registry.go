package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "klfgate"
	configFile = "config.yaml"

	// ConfigDirEnvVar overrides the configuration directory
	ConfigDirEnvVar = "KLF_CONFIG_DIR"

	registryVersion = 1
)

// The process-wide registry is read once; klfctl and klf-bridge share it
// between commands and the connect helper.
var (
	shared     *Registry
	sharedErr  error
	sharedOnce sync.Once

	// saves to the same file never interleave
	saveMu sync.Mutex
)

// GetConfigDir returns the directory holding config.yaml:
//   - KLF_CONFIG_DIR when set
//   - Windows: %LOCALAPPDATA%\klfgate
//   - everywhere else: $XDG_CONFIG_HOME/klfgate or $HOME/.config/klfgate
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine config directory: LOCALAPPDATA and USERPROFILE are unset")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	// macOS uses $HOME/.config as well.
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path of the registry file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry returns the process-wide registry, reading it from the config
// directory on first use.
func LoadRegistry() (*Registry, error) {
	sharedOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			sharedErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		shared, sharedErr = LoadFile(path)
	})
	return shared, sharedErr
}

// LoadFile reads a registry from path. A missing file yields a new default
// registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewRegistry(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	reg := &Registry{}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if reg.Version != registryVersion {
		return nil, fmt.Errorf("unsupported config version %d in %s (expected %d)", reg.Version, path, registryVersion)
	}

	if reg.Gateways == nil {
		reg.Gateways = make(map[string]*Gateway)
	}
	if reg.Preferences == nil {
		reg.Preferences = defaultPreferences()
	}
	return reg, nil
}

// Save writes the registry to config.yaml in the config directory, creating
// the directory (0700) when needed.
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return r.SaveFile(path)
}

// SaveFile writes the registry to path atomically with mode 0600.
func (r *Registry) SaveFile(path string) error {
	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data := append([]byte(fileHeader(path)), body...)

	saveMu.Lock()
	defer saveMu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

func fileHeader(path string) string {
	return `# klfgate configuration file
# Gateways, pinned certificate fingerprints, node labels and preferences.
#
# Security Note: gateway passwords are NEVER stored in this file.
# They are read from KLF_PASSWORD or prompted when needed.
#
# Location: ` + path + `

`
}
