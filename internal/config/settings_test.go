package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, t.TempDir())
	chdirTemp(t, t.TempDir())

	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.Gateway.Port != 51200 {
		t.Errorf("Gateway.Port = %v, want 51200", s.Gateway.Port)
	}
	if s.Gateway.RequestTimeout != 5*time.Second {
		t.Errorf("Gateway.RequestTimeout = %v, want 5s", s.Gateway.RequestTimeout)
	}
	if s.Gateway.KeepAlive != 10*time.Minute {
		t.Errorf("Gateway.KeepAlive = %v, want 10m", s.Gateway.KeepAlive)
	}
	if s.Bridge.Addr != ":8080" {
		t.Errorf("Bridge.Addr = %v, want :8080", s.Bridge.Addr)
	}
	if s.Redis.Enable {
		t.Error("Redis should be disabled by default")
	}
	if s.Logging.Level != "info" {
		t.Errorf("Logging.Level = %v, want info", s.Logging.Level)
	}
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klfgate.yaml")
	content := `gateway:
  host: 192.168.1.50
  requestTimeout: 8s
  insecure: true
bridge:
  addr: 127.0.0.1:9000
redis:
  enable: true
  channel: velux
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KLF_GATEWAY_PORT", "51300")
	t.Setenv("KLF_LOGGING_LEVEL", "debug")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.Gateway.Host != "192.168.1.50" {
		t.Errorf("Gateway.Host = %v", s.Gateway.Host)
	}
	if s.Gateway.RequestTimeout != 8*time.Second {
		t.Errorf("Gateway.RequestTimeout = %v, want 8s", s.Gateway.RequestTimeout)
	}
	if !s.Gateway.Insecure {
		t.Error("Gateway.Insecure should be true")
	}
	if s.Gateway.Port != 51300 {
		t.Errorf("Gateway.Port = %v, want env override 51300", s.Gateway.Port)
	}
	if s.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want env override debug", s.Logging.Level)
	}
	if s.Bridge.Addr != "127.0.0.1:9000" {
		t.Errorf("Bridge.Addr = %v", s.Bridge.Addr)
	}
	if !s.Redis.Enable || s.Redis.Channel != "velux" {
		t.Errorf("Redis = %+v", s.Redis)
	}
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadSettings() should fail when an explicit file is missing")
	}
}

// chdirTemp changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdirTemp(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}
