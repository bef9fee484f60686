package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: gateway.host is KLF_GATEWAY_HOST.
const EnvPrefix = "KLF"

// GatewaySettings describes how to reach and talk to the gateway.
type GatewaySettings struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	CAFile         string        `mapstructure:"caFile"`
	Fingerprint    string        `mapstructure:"fingerprint"`
	Insecure       bool          `mapstructure:"insecure"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	KeepAlive      time.Duration `mapstructure:"keepAlive"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	RateLimit      float64       `mapstructure:"rateLimit"`
	RateBurst      int           `mapstructure:"rateBurst"`
}

// LumberjackSettings configures log file rotation.
type LumberjackSettings struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingSettings configures level and output.
type LoggingSettings struct {
	Level  string             `mapstructure:"level"`
	Format string             `mapstructure:"format"`
	File   LumberjackSettings `mapstructure:"file"`
}

// BridgeSettings configures the HTTP/WebSocket bridge.
type BridgeSettings struct {
	Addr        string `mapstructure:"addr"`
	MetricsPath string `mapstructure:"metricsPath"`
	ClientQueue int    `mapstructure:"clientQueue"`
}

// RedisSettings configures notification publishing to Redis.
type RedisSettings struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Settings is the runtime configuration of klfctl and klf-bridge.
type Settings struct {
	Gateway GatewaySettings `mapstructure:"gateway"`
	Logging LoggingSettings `mapstructure:"logging"`
	Bridge  BridgeSettings  `mapstructure:"bridge"`
	Redis   RedisSettings   `mapstructure:"redis"`
}

// LoadSettings reads settings from a YAML/TOML/JSON file and KLF_*
// environment variables. With an empty path, klfgate.yaml is searched in the
// working directory and the config directory; a missing file is not an
// error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if dir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("klfgate")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.host", "")
	v.SetDefault("gateway.port", 51200)
	v.SetDefault("gateway.caFile", "")
	v.SetDefault("gateway.fingerprint", "")
	v.SetDefault("gateway.insecure", false)
	v.SetDefault("gateway.requestTimeout", "5s")
	v.SetDefault("gateway.keepAlive", "10m")
	v.SetDefault("gateway.idleTimeout", "0s")
	v.SetDefault("gateway.rateLimit", 0)
	v.SetDefault("gateway.rateBurst", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 50)
	v.SetDefault("logging.file.maxBackups", 5)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("bridge.addr", ":8080")
	v.SetDefault("bridge.metricsPath", "/metrics")
	v.SetDefault("bridge.clientQueue", 64)

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "klfgate:notifications")
}
