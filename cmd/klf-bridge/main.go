// Klf-bridge exposes a VELUX KLF 200 gateway over HTTP and WebSocket.
//
// It keeps one authenticated session to the gateway, serves a small JSON
// API for state, nodes, positions and scenes, streams every gateway
// notification to WebSocket clients and optionally publishes them to Redis.
// Prometheus metrics are served on /metrics.
//
// Usage:
//
//	klf-bridge serve [flags]
//
// See 'klf-bridge serve --help' for available options.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/bridge"
	"github.com/muurk/klfgate/internal/config"
	"github.com/muurk/klfgate/internal/connect"
	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/logging"
	"github.com/muurk/klfgate/internal/metrics"
	"github.com/muurk/klfgate/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "klf-bridge",
	Short: "KLF 200 HTTP/WebSocket bridge",
	Long: `A long-running bridge between a VELUX KLF 200 gateway and HTTP clients.

The bridge holds a single session to the gateway. The gateway accepts only a
few concurrent connections, so run one bridge per gateway and point other
tools at it.

Use 'klfctl' for one-off commands.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	configPath string
	host       string
	addr       string
	logLevel   string
	redisAddr  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the gateway and start the bridge",
	Long: `Connect to the gateway, enable the house status monitor and serve the
HTTP API until interrupted.

Settings are read from klfgate.yaml (or --config) and KLF_* environment
variables. The password is read from KLF_PASSWORD.

The bridge exits when the gateway connection is lost; run it under a
supervisor that restarts it.`,
	Example: `  # Serve on the default address :8080
  KLF_PASSWORD=secret klf-bridge serve --host 192.168.1.50

  # Publish notifications to Redis
  klf-bridge serve --redis localhost:6379

  # Debug logging with a settings file
  klf-bridge serve --config /etc/klfgate.yaml --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Settings file (default: klfgate.yaml in . or the config directory)")
	serveCmd.Flags().StringVar(&host, "host", "", "Gateway host name or IP address (skips discovery)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from settings, :8080)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&redisAddr, "redis", "", "Publish notifications to this Redis address")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return err
	}
	if host != "" {
		settings.Gateway.Host = host
	}
	if addr != "" {
		settings.Bridge.Addr = addr
	}
	if logLevel != "" {
		settings.Logging.Level = logLevel
	}
	if redisAddr != "" {
		settings.Redis.Enable = true
		settings.Redis.Addr = redisAddr
	}

	if err := logging.InitializeWithOptions(logging.Options{
		Level:      settings.Logging.Level,
		Format:     settings.Logging.Format,
		File:       settings.Logging.File.Filename,
		MaxSizeMB:  settings.Logging.File.MaxSizeMB,
		MaxBackups: settings.Logging.File.MaxBackups,
		MaxAgeDays: settings.Logging.File.MaxAgeDays,
		Compress:   settings.Logging.File.Compress,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	registry, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Config registry unavailable, pinning disabled", zap.Error(err))
		registry = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	conn, err := connect.Open(ctx, connect.Options{
		Settings:  settings,
		Registry:  registry,
		Metrics:   metrics.NewSessionMetrics(reg),
		Bus:       events.NewBus(),
		KeepAlive: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}
	defer func() {
		endCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := conn.Close(endCtx); err != nil {
			logging.Debug("Session end", zap.Error(err))
		}
	}()

	logging.Info("Connected to gateway",
		zap.String("host", conn.Host),
		zap.String("gateway", conn.Key),
		zap.String("version", version.Version),
	)

	if err := conn.Client.EnableHouseMonitor(ctx); err != nil {
		return fmt.Errorf("failed to enable house monitor: %w", err)
	}

	srv := bridge.New(bridge.Config{
		Addr:        settings.Bridge.Addr,
		MetricsPath: settings.Bridge.MetricsPath,
		ClientQueue: settings.Bridge.ClientQueue,
		Registry:    reg,
	}, conn.Client)

	if settings.Redis.Enable {
		pub := bridge.NewRedisPublisher(bridge.RedisOptions{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
			Channel:  settings.Redis.Channel,
		})
		defer pub.Close()
		if err := pub.Ping(ctx); err != nil {
			return err
		}
		go pub.Run(ctx)
		srv.SetPublisher(pub)
		logging.Info("Publishing notifications to Redis",
			zap.String("addr", settings.Redis.Addr),
			zap.String("channel", settings.Redis.Channel),
		)
	}

	// The bridge does not reconnect; a lost session ends the process.
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	lost := func(ev events.Event) {
		cause := ev.Err
		if cause == nil {
			cause = errors.New("gateway connection lost")
		}
		cancel(cause)
	}
	for _, topic := range []string{events.TopicError, events.TopicTimeout} {
		sub := conn.Session.On(topic, lost)
		defer conn.Session.Off(sub)
	}

	srv.Attach(conn.Session)
	if err := srv.Run(runCtx); err != nil {
		return err
	}

	if cause := context.Cause(runCtx); cause != nil && ctx.Err() == nil {
		return fmt.Errorf("gateway session ended: %w", cause)
	}
	logging.Info("Bridge stopped")
	return nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("klf-bridge " + version.Full())
	},
}
