// Klfctl controls a VELUX KLF 200 gateway over its TLS API.
//
// It discovers gateways on the local network, reads gateway and node
// state, moves actuators, runs scenes and follows notifications live.
//
// Usage:
//
//	klfctl [command] [flags]
//
// The password is read from KLF_PASSWORD or prompted; it is never stored.
// See 'klfctl --help' for available commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/klfgate/internal/config"
	"github.com/muurk/klfgate/internal/connect"
	"github.com/muurk/klfgate/internal/logging"
	"github.com/muurk/klfgate/internal/session"
	"github.com/muurk/klfgate/internal/transport"
	"github.com/muurk/klfgate/internal/ui"
	"github.com/muurk/klfgate/internal/version"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	configPath   string
	hostFlag     string
	portFlag     int
	caFlag       string
	fingerprint  string
	insecureFlag bool
	timeoutFlag  time.Duration
	outputFormat string
	logLevel     string
)

// Loaded in PersistentPreRunE
var (
	settings *config.Settings
	registry *config.Registry

	// currentPassword is set by commands that need the password themselves.
	currentPassword string
)

var rootCmd = &cobra.Command{
	Use:   "klfctl",
	Short: "VELUX KLF 200 gateway control",
	Long: `Control a VELUX KLF 200 gateway from the command line.

The gateway is found with mDNS unless --host is given or a default gateway
is stored in the configuration registry. Its certificate fingerprint is
pinned on first use.

The gateway password is read from KLF_PASSWORD or prompted.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Settings file (default: klfgate.yaml in . or the config directory)")
	f.StringVar(&hostFlag, "host", "", "Gateway host name or IP address (skips discovery)")
	f.IntVar(&portFlag, "port", 51200, "Gateway API port")
	f.StringVar(&caFlag, "ca", "", "CA certificate that signed the gateway certificate")
	f.StringVar(&fingerprint, "fingerprint", "", "Expected SHA-256 certificate fingerprint")
	f.BoolVar(&insecureFlag, "insecure", false, "Skip gateway certificate verification")
	f.DurationVar(&timeoutFlag, "timeout", 5*time.Second, "Confirmation timeout per request")
	f.StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
	f.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads settings, applies explicit flags on top and loads the
// registry.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	settings, err = config.LoadSettings(configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("host") {
		settings.Gateway.Host = hostFlag
	}
	if f.Changed("port") {
		settings.Gateway.Port = portFlag
	}
	if f.Changed("ca") {
		settings.Gateway.CAFile = caFlag
	}
	if f.Changed("fingerprint") {
		fp, err := transport.NormalizeFingerprint(fingerprint)
		if err != nil {
			return err
		}
		settings.Gateway.Fingerprint = fp
	}
	if f.Changed("insecure") {
		settings.Gateway.Insecure = insecureFlag
	}
	if f.Changed("timeout") {
		settings.Gateway.RequestTimeout = timeoutFlag
	}
	if f.Changed("log-level") {
		settings.Logging.Level = logLevel
	}
	if outputFormat != "detailed" && outputFormat != "json" {
		return fmt.Errorf("unknown --format %q (use detailed or json)", outputFormat)
	}

	// CLI output stays clean unless a level is asked for explicitly.
	if err := logging.InitializeWithOptions(logging.Options{
		Level:      explicitLevel(cmd),
		Format:     settings.Logging.Format,
		File:       settings.Logging.File.Filename,
		MaxSizeMB:  settings.Logging.File.MaxSizeMB,
		MaxBackups: settings.Logging.File.MaxBackups,
		MaxAgeDays: settings.Logging.File.MaxAgeDays,
		Compress:   settings.Logging.File.Compress,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	registry, err = config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config registry: %w", err)
	}
	return nil
}

func explicitLevel(cmd *cobra.Command) string {
	if cmd.Flags().Changed("log-level") {
		return logLevel
	}
	return os.Getenv(logging.LogLevelEnvVar)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if outputFormat == "json" {
			_ = printJSON(cmd, version.Get())
			return
		}
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "klfctl %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}

// shownError marks an error already rendered in a failure box.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// fail renders err and returns it marked as shown.
func fail(cmd *cobra.Command, title string, err error) error {
	if outputFormat == "json" {
		body := map[string]string{"error": err.Error()}
		var se *session.Error
		if errors.As(err, &se) {
			body["kind"] = se.Kind.String()
		}
		_ = printJSON(cmd, body)
		return &shownError{err}
	}

	var tips []string
	var se *session.Error
	if errors.As(err, &se) {
		tips = ui.TroubleshootingFromHint(session.Hint(err))
	}
	p := ui.NewPrinter(cmd.ErrOrStderr())
	p.PrintError(title, err, tips)
	return &shownError{err}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// withGateway opens an authenticated session, runs fn and ends the session.
// Interrupts cancel ctx.
func withGateway(cmd *cobra.Command, title string, keepAlive bool, fn func(ctx context.Context, c *connect.Conn) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := connect.Open(ctx, connect.Options{
		Settings:  settings,
		Registry:  registry,
		Password:  currentPassword,
		KeepAlive: keepAlive,
		Prompt:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return fail(cmd, "Connection failed", err)
	}
	defer func() {
		endCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.Close(endCtx)
	}()

	if err := fn(ctx, c); err != nil {
		return fail(cmd, title, err)
	}
	return nil
}

func detailed() bool { return outputFormat != "json" }
