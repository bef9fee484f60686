// Package connect opens authenticated gateway sessions for the command
// line tools: it resolves the gateway address, builds the TLS trust from
// settings and the config registry, logs in and pins the certificate on
// first use.
package connect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/muurk/klfgate/internal/config"
	"github.com/muurk/klfgate/internal/discovery"
	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/gateway"
	"github.com/muurk/klfgate/internal/logging"
	"github.com/muurk/klfgate/internal/session"
	"github.com/muurk/klfgate/internal/transport"
)

// PasswordEnvVar holds the gateway password for non-interactive use.
const PasswordEnvVar = "KLF_PASSWORD"

// ErrNoGateway is returned when no host is configured and discovery finds
// nothing.
var ErrNoGateway = errors.New("no gateway found; pass --host or run 'klfctl scan'")

// Options configures Open.
type Options struct {
	Settings *config.Settings
	Registry *config.Registry // nil disables pinning and last-seen updates
	Password string           // empty reads KLF_PASSWORD or prompts
	Metrics  session.Metrics
	Bus      *events.Bus

	// KeepAlive enables the settings keepalive interval. Short CLI
	// commands leave it off.
	KeepAlive bool

	// Prompt is where the password prompt is written; nil means stderr.
	Prompt io.Writer
}

// Conn is an authenticated session.
type Conn struct {
	Session     *session.Session
	Client      *gateway.Client
	Host        string
	Key         string // registry key of the gateway
	Fingerprint string // certificate fingerprint seen during the handshake
}

// Close ends the session.
func (c *Conn) Close(ctx context.Context) error {
	return c.Session.End(ctx)
}

// Open connects and logs in.
func Open(ctx context.Context, opts Options) (*Conn, error) {
	s := opts.Settings
	if s == nil {
		return nil, errors.New("connect: settings are required")
	}

	host, key, err := ResolveHost(ctx, s, opts.Registry)
	if err != nil {
		return nil, err
	}

	pinned := s.Gateway.Fingerprint
	if pinned == "" && opts.Registry != nil {
		if gw := opts.Registry.GetGateway(key); gw != nil {
			pinned = gw.Fingerprint
		}
	}

	var seen string
	dialer, err := transport.NewTLSDialer(transport.TLSOptions{
		CAFile:        s.Gateway.CAFile,
		Fingerprint:   pinned,
		Insecure:      s.Gateway.Insecure,
		OnFingerprint: func(fp string) { seen = fp },
	})
	if err != nil {
		return nil, err
	}

	sopts := []session.Option{
		session.WithDialer(dialer),
		session.WithPort(s.Gateway.Port),
		session.WithRequestTimeout(s.Gateway.RequestTimeout),
		session.WithIdleTimeout(s.Gateway.IdleTimeout),
		session.WithLogger(logging.Named("session")),
		session.WithMetrics(opts.Metrics),
	}
	if s.Gateway.RateLimit > 0 {
		burst := s.Gateway.RateBurst
		if burst < 1 {
			burst = 1
		}
		sopts = append(sopts, session.WithRateLimit(rate.Limit(s.Gateway.RateLimit), burst))
	}
	if opts.KeepAlive && s.Gateway.KeepAlive > 0 {
		sopts = append(sopts, session.WithKeepAlive(s.Gateway.KeepAlive))
	}
	if opts.Bus != nil {
		sopts = append(sopts, session.WithBus(opts.Bus))
	}

	sess := session.New(sopts...)
	if err := sess.Connect(ctx, host); err != nil {
		return nil, err
	}

	password := opts.Password
	if password == "" {
		password, err = Password(opts.Prompt)
		if err != nil {
			_ = sess.End(ctx)
			return nil, err
		}
	}
	if err := sess.Login(ctx, password); err != nil {
		_ = sess.End(ctx)
		return nil, err
	}

	c := &Conn{
		Session:     sess,
		Client:      gateway.New(sess),
		Host:        host,
		Key:         key,
		Fingerprint: seen,
	}
	remember(opts.Registry, c, pinned)
	return c, nil
}

// remember records the gateway in the registry and pins its certificate
// when trust on first use is enabled.
func remember(reg *config.Registry, c *Conn, pinned string) {
	if reg == nil {
		return
	}
	reg.UpdateLastSeen(c.Key, c.Host)
	if pinned == "" && c.Fingerprint != "" && reg.Preferences != nil && reg.Preferences.TrustOnFirstUse {
		reg.PinFingerprint(c.Key, c.Fingerprint)
		logging.Info("Pinned gateway certificate",
			zap.String("gateway", c.Key),
			zap.String("fingerprint", c.Fingerprint),
		)
	}
	if reg.Default == "" {
		reg.Default = c.Key
	}
	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save config registry", zap.Error(err))
	}
}

// ResolveHost picks the gateway to talk to: the configured host, then the
// registry default, then mDNS discovery when exactly one gateway answers.
// key is the registry key for the gateway.
func ResolveHost(ctx context.Context, s *config.Settings, reg *config.Registry) (host, key string, err error) {
	if s.Gateway.Host != "" {
		host = s.Gateway.Host
		key = host
		if reg != nil {
			if k, _ := reg.FindByHost(host); k != "" {
				key = k
			}
		}
		return host, key, nil
	}

	if reg != nil && reg.Default != "" {
		if gw := reg.GetGateway(reg.Default); gw != nil && gw.Host != "" {
			return gw.Host, reg.Default, nil
		}
	}

	if reg != nil && reg.Preferences != nil && !reg.Preferences.AutoDiscover {
		return "", "", ErrNoGateway
	}

	timeout := discovery.DefaultScanTimeout
	if reg != nil && reg.Preferences != nil && reg.Preferences.DiscoverTimeout > 0 {
		timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
	}
	devices, err := discovery.ScanForDevices(ctx, timeout)
	if err != nil {
		return "", "", fmt.Errorf("discovery failed: %w", err)
	}
	switch len(devices) {
	case 0:
		return "", "", ErrNoGateway
	case 1:
		return devices[0].IP, devices[0].Serial, nil
	default:
		var names []string
		for _, d := range devices {
			names = append(names, d.Serial+" ("+d.IP+")")
		}
		return "", "", fmt.Errorf("multiple gateways found: %s; pass --host", strings.Join(names, ", "))
	}
}

// Password returns KLF_PASSWORD, or prompts on the terminal without echo.
func Password(prompt io.Writer) (string, error) {
	if p := os.Getenv(PasswordEnvVar); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password: set %s or run interactively", PasswordEnvVar)
	}
	if prompt == nil {
		prompt = os.Stderr
	}
	_, _ = fmt.Fprint(prompt, "Gateway password: ")
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
