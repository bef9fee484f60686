// Package transport opens the TLS connection to a KLF gateway.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/logging"
)

// DefaultTimeout bounds the TCP connect plus TLS handshake.
const DefaultTimeout = 10 * time.Second

// Dialer opens a byte stream to a gateway. addr is "host:port".
type Dialer interface {
	Dial(ctx context.Context, addr string) (net.Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, addr string) (net.Conn, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, addr string) (net.Conn, error) {
	return f(ctx, addr)
}

// TLSDialer connects over TCP and performs the TLS handshake.
type TLSDialer struct {
	Config  *tls.Config
	Timeout time.Duration
}

// NewTLSDialer returns a dialer using a configuration built from opts.
func NewTLSDialer(opts TLSOptions) (*TLSDialer, error) {
	cfg, err := NewTLSConfig(opts)
	if err != nil {
		return nil, err
	}
	return &TLSDialer{Config: cfg, Timeout: DefaultTimeout}, nil
}

// Dial implements Dialer.
func (d *TLSDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var nd net.Dialer
	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if tcp, ok := raw.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	logging.LogConnection(addr, "tcp_connected")

	cfg := d.Config
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
	}
	logging.LogTLSHandshake(addr, conn.ConnectionState())
	return conn, nil
}

// Probe connects to addr, completes the handshake without verification and
// returns the fingerprint of the gateway's leaf certificate.
func Probe(ctx context.Context, addr string, timeout time.Duration) (string, error) {
	var fp string
	d := &TLSDialer{
		Timeout: timeout,
		Config: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true,
			VerifyConnection: func(cs tls.ConnectionState) error {
				if len(cs.PeerCertificates) > 0 {
					fp = Fingerprint(cs.PeerCertificates[0])
				}
				return nil
			},
		},
	}
	conn, err := d.Dial(ctx, addr)
	if err != nil {
		return "", err
	}
	conn.Close()
	if fp == "" {
		return "", &CertificateError{Operation: "probe", Err: fmt.Errorf("%s sent no certificate", addr)}
	}
	logging.Debug("Probed gateway certificate", zap.String("addr", addr), zap.String("fingerprint", fp))
	return fp, nil
}
