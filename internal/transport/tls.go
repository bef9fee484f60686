package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/logging"
)

// ErrFingerprintMismatch is wrapped when the gateway presents a certificate
// other than the pinned one.
var ErrFingerprintMismatch = errors.New("gateway certificate fingerprint mismatch")

// TLSOptions describes how the gateway certificate is trusted.
type TLSOptions struct {
	// CAFile or CAPEM holds the CA that signed the gateway certificate.
	// Without either, the chain is not verified and only the pin applies.
	CAFile string
	CAPEM  []byte

	// Fingerprint pins the gateway certificate (SHA-256, "AA:BB:..").
	// When empty, the first certificate seen is accepted and reported
	// through OnFingerprint.
	Fingerprint string

	// Insecure skips every check. Only for gateways with firmware that
	// presents certificates nothing can verify.
	Insecure bool

	// OnFingerprint is called with the fingerprint of every accepted
	// certificate.
	OnFingerprint func(fingerprint string)
}

// NewTLSConfig creates a client TLS configuration for the gateway.
//
// The gateway certificate carries no usable host name, so the standard
// verification is replaced: the chain is checked against the CA pool
// without a host name, then the leaf is compared against the pin.
func NewTLSConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, // verification happens in VerifyConnection
	}
	if opts.Insecure {
		logging.Warn("TLS verification disabled for gateway connection")
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) > 0 && opts.OnFingerprint != nil {
				opts.OnFingerprint(Fingerprint(cs.PeerCertificates[0]))
			}
			return nil
		}
		return cfg, nil
	}

	var pool *x509.CertPool
	var err error
	switch {
	case opts.CAFile != "":
		pool, err = LoadCertPool(opts.CAFile)
	case len(opts.CAPEM) > 0:
		pool, err = ParseCertPool(opts.CAPEM)
	}
	if err != nil {
		return nil, err
	}

	pin := ""
	if opts.Fingerprint != "" {
		pin, err = NormalizeFingerprint(opts.Fingerprint)
		if err != nil {
			return nil, &CertificateError{Operation: "pin", Err: err}
		}
	}

	cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return &CertificateError{Operation: "verify", Err: errors.New("gateway sent no certificate")}
		}
		leaf := cs.PeerCertificates[0]

		if pool != nil {
			inter := x509.NewCertPool()
			for _, c := range cs.PeerCertificates[1:] {
				inter.AddCert(c)
			}
			if _, err := leaf.Verify(x509.VerifyOptions{Roots: pool, Intermediates: inter}); err != nil {
				return &CertificateError{Operation: "verify", Err: err}
			}
		}

		fp := Fingerprint(leaf)
		if pin != "" && fp != pin {
			return &CertificateError{
				Operation: "pin",
				Err:       fmt.Errorf("%w: got %s, pinned %s", ErrFingerprintMismatch, fp, pin),
			}
		}
		if pin == "" {
			logging.Info("Accepting gateway certificate on first use", zap.String("fingerprint", fp))
		}
		if opts.OnFingerprint != nil {
			opts.OnFingerprint(fp)
		}
		return nil
	}
	return cfg, nil
}
