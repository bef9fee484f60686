package transport

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
)

// CertificateError represents a certificate-related error (loading, parsing, pinning).
type CertificateError struct {
	// Operation describes what certificate operation failed
	Operation string
	// Path is the certificate file path (if applicable)
	Path string
	// Underlying error
	Err error
}

func (e *CertificateError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("certificate error during %s (file: %s): %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("certificate error during %s: %v", e.Operation, e.Err)
}

func (e *CertificateError) Unwrap() error {
	return e.Err
}

// LoadCertPool reads a CA bundle from path. The file may hold one DER
// certificate or any number of PEM certificates.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CertificateError{Operation: "load", Path: path, Err: err}
	}
	pool, err := ParseCertPool(data)
	if err != nil {
		return nil, &CertificateError{Operation: "parse", Path: path, Err: err}
	}
	return pool, nil
}

// ParseCertPool builds a pool from PEM or DER encoded certificates.
func ParseCertPool(data []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	if block, _ := pem.Decode(data); block == nil {
		cert, err := x509.ParseCertificate(data)
		if err != nil {
			return nil, fmt.Errorf("neither PEM nor DER certificate: %w", err)
		}
		pool.AddCert(cert)
		return pool, nil
	}

	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in PEM data")
	}
	return pool, nil
}

// Fingerprint returns the SHA-256 fingerprint of cert formatted as
// upper-case hex pairs separated by colons.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return formatFingerprint(sum[:])
}

func formatFingerprint(sum []byte) string {
	var b strings.Builder
	for i, v := range sum {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// NormalizeFingerprint accepts fingerprints with or without separators and
// in any case, and returns the canonical colon form.
func NormalizeFingerprint(s string) (string, error) {
	clean := strings.NewReplacer(":", "", " ", "", "-", "").Replace(s)
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return "", fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	if len(raw) != sha256.Size {
		return "", fmt.Errorf("invalid fingerprint %q: %d bytes, want %d", s, len(raw), sha256.Size)
	}
	return formatFingerprint(raw), nil
}
