package session

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/transport"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindFraming indicates a SLIP packet that could not be unpacked
	KindFraming ErrorKind = iota
	// KindChecksum indicates a frame whose XOR checksum did not match
	KindChecksum
	// KindShortFrame indicates a frame too short to carry a command
	KindShortFrame
	// KindUnknownCommand indicates a frame with a code outside the command table
	KindUnknownCommand
	// KindDecode indicates a payload the registered codec rejected
	KindDecode
	// KindTimeout indicates a request that got no confirmation in time
	KindTimeout
	// KindTransport indicates a connection failure
	KindTransport
	// KindAuthentication indicates the gateway refused the password
	KindAuthentication
	// KindClosed indicates the session was ended or never connected
	KindClosed
	// KindProtocol indicates a request the gateway or codec layer refused
	KindProtocol
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindFraming:
		return "Framing Error"
	case KindChecksum:
		return "Checksum Error"
	case KindShortFrame:
		return "Short Frame"
	case KindUnknownCommand:
		return "Unknown Command"
	case KindDecode:
		return "Decode Error"
	case KindTimeout:
		return "Timeout"
	case KindTransport:
		return "Transport Error"
	case KindAuthentication:
		return "Authentication Error"
	case KindClosed:
		return "Session Closed"
	case KindProtocol:
		return "Protocol Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// NetworkCause refines KindTransport errors.
type NetworkCause int

const (
	CauseGeneral NetworkCause = iota
	CauseTimeout
	CauseConnectionRefused
	CauseDNS
	CauseHostUnreachable
	CauseNetworkUnreachable
	CauseCertificate
	CauseConnectionReset
)

// Error is returned by session operations and attached to events.
type Error struct {
	Kind    ErrorKind
	Command klf.Command // request or frame concerned, zero if none
	Message string
	Cause   NetworkCause
	Host    string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Command != 0 {
		fmt.Fprintf(&b, " (%s)", e.Command)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindTimeout})
// works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Command == 0 && t.Message == "" && t.Err == nil
}

func newError(kind ErrorKind, cmd klf.Command, msg string, err error) *Error {
	return &Error{Kind: kind, Command: cmd, Message: msg, Err: err}
}

// ClassifyTransportError analyzes a dial or I/O error and returns a
// KindTransport error with a specific cause.
func ClassifyTransportError(err error, host string) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Kind: KindTransport, Host: host, Err: err, Message: "network error occurred"}

	var dnsErr *net.DNSError
	var certErr *transport.CertificateError
	var verifyErr *tls.CertificateVerificationError
	var unknownCA x509.UnknownAuthorityError
	switch {
	case errors.As(err, &certErr), errors.As(err, &verifyErr), errors.As(err, &unknownCA):
		e.Cause = CauseCertificate
		e.Message = "gateway certificate rejected"
	case errors.As(err, &dnsErr):
		e.Cause = CauseDNS
		e.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
	case errors.Is(err, syscall.ECONNREFUSED):
		e.Cause = CauseConnectionRefused
		e.Message = "gateway refused connection"
	case errors.Is(err, syscall.EHOSTUNREACH):
		e.Cause = CauseHostUnreachable
		e.Message = "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		e.Cause = CauseNetworkUnreachable
		e.Message = "network unreachable"
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		e.Cause = CauseConnectionReset
		e.Message = "connection reset by gateway"
	case os.IsTimeout(err), errors.Is(err, os.ErrDeadlineExceeded):
		e.Cause = CauseTimeout
		e.Message = "connection timed out"
	}
	return e
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTimeout checks if a request timed out
func IsTimeout(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTimeout
}

// IsTransport checks if the connection failed
func IsTransport(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransport
}

// IsAuthentication checks if the gateway refused the password
func IsAuthentication(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAuthentication
}

// IsClosed checks if the session was ended
func IsClosed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindClosed
}

// IsDecode checks if a confirmation could not be decoded
func IsDecode(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindDecode
}

// IsRetryable reports whether repeating the operation on a new session may
// succeed.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindTimeout:
		return true
	case KindTransport:
		return e.Cause != CauseCertificate && e.Cause != CauseDNS
	default:
		return false
	}
}

// Hint returns user-friendly troubleshooting advice for an error
func Hint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Kind {
	case KindTimeout:
		return strings.Join([]string{
			"The gateway did not confirm the request in time.",
			"Troubleshooting:",
			"  • The gateway handles one request at a time; retry in a moment",
			"  • Check that no other client keeps the gateway busy",
			"  • Try increasing --timeout",
		}, "\n")

	case KindAuthentication:
		return strings.Join([]string{
			"The gateway refused the password.",
			"Troubleshooting:",
			"  • The factory password is printed on the back of the gateway",
			"  • Check whether the password was changed through the web interface",
			"  • Passwords longer than 31 characters are not accepted",
		}, "\n")

	case KindClosed:
		return "The session is closed. Connect again before sending requests."

	case KindDecode, KindProtocol:
		return strings.Join([]string{
			"The gateway answered with data klfgate could not interpret.",
			"Troubleshooting:",
			"  • Check the gateway firmware version with `klfctl info`",
			"  • Run with --log-level debug to capture the raw frames",
		}, "\n")

	case KindTransport:
		hint := []string{"Gateway communication failed."}
		switch e.Cause {
		case CauseConnectionRefused:
			hint = append(hint, "Troubleshooting:",
				"  • Verify the port number (default is 51200)",
				"  • The gateway accepts a limited number of clients; close other apps",
				"  • Power cycle the gateway")
		case CauseDNS:
			hint = append(hint, "Troubleshooting:",
				"  • Use the IP address instead of the host name",
				"  • Run `klfctl scan` to find the gateway on the local network")
		case CauseCertificate:
			hint = append(hint, "The gateway certificate did not match.",
				"Troubleshooting:",
				"  • Check --ca points at the gateway CA certificate",
				"  • If the gateway was replaced, remove its pinned fingerprint",
				"  • Use --insecure only for a one-off check")
		case CauseHostUnreachable, CauseNetworkUnreachable:
			hint = append(hint, "Troubleshooting:",
				"  • Check that you are on the same network as the gateway",
				"  • Verify the gateway IP address",
				"  • Try pinging the gateway: ping "+e.Host)
		case CauseTimeout:
			hint = append(hint, "Troubleshooting:",
				"  • Check the gateway is powered on and its LAN cable is connected",
				"  • The gateway closes idle connections after 15 minutes")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the gateway is powered on")
		}
		return strings.Join(hint, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}
