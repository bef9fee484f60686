package session

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/transport"
)

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "Timeout", KindTimeout.String())
	assert.Equal(t, "Checksum Error", KindChecksum.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestError_Error(t *testing.T) {
	err := newError(KindTimeout, klf.CmdGetStateReq, "no GW_GET_STATE_CFM within 5s", nil)
	assert.Equal(t, "Timeout (GW_GET_STATE_REQ): no GW_GET_STATE_CFM within 5s", err.Error())

	wrapped := newError(KindClosed, 0, "", context.Canceled)
	assert.Equal(t, "Session Closed (caused by: context canceled)", wrapped.Error())
}

func TestError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("listing nodes: %w", newError(KindTimeout, klf.CmdGetAllNodesInformationReq, "late", os.ErrDeadlineExceeded))

	assert.True(t, errors.Is(err, &Error{Kind: KindTimeout}))
	assert.False(t, errors.Is(err, &Error{Kind: KindTransport}))
	assert.False(t, errors.Is(err, &Error{Kind: KindTimeout, Message: "other"}))
	assert.True(t, errors.Is(err, os.ErrDeadlineExceeded))
}

func TestClassifyTransportError(t *testing.T) {
	opErr := func(e error) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: e}}
	}

	tests := []struct {
		name  string
		err   error
		cause NetworkCause
	}{
		{"refused", opErr(syscall.ECONNREFUSED), CauseConnectionRefused},
		{"host unreachable", opErr(syscall.EHOSTUNREACH), CauseHostUnreachable},
		{"network unreachable", opErr(syscall.ENETUNREACH), CauseNetworkUnreachable},
		{"reset", opErr(syscall.ECONNRESET), CauseConnectionReset},
		{"broken pipe", opErr(syscall.EPIPE), CauseConnectionReset},
		{"dns", &net.DNSError{Err: "no such host", Name: "klf200.local", IsNotFound: true}, CauseDNS},
		{"deadline", fmt.Errorf("read: %w", os.ErrDeadlineExceeded), CauseTimeout},
		{"unknown authority", x509.UnknownAuthorityError{}, CauseCertificate},
		{"ca file", &transport.CertificateError{Operation: "load", Path: "ca.pem", Err: os.ErrNotExist}, CauseCertificate},
		{"other", errors.New("boom"), CauseGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ClassifyTransportError(tt.err, "10.0.0.9")
			assert.Equal(t, KindTransport, e.Kind)
			assert.Equal(t, tt.cause, e.Cause)
			assert.Equal(t, "10.0.0.9", e.Host)
			assert.ErrorIs(t, e, tt.err)
		})
	}

	assert.Nil(t, ClassifyTransportError(nil, "x"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(newError(KindTimeout, 0, "", nil)))
	assert.True(t, IsRetryable(&Error{Kind: KindTransport, Cause: CauseConnectionReset}))
	assert.False(t, IsRetryable(&Error{Kind: KindTransport, Cause: CauseCertificate}))
	assert.False(t, IsRetryable(&Error{Kind: KindTransport, Cause: CauseDNS}))
	assert.False(t, IsRetryable(newError(KindAuthentication, 0, "", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestPredicates(t *testing.T) {
	wrap := func(k ErrorKind) error { return fmt.Errorf("op: %w", newError(k, 0, "", nil)) }

	assert.True(t, IsTimeout(wrap(KindTimeout)))
	assert.True(t, IsTransport(wrap(KindTransport)))
	assert.True(t, IsAuthentication(wrap(KindAuthentication)))
	assert.True(t, IsClosed(wrap(KindClosed)))
	assert.True(t, IsDecode(wrap(KindDecode)))
	assert.False(t, IsTimeout(wrap(KindClosed)))
	assert.False(t, IsClosed(errors.New("closed")))
}

func TestHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{newError(KindTimeout, 0, "", nil), "did not confirm"},
		{newError(KindAuthentication, 0, "", nil), "refused the password"},
		{newError(KindClosed, 0, "", nil), "Connect again"},
		{newError(KindDecode, 0, "", nil), "could not interpret"},
		{&Error{Kind: KindTransport, Cause: CauseConnectionRefused}, "51200"},
		{&Error{Kind: KindTransport, Cause: CauseDNS}, "klfctl scan"},
		{&Error{Kind: KindTransport, Cause: CauseCertificate}, "--ca"},
		{&Error{Kind: KindTransport, Cause: CauseHostUnreachable, Host: "10.0.0.9"}, "ping 10.0.0.9"},
		{&Error{Kind: KindTransport, Cause: CauseTimeout}, "15 minutes"},
		{errors.New("plain"), "unexpected error"},
	}
	for _, tt := range tests {
		hint := Hint(tt.err)
		assert.True(t, strings.Contains(hint, tt.want), "hint %q should contain %q", hint, tt.want)
	}
}
