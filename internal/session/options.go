package session

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/transport"
)

// Defaults
const (
	DefaultPort           = 51200
	DefaultRequestTimeout = 5 * time.Second
)

// Metrics receives session instrumentation. internal/metrics provides a
// Prometheus implementation.
type Metrics interface {
	FrameSent(cmd klf.Command)
	FrameReceived(cmd klf.Command)
	FrameError(kind ErrorKind)
	RequestStarted(cmd klf.Command)
	RequestCompleted(cmd klf.Command, d time.Duration, err error)
	StateChanged(s State)
}

type nopMetrics struct{}

func (nopMetrics) FrameSent(klf.Command) {}
func (nopMetrics) FrameReceived(klf.Command) {}
func (nopMetrics) FrameError(ErrorKind) {}
func (nopMetrics) RequestStarted(klf.Command) {}
func (nopMetrics) RequestCompleted(klf.Command, time.Duration, error) {}
func (nopMetrics) StateChanged(State) {}

// Option configures a Session.
type Option func(*Session)

// WithDialer replaces the default TLS dialer.
func WithDialer(d transport.Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// WithRegistry replaces the built-in codec registry.
func WithRegistry(r *klf.Registry) Option {
	return func(s *Session) { s.reg = r }
}

// WithBus publishes events on an existing bus.
func WithBus(b *events.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// WithRequestTimeout sets how long Send waits for a confirmation.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPort sets the gateway TCP port.
func WithPort(port int) Option {
	return func(s *Session) {
		if port > 0 {
			s.port = port
		}
	}
}

// WithRateLimit spaces outgoing frames. The gateway drops requests when
// flooded.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Session) { s.limiter = rate.NewLimiter(r, burst) }
}

// WithMetrics installs instrumentation.
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithKeepAlive sends GW_GET_STATE_REQ every interval. The gateway closes
// connections that stay quiet for 15 minutes.
func WithKeepAlive(interval time.Duration) Option {
	return func(s *Session) { s.keepAlive = interval }
}

// WithIdleTimeout fails the session when nothing arrives from the gateway
// for d.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Session) { s.idleTimeout = d }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}
