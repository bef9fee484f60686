// Package metrics exposes gateway session instrumentation to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/session"
)

const namespace = "klfgate"

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// SessionMetrics implements session.Metrics. A nil *SessionMetrics is valid
// and records nothing.
type SessionMetrics struct {
	FramesSent       *prometheus.CounterVec   // labels: command
	FramesReceived   *prometheus.CounterVec   // labels: command
	FrameErrors      *prometheus.CounterVec   // labels: kind
	Notifications    *prometheus.CounterVec   // labels: command
	Pending          prometheus.Gauge         // requests awaiting a confirmation
	RequestDuration  *prometheus.HistogramVec // labels: command, result
	Timeouts         prometheus.Counter
	TransportFailure prometheus.Counter
	Connected        prometheus.Gauge // 1 while the session is connected
}

var _ session.Metrics = (*SessionMetrics)(nil)

// NewSessionMetrics registers the session collectors on reg.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_sent_total",
			Help:      "Frames written to the gateway by command.",
		}, []string{"command"}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Frames read from the gateway by command.",
		}, []string{"command"}),
		FrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frame_errors_total",
			Help:      "Damaged or undecodable frames by kind.",
		}, []string{"kind"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "notifications_total",
			Help:      "Notifications received by command.",
		}, []string{"command"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "pending_requests",
			Help:      "Requests waiting for a confirmation.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "request_duration_seconds",
			Help:      "Time from request write to confirmation.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"command", "result"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "request_timeouts_total",
			Help:      "Requests that got no confirmation in time.",
		}),
		TransportFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transport_failures_total",
			Help:      "Connections lost to transport errors.",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "connected",
			Help:      "1 while the gateway session is connected.",
		}),
	}
	reg.MustRegister(m.FramesSent, m.FramesReceived, m.FrameErrors, m.Notifications,
		m.Pending, m.RequestDuration, m.Timeouts, m.TransportFailure, m.Connected)
	return m
}

func (m *SessionMetrics) FrameSent(cmd klf.Command) {
	if m == nil {
		return
	}
	m.FramesSent.WithLabelValues(cmd.String()).Inc()
}

func (m *SessionMetrics) FrameReceived(cmd klf.Command) {
	if m == nil {
		return
	}
	m.FramesReceived.WithLabelValues(cmd.String()).Inc()
	if cmd.Kind() == klf.KindNotify {
		m.Notifications.WithLabelValues(cmd.String()).Inc()
	}
}

func (m *SessionMetrics) FrameError(kind session.ErrorKind) {
	if m == nil {
		return
	}
	m.FrameErrors.WithLabelValues(kindLabel(kind)).Inc()
}

func (m *SessionMetrics) RequestStarted(klf.Command) {
	if m == nil {
		return
	}
	m.Pending.Inc()
}

// RequestCompleted records the outcome of a request started with
// RequestStarted.
func (m *SessionMetrics) RequestCompleted(cmd klf.Command, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Pending.Dec()
	res := "ok"
	switch {
	case err == nil:
	case session.IsTimeout(err):
		res = "timeout"
		m.Timeouts.Inc()
	case session.IsTransport(err):
		res = "transport"
	default:
		res = "error"
	}
	m.RequestDuration.WithLabelValues(cmd.String(), res).Observe(d.Seconds())
}

func (m *SessionMetrics) StateChanged(s session.State) {
	if m == nil {
		return
	}
	switch s {
	case session.StateConnected:
		m.Connected.Set(1)
	case session.StateFailed:
		m.Connected.Set(0)
		m.TransportFailure.Inc()
	default:
		m.Connected.Set(0)
	}
}

func kindLabel(k session.ErrorKind) string {
	switch k {
	case session.KindFraming:
		return "framing"
	case session.KindChecksum:
		return "checksum"
	case session.KindShortFrame:
		return "short_frame"
	case session.KindUnknownCommand:
		return "unknown_command"
	case session.KindDecode:
		return "decode"
	default:
		return "other"
	}
}
