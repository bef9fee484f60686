// Package session manages one authenticated connection to a KLF gateway:
// it correlates requests with their confirmations and publishes everything
// else as events.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/logging"
	"github.com/muurk/klfgate/internal/slip"
	"github.com/muurk/klfgate/internal/transport"
)

// State of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type result struct {
	msg *klf.Message
	err error
}

// pending is a request waiting for its confirmation. result is buffered so
// resolution never blocks the read loop.
type pending struct {
	cmd    klf.Command // expected confirmation
	result chan result
}

func (p *pending) resolve(msg *klf.Message, err error) {
	p.result <- result{msg: msg, err: err}
}

// Session is a connection to one gateway. It is safe for concurrent use.
// Requests of different types run concurrently; requests expecting the same
// confirmation are queued, since the protocol carries no request id.
type Session struct {
	dialer      transport.Dialer
	reg         *klf.Registry
	bus         *events.Bus
	log         *zap.Logger
	metrics     Metrics
	limiter     *rate.Limiter
	port        int
	timeout     time.Duration
	keepAlive   time.Duration
	idleTimeout time.Duration

	mu       sync.Mutex
	state    State
	host     string
	conn     net.Conn
	pending  map[klf.Command]*pending
	closing  chan struct{} // closed when the current connection ends
	loopDone chan struct{}

	slotMu sync.Mutex
	slots  map[klf.Command]chan struct{}

	writeMu sync.Mutex

	idMu   sync.Mutex
	lastID uint16
}

// New creates a disconnected session.
func New(opts ...Option) *Session {
	s := &Session{
		reg:     klf.DefaultRegistry(),
		bus:     events.NewBus(),
		metrics: nopMetrics{},
		port:    DefaultPort,
		timeout: DefaultRequestTimeout,
		pending: make(map[klf.Command]*pending),
		slots:   make(map[klf.Command]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		d, _ := transport.NewTLSDialer(transport.TLSOptions{})
		s.dialer = d
	}
	return s
}

func (s *Session) logger() *zap.Logger {
	if s.log != nil {
		return s.log
	}
	return logging.Named("session")
}

// Bus returns the event bus the session publishes on.
func (s *Session) Bus() *events.Bus { return s.bus }

// Registry returns the codec registry used for frames.
func (s *Session) Registry() *klf.Registry { return s.reg }

// On subscribes to a topic. See the events package for topic names.
func (s *Session) On(topic string, h events.Handler) events.Subscription {
	return s.bus.On(topic, h)
}

// Once subscribes to the next event on a topic.
func (s *Session) Once(topic string, h events.Handler) events.Subscription {
	return s.bus.Once(topic, h)
}

// Off removes a subscription.
func (s *Session) Off(sub events.Subscription) bool {
	return s.bus.Off(sub)
}

// State returns the connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Host returns the host of the last Connect call.
func (s *Session) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// setState must be called with mu held.
func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.metrics.StateChanged(st)
}

// Connect dials the gateway and starts reading frames.
func (s *Session) Connect(ctx context.Context, host string) error {
	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateConnected {
		s.mu.Unlock()
		return newError(KindProtocol, 0, "session already connected", nil)
	}
	s.setState(StateConnecting)
	s.host = host
	s.mu.Unlock()

	addr := net.JoinHostPort(host, strconv.Itoa(s.port))
	s.logger().Debug("Connecting", zap.String("addr", addr))

	conn, err := s.dialer.Dial(ctx, addr)
	if err != nil {
		s.mu.Lock()
		if s.state == StateConnecting {
			s.setState(StateFailed)
		}
		s.mu.Unlock()
		return ClassifyTransportError(err, host)
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		conn.Close()
		return newError(KindClosed, 0, "session ended while connecting", nil)
	}
	s.conn = conn
	s.pending = make(map[klf.Command]*pending)
	s.closing = make(chan struct{})
	s.loopDone = make(chan struct{})
	closing, done := s.closing, s.loopDone
	s.setState(StateConnected)
	s.mu.Unlock()

	go s.readLoop(conn, done)
	if s.keepAlive > 0 {
		go s.keepAliveLoop(closing)
	}
	logging.LogConnection(addr, "session_connected")
	return nil
}

// Login authenticates with the gateway password. A refused password leaves
// the connection open.
func (s *Session) Login(ctx context.Context, password string) error {
	if len(password) > klf.MaxPasswordLength {
		return newError(KindAuthentication, klf.CmdPasswordEnterReq,
			fmt.Sprintf("password longer than %d characters", klf.MaxPasswordLength), nil)
	}
	msg, err := s.Send(ctx, klf.CmdPasswordEnterReq, klf.PasswordEnter{Password: password})
	if err != nil {
		return err
	}
	if len(msg.Payload) < 1 {
		return newError(KindDecode, msg.Command, "empty password confirmation", nil)
	}
	if msg.Payload[0] != 0 {
		return newError(KindAuthentication, msg.Command, "gateway refused the password", nil)
	}
	s.logger().Info("Authenticated", zap.String("host", s.Host()))
	return nil
}

// Send writes a request and waits for its confirmation. Commands without a
// confirmation are written and (nil, nil) is returned.
func (s *Session) Send(ctx context.Context, cmd klf.Command, rec klf.Record) (*klf.Message, error) {
	frame, err := klf.BuildFrame(s.reg, cmd, rec)
	if err != nil {
		return nil, newError(KindProtocol, cmd, "cannot encode request", err)
	}

	cfm, ok := cmd.Confirmation()
	if !ok {
		return nil, s.write(ctx, cmd, frame)
	}

	release, err := s.acquire(ctx, cmd, cfm)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	p, err := s.register(cmd, cfm)
	if err != nil {
		return nil, err
	}
	s.metrics.RequestStarted(cmd)
	if err := s.write(ctx, cmd, frame); err != nil {
		s.unregister(p)
		s.metrics.RequestCompleted(cmd, time.Since(start), err)
		return nil, err
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var r result
	select {
	case r = <-p.result:
	case <-timer.C:
		if s.unregister(p) {
			r.err = newError(KindTimeout, cmd, fmt.Sprintf("no %s within %s", cfm, s.timeout), nil)
		} else {
			r = <-p.result
		}
	case <-ctx.Done():
		if s.unregister(p) {
			r.err = contextError(cmd, ctx.Err())
		} else {
			r = <-p.result
		}
	}
	s.metrics.RequestCompleted(cmd, time.Since(start), r.err)
	return r.msg, r.err
}

// NextSessionID returns the next id for command sessions
// (GW_COMMAND_SEND_REQ, scenes). Ids wrap around after 0xFFFF.
func (s *Session) NextSessionID() uint16 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	s.lastID++
	return s.lastID
}

// End closes the connection and rejects outstanding requests. It is safe to
// call more than once. It must not be called from an event handler, since
// it waits for the read loop that runs handlers.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateDisconnected:
		s.mu.Unlock()
		return nil
	case StateConnecting:
		s.setState(StateDisconnected)
		s.mu.Unlock()
		return nil
	}
	if s.state == StateConnected {
		close(s.closing)
	}
	conn, done := s.conn, s.loopDone
	pend := s.takeAll()
	s.conn = nil
	s.setState(StateDisconnected)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	for _, p := range pend {
		p.resolve(nil, newError(KindClosed, p.cmd, "session ended", nil))
	}
	s.logger().Debug("Session ended", zap.Int("rejected", len(pend)))

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// acquire takes the queue slot of a confirmation type.
func (s *Session) acquire(ctx context.Context, cmd, cfm klf.Command) (func(), error) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return nil, newError(KindClosed, cmd, "session not connected", nil)
	}
	closing := s.closing
	s.mu.Unlock()

	s.slotMu.Lock()
	slot, ok := s.slots[cfm]
	if !ok {
		slot = make(chan struct{}, 1)
		s.slots[cfm] = slot
	}
	s.slotMu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, contextError(cmd, ctx.Err())
	case <-closing:
		return nil, newError(KindClosed, cmd, "session ended while queued", nil)
	}
}

func (s *Session) register(cmd, cfm klf.Command) (*pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return nil, newError(KindClosed, cmd, "session not connected", nil)
	}
	p := &pending{cmd: cfm, result: make(chan result, 1)}
	s.pending[cfm] = p
	return p, nil
}

// unregister removes p if it is still pending. A false result means p was
// resolved concurrently and its result is on the way.
func (s *Session) unregister(p *pending) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[p.cmd] != p {
		return false
	}
	delete(s.pending, p.cmd)
	return true
}

func (s *Session) take(cfm klf.Command) *pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[cfm]
	if !ok {
		return nil
	}
	delete(s.pending, cfm)
	return p
}

// takeAll must be called with mu held.
func (s *Session) takeAll() []*pending {
	out := make([]*pending, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	s.pending = make(map[klf.Command]*pending)
	return out
}

func (s *Session) write(ctx context.Context, cmd klf.Command, frame []byte) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return contextError(cmd, err)
		}
	}

	s.mu.Lock()
	conn, host := s.conn, s.host
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected {
		return newError(KindClosed, cmd, "session not connected", nil)
	}

	s.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(s.timeout))
	_, err := conn.Write(slip.Pack(frame))
	s.writeMu.Unlock()
	if err != nil {
		terr := ClassifyTransportError(err, host)
		terr.Command = cmd
		if !s.fail(conn, terr, events.TopicError) {
			return newError(KindClosed, cmd, "session ended", err)
		}
		return terr
	}

	logging.LogFrame("tx", cmd.String(), frame)
	s.metrics.FrameSent(cmd)
	return nil
}

// fail tears down a connected session after a transport problem on conn.
// A failure seen on a connection that was already replaced is ignored. It
// reports whether this call performed the teardown.
func (s *Session) fail(conn net.Conn, err *Error, topic string) bool {
	s.mu.Lock()
	if s.state != StateConnected || s.conn != conn {
		s.mu.Unlock()
		return false
	}
	close(s.closing)
	pend := s.takeAll()
	s.setState(StateFailed)
	s.mu.Unlock()

	_ = conn.Close()
	for _, p := range pend {
		p.resolve(nil, &Error{
			Kind:    KindTransport,
			Command: p.cmd,
			Message: "connection lost before confirmation",
			Cause:   err.Cause,
			Host:    err.Host,
			Err:     err,
		})
	}
	s.logger().Warn("Gateway connection failed", zap.Error(err), zap.Int("rejected", len(pend)))
	s.bus.Publish(events.Event{Topic: topic, Err: err})
	return true
}

func (s *Session) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	dec := slip.NewDecoder()
	buf := make([]byte, 1024)
	dropped := 0
	for {
		if s.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			for _, pkt := range dec.Feed(buf[:n]) {
				s.handlePacket(pkt)
			}
			if d := dec.Dropped(); d > dropped {
				s.logger().Warn("Dropped oversized input", zap.Int("bytes", d-dropped))
				s.metrics.FrameError(KindFraming)
				dropped = d
			}
		}
		if err != nil {
			s.readFailed(conn, err)
			return
		}
	}
}

func (s *Session) readFailed(conn net.Conn, err error) {
	s.mu.Lock()
	host := s.host
	s.mu.Unlock()

	var ne net.Error
	if s.idleTimeout > 0 && errors.As(err, &ne) && ne.Timeout() {
		e := &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("no data from gateway for %s", s.idleTimeout),
			Cause:   CauseTimeout,
			Host:    host,
			Err:     err,
		}
		s.fail(conn, e, events.TopicTimeout)
		return
	}

	e := ClassifyTransportError(err, host)
	if errors.Is(err, io.EOF) {
		e.Message = "gateway closed the connection"
	}
	s.fail(conn, e, events.TopicError)
}

func (s *Session) handlePacket(pkt []byte) {
	frame, err := slip.Unpack(pkt)
	if err != nil {
		s.metrics.FrameError(KindFraming)
		s.logger().Warn("Dropping malformed packet", zap.Error(err), zap.Int("length", len(pkt)))
		logging.LogRawBytes("Malformed SLIP packet", pkt)
		return
	}

	msg, err := klf.ParseFrame(s.reg, frame)
	if errors.Is(err, klf.ErrShortFrame) {
		// no command code to name
		logging.LogFrame("rx", "", frame)
		s.frameError(KindShortFrame, nil, err)
		return
	}
	logging.LogFrame("rx", msg.Command.String(), frame)

	var decErr *klf.DecodeError
	var csErr *klf.ChecksumError
	switch {
	case err == nil:
	case errors.As(err, &decErr):
		s.metrics.FrameError(KindDecode)
		s.dispatch(msg, newError(KindDecode, msg.Command, "cannot decode payload", err))
		return
	case errors.As(err, &csErr):
		s.frameError(KindChecksum, msg, err)
		return
	default:
		s.frameError(KindFraming, msg, err)
		return
	}
	s.dispatch(msg, nil)
}

// frameError reports a damaged frame on notPending. msg is nil when the frame
// was too short to carry a command code.
func (s *Session) frameError(kind ErrorKind, msg *klf.Message, err error) {
	var cmd klf.Command
	if msg != nil {
		cmd = msg.Command
	}
	s.metrics.FrameError(kind)
	s.logger().Warn("Damaged frame", zap.Stringer("kind", kind), zap.Error(err))
	s.bus.Publish(events.Event{
		Topic:   events.TopicNotPending,
		Message: msg,
		Err:     newError(kind, cmd, "", err),
	})
}

// dispatch routes a parsed frame. evErr carries a decode failure.
func (s *Session) dispatch(msg *klf.Message, evErr error) {
	s.metrics.FrameReceived(msg.Command)

	switch msg.Command.Kind() {
	case klf.KindNotify:
		if msg.Command == klf.CmdErrorNtf {
			if e, ok := msg.Record.(klf.ErrorNotification); ok {
				s.logger().Warn("Gateway reported an error",
					zap.Uint8("number", uint8(e.Number)), zap.Stringer("text", e.Number))
			}
		}
		now := time.Now()
		s.bus.Publish(events.Event{Topic: events.TopicNotification, Message: msg, Err: evErr, Time: now})
		s.bus.Publish(events.Event{Topic: msg.Name(), Message: msg, Err: evErr, Time: now})

	case klf.KindConfirm:
		if p := s.take(msg.Command); p != nil {
			if evErr != nil {
				p.resolve(nil, evErr)
			} else {
				p.resolve(msg, nil)
			}
			return
		}
		s.logger().Debug("Confirmation without pending request", zap.Stringer("command", msg.Command))
		s.bus.Publish(events.Event{Topic: events.TopicNotPending, Message: msg, Err: evErr})

	default:
		if !msg.Command.Known() {
			s.metrics.FrameError(KindUnknownCommand)
			evErr = newError(KindUnknownCommand, msg.Command, "code not in the command table", nil)
		}
		s.bus.Publish(events.Event{Topic: events.TopicNotPending, Message: msg, Err: evErr})
	}
}

func (s *Session) keepAliveLoop(closing <-chan struct{}) {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-closing:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			_, err := s.Send(ctx, klf.CmdGetStateReq, nil)
			cancel()
			if err != nil && !IsClosed(err) {
				s.logger().Debug("Keepalive failed", zap.Error(err))
			}
		}
	}
}

func contextError(cmd klf.Command, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, cmd, "deadline exceeded", err)
	}
	return newError(KindClosed, cmd, "request cancelled", err)
}
