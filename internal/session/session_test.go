package session

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/transport"
)

func TestSession_SendMatchesConfirmation(t *testing.T) {
	s, gw := connect(t)
	assert.Equal(t, StateConnected, s.State())

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	req := gw.next()
	assert.Equal(t, klf.CmdGetStateReq, req.Command)

	gw.send(klf.CmdGetStateCfm, klf.State{State: 2, SubState: 0x80})

	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.Equal(t, klf.CmdGetStateCfm, r.msg.Command)
	assert.Equal(t, klf.State{State: 2, SubState: 0x80}, r.msg.Record)
}

func TestSession_DifferentTypesInterleave(t *testing.T) {
	s, gw := connect(t)

	state := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	version := sendAsync(s, klf.CmdGetVersionReq, nil)
	gw.next()

	// confirmations arrive in the opposite order
	gw.send(klf.CmdGetVersionCfm, klf.Version{ProductGroup: 14, ProductType: 3})
	gw.send(klf.CmdGetStateCfm, klf.State{State: 1})

	rv := waitResult(t, version)
	require.NoError(t, rv.err)
	assert.Equal(t, byte(14), rv.msg.Record.(klf.Version).ProductGroup)

	rs := waitResult(t, state)
	require.NoError(t, rs.err)
	assert.Equal(t, klf.GatewayState(1), rs.msg.Record.(klf.State).State)
}

func TestSession_SameTypeIsQueued(t *testing.T) {
	s, gw := connect(t)

	first := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	second := sendAsync(s, klf.CmdGetStateReq, nil)

	// the second request waits until the first is confirmed
	gw.expectNone(100 * time.Millisecond)

	gw.send(klf.CmdGetStateCfm, klf.State{State: 1})
	r1 := waitResult(t, first)
	require.NoError(t, r1.err)
	assert.Equal(t, klf.GatewayState(1), r1.msg.Record.(klf.State).State)

	gw.next()
	gw.send(klf.CmdGetStateCfm, klf.State{State: 2})
	r2 := waitResult(t, second)
	require.NoError(t, r2.err)
	assert.Equal(t, klf.GatewayState(2), r2.msg.Record.(klf.State).State)
}

func TestSession_Login(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		s, gw := connect(t)
		done := make(chan error, 1)
		go func() { done <- s.Login(context.Background(), "velux123") }()

		req := gw.next()
		assert.Equal(t, klf.CmdPasswordEnterReq, req.Command)
		assert.Equal(t, klf.PasswordEnter{Password: "velux123"}, req.Record)
		gw.sendRaw(klf.CmdPasswordEnterCfm, []byte{0})

		require.NoError(t, <-done)
	})

	t.Run("refused", func(t *testing.T) {
		s, gw := connect(t)
		done := make(chan error, 1)
		go func() { done <- s.Login(context.Background(), "wrong") }()

		gw.next()
		gw.sendRaw(klf.CmdPasswordEnterCfm, []byte{1})

		err := <-done
		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
		assert.Equal(t, StateConnected, s.State(), "refused login keeps the connection")
	})

	t.Run("too long", func(t *testing.T) {
		s, _ := connect(t)
		err := s.Login(context.Background(), "0123456789012345678901234567890123")
		assert.True(t, IsAuthentication(err))
	})
}

func TestSession_Notifications(t *testing.T) {
	s, gw := connect(t)
	all := collect(s, events.TopicNotification)
	named := collect(s, "GW_NODE_STATE_POSITION_CHANGED_NTF")

	ntf := klf.PositionChanged{NodeID: 4, State: 4, CurrentPosition: 0x6400, Target: 0xC800}
	gw.send(klf.CmdNodeStatePositionChangedNtf, ntf)

	ev := waitEvent(t, all)
	assert.Equal(t, events.TopicNotification, ev.Topic)
	assert.Equal(t, ntf, ev.Message.Record)
	assert.NoError(t, ev.Err)

	ev = waitEvent(t, named)
	assert.Equal(t, klf.CmdNodeStatePositionChangedNtf, ev.Message.Command)
}

func TestSession_NotificationDuringRequest(t *testing.T) {
	s, gw := connect(t)
	ntfs := collect(s, events.TopicNotification)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	gw.send(klf.CmdSessionFinishedNtf, klf.SessionFinished{SessionID: 7})
	gw.send(klf.CmdGetStateCfm, klf.State{})

	require.NoError(t, waitResult(t, res).err)
	ev := waitEvent(t, ntfs)
	assert.Equal(t, klf.SessionFinished{SessionID: 7}, ev.Message.Record)
}

func TestSession_NotPending(t *testing.T) {
	s, gw := connect(t)
	np := collect(s, events.TopicNotPending)

	gw.send(klf.CmdGetStateCfm, klf.State{State: 2})

	ev := waitEvent(t, np)
	assert.Equal(t, klf.CmdGetStateCfm, ev.Message.Command)
	assert.NoError(t, ev.Err)
}

func TestSession_DamagedFrames(t *testing.T) {
	tests := []struct {
		name     string
		packet   []byte
		wantKind ErrorKind
	}{
		{
			name:     "checksum",
			packet:   []byte{0xC0, 0x00, 0x03, 0x00, 0x01, 0x03, 0xC0},
			wantKind: KindChecksum,
		},
		{
			name:     "short frame",
			packet:   []byte{0xC0, 0x00, 0x02, 0x00, 0xC0},
			wantKind: KindShortFrame,
		},
		{
			name:     "length byte",
			packet:   []byte{0xC0, 0x00, 0x09, 0x00, 0x01, 0x08, 0xC0},
			wantKind: KindFraming,
		},
		{
			name:     "unknown command",
			packet:   []byte{0xC0, 0x00, 0x03, 0xAB, 0xCD, 0x65, 0xC0},
			wantKind: KindUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, gw := connect(t)
			np := collect(s, events.TopicNotPending)

			gw.write(tt.packet)

			ev := waitEvent(t, np)
			var e *Error
			require.ErrorAs(t, ev.Err, &e)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, StateConnected, s.State(), "damaged frames are not fatal")
			if tt.wantKind == KindShortFrame {
				assert.Nil(t, ev.Message, "a short frame has no command")
				assert.Equal(t, klf.Command(0), e.Command)
			} else {
				assert.NotNil(t, ev.Message)
			}
		})
	}
}

func TestSession_NoiseBeforeFrameIsSkipped(t *testing.T) {
	s, gw := connect(t)
	np := collect(s, events.TopicNotPending)

	frame := gw.frame(klf.CmdGetStateCfm, klf.State{})
	gw.write(append([]byte{0x01, 0x02, 0x03}, frame...))

	ev := waitEvent(t, np)
	assert.Equal(t, klf.CmdGetStateCfm, ev.Message.Command)
	assert.NoError(t, ev.Err)
}

func TestSession_DecodeFailureRejectsRequest(t *testing.T) {
	s, gw := connect(t)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	gw.sendRaw(klf.CmdGetStateCfm, []byte{0x02})

	r := waitResult(t, res)
	require.Error(t, r.err)
	assert.True(t, IsDecode(r.err))
}

func TestSession_FragmentedAndCoalescedInput(t *testing.T) {
	s, gw := connect(t)
	ntfs := collect(s, events.TopicNotification)

	a := gw.frame(klf.CmdSessionFinishedNtf, klf.SessionFinished{SessionID: 1})
	b := gw.frame(klf.CmdSessionFinishedNtf, klf.SessionFinished{SessionID: 2})
	c := gw.frame(klf.CmdSessionFinishedNtf, klf.SessionFinished{SessionID: 3})

	gw.write(append(append([]byte{}, a...), b...))
	for i := range c {
		gw.write(c[i : i+1])
	}

	for want := uint16(1); want <= 3; want++ {
		ev := waitEvent(t, ntfs)
		assert.Equal(t, klf.SessionFinished{SessionID: want}, ev.Message.Record)
	}
}

func TestSession_Timeout(t *testing.T) {
	s, gw := connect(t, WithRequestTimeout(50*time.Millisecond))
	np := collect(s, events.TopicNotPending)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()

	r := waitResult(t, res)
	require.Error(t, r.err)
	assert.True(t, IsTimeout(r.err))
	assert.True(t, errors.Is(r.err, &Error{Kind: KindTimeout}))

	// the late confirmation no longer matches anything
	gw.send(klf.CmdGetStateCfm, klf.State{})
	ev := waitEvent(t, np)
	assert.Equal(t, klf.CmdGetStateCfm, ev.Message.Command)
}

func TestSession_UnrelatedConfirmationLeavesRequestPending(t *testing.T) {
	s, gw := connect(t, WithRequestTimeout(100*time.Millisecond))
	np := collect(s, events.TopicNotPending)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()

	gw.send(klf.CmdGetVersionCfm, klf.Version{ProductGroup: 14, ProductType: 3})
	ev := waitEvent(t, np)
	assert.Equal(t, klf.CmdGetVersionCfm, ev.Message.Command)
	assert.NoError(t, ev.Err)

	// GW_GET_STATE_REQ is still waiting for its own confirmation
	r := waitResult(t, res)
	require.Error(t, r.err)
	assert.True(t, IsTimeout(r.err))
	assert.Nil(t, r.msg)
	assert.Equal(t, StateConnected, s.State())
}

func TestSession_ContextCancel(t *testing.T) {
	s, gw := connect(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, klf.CmdGetStateReq, nil)
		done <- err
	}()
	gw.next()
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_TransportFailure(t *testing.T) {
	s, gw := connect(t)
	errs := collect(s, events.TopicError)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	gw.conn.Close()

	r := waitResult(t, res)
	require.Error(t, r.err)
	assert.True(t, IsTransport(r.err))

	ev := waitEvent(t, errs)
	assert.Error(t, ev.Err)
	assert.Equal(t, StateFailed, s.State())

	_, err := s.Send(context.Background(), klf.CmdGetStateReq, nil)
	assert.True(t, IsClosed(err))

	require.NoError(t, s.End(context.Background()))
	assert.Equal(t, StateDisconnected, s.State())
}

// brokenConn fails every write and, once closed, keeps its reader blocked
// for a while before reporting EOF.
type brokenConn struct {
	net.Conn
	closed chan struct{}
	once   sync.Once
}

func (c *brokenConn) Write([]byte) (int, error) { return 0, syscall.EPIPE }

func (c *brokenConn) Read([]byte) (int, error) {
	<-c.closed
	time.Sleep(50 * time.Millisecond)
	return 0, io.EOF
}

func (c *brokenConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func TestSession_ReconnectSurvivesOldReadLoop(t *testing.T) {
	gw, pipeDialer := newFakeGateway(t)
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	broken := &brokenConn{Conn: a, closed: make(chan struct{})}

	dials := 0
	dialer := transport.DialerFunc(func(ctx context.Context, addr string) (net.Conn, error) {
		dials++
		if dials == 1 {
			return broken, nil
		}
		return pipeDialer.Dial(ctx, addr)
	})

	s := New(WithDialer(dialer))
	t.Cleanup(func() { _ = s.End(context.Background()) })
	require.NoError(t, s.Connect(context.Background(), "klf200.local"))

	_, err := s.Send(context.Background(), klf.CmdGetStateReq, nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, StateFailed, s.State())

	require.NoError(t, s.Connect(context.Background(), "klf200.local"))
	assert.Equal(t, StateConnected, s.State())

	// the first connection's reader returns now and must not touch the new one
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, StateConnected, s.State())

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	gw.send(klf.CmdGetStateCfm, klf.State{State: 2})
	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.Equal(t, klf.GatewayState(2), r.msg.Record.(klf.State).State)
}

func TestSession_IdleTimeout(t *testing.T) {
	s, _ := connect(t, WithIdleTimeout(50*time.Millisecond))
	timeouts := collect(s, events.TopicTimeout)

	ev := waitEvent(t, timeouts)
	assert.True(t, IsTransport(ev.Err))
	assert.Equal(t, StateFailed, s.State())
}

func TestSession_KeepAlive(t *testing.T) {
	_, gw := connect(t, WithKeepAlive(20*time.Millisecond))

	req := gw.next()
	assert.Equal(t, klf.CmdGetStateReq, req.Command)
	gw.send(klf.CmdGetStateCfm, klf.State{})
}

func TestSession_EndRejectsPending(t *testing.T) {
	s, gw := connect(t)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()

	require.NoError(t, s.End(context.Background()))
	r := waitResult(t, res)
	assert.True(t, IsClosed(r.err))

	// idempotent
	require.NoError(t, s.End(context.Background()))
	assert.Equal(t, StateDisconnected, s.State())

	_, err := s.Send(context.Background(), klf.CmdGetStateReq, nil)
	assert.True(t, IsClosed(err))
}

func TestSession_EndReleasesQueuedRequests(t *testing.T) {
	s, gw := connect(t)

	first := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	second := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.expectNone(50 * time.Millisecond)

	require.NoError(t, s.End(context.Background()))
	assert.True(t, IsClosed(waitResult(t, first).err))
	assert.True(t, IsClosed(waitResult(t, second).err))
}

func TestSession_FireAndForget(t *testing.T) {
	s, gw := connect(t)

	done := make(chan sendResult, 1)
	go func() {
		msg, err := s.Send(context.Background(), klf.CmdCSControllerCopyCancelNtf, nil)
		done <- sendResult{msg, err}
	}()

	req := gw.next()
	assert.Equal(t, klf.CmdCSControllerCopyCancelNtf, req.Command)
	r := waitResult(t, done)
	assert.NoError(t, r.err)
	assert.Nil(t, r.msg)
}

func TestSession_EncodeError(t *testing.T) {
	s, _ := connect(t)
	_, err := s.Send(context.Background(), klf.CmdPasswordEnterReq, klf.SetUTC{})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindProtocol, e.Kind)
	assert.ErrorIs(t, err, klf.ErrRecordType)
}

func TestSession_ConnectFailure(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	s := New(WithDialer(transport.DialerFunc(func(ctx context.Context, addr string) (net.Conn, error) {
		assert.Equal(t, "10.0.0.9:51200", addr)
		return nil, refused
	})))

	err := s.Connect(context.Background(), "10.0.0.9")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindTransport, e.Kind)
	assert.Equal(t, CauseConnectionRefused, e.Cause)
	assert.Equal(t, StateFailed, s.State())
}

func TestSession_ConnectTwice(t *testing.T) {
	s, _ := connect(t)
	err := s.Connect(context.Background(), "again")
	assert.Error(t, err)
	assert.Equal(t, StateConnected, s.State())
}

func TestSession_NotConnected(t *testing.T) {
	s := New()
	_, err := s.Send(context.Background(), klf.CmdGetStateReq, nil)
	assert.True(t, IsClosed(err))
	assert.NoError(t, s.End(context.Background()))
}

func TestSession_NextSessionID(t *testing.T) {
	s := New()
	assert.Equal(t, uint16(1), s.NextSessionID())
	assert.Equal(t, uint16(2), s.NextSessionID())

	seen := make(map[uint16]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := s.NextSessionID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}

type countingMetrics struct {
	mu       sync.Mutex
	sent     int
	received int
	errors   map[ErrorKind]int
	states   []State
}

func (m *countingMetrics) FrameSent(klf.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
}

func (m *countingMetrics) FrameReceived(klf.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received++
}

func (m *countingMetrics) FrameError(k ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[ErrorKind]int)
	}
	m.errors[k]++
}

func (m *countingMetrics) RequestStarted(klf.Command) {}

func (m *countingMetrics) RequestCompleted(klf.Command, time.Duration, error) {}

func (m *countingMetrics) StateChanged(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, s)
}

func TestSession_Metrics(t *testing.T) {
	m := &countingMetrics{}
	s, gw := connect(t, WithMetrics(m))
	np := collect(s, events.TopicNotPending)

	res := sendAsync(s, klf.CmdGetStateReq, nil)
	gw.next()
	gw.send(klf.CmdGetStateCfm, klf.State{})
	require.NoError(t, waitResult(t, res).err)

	gw.write([]byte{0xC0, 0x00, 0x03, 0x00, 0x01, 0x03, 0xC0})
	waitEvent(t, np)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, 1, m.sent)
	assert.Equal(t, 1, m.received)
	assert.Equal(t, 1, m.errors[KindChecksum])
	assert.Equal(t, []State{StateConnecting, StateConnected}, m.states)
}
