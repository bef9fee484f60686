package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/slip"
	"github.com/muurk/klfgate/internal/transport"
)

// fakeGateway is the far end of a net.Pipe. It decodes every frame the
// session writes onto reqs and lets tests write confirmations and
// notifications back.
type fakeGateway struct {
	t    *testing.T
	conn net.Conn
	reg  *klf.Registry
	reqs chan *klf.Message
}

func newFakeGateway(t *testing.T) (*fakeGateway, transport.Dialer) {
	t.Helper()
	client, server := net.Pipe()
	gw := &fakeGateway{
		t:    t,
		conn: server,
		reg:  klf.DefaultRegistry(),
		reqs: make(chan *klf.Message, 16),
	}
	go gw.readLoop()
	t.Cleanup(func() { server.Close() })

	dialer := transport.DialerFunc(func(ctx context.Context, addr string) (net.Conn, error) {
		return client, nil
	})
	return gw, dialer
}

func (g *fakeGateway) readLoop() {
	dec := slip.NewDecoder()
	buf := make([]byte, 512)
	for {
		n, err := g.conn.Read(buf)
		for _, pkt := range dec.Feed(buf[:n]) {
			frame, uerr := slip.Unpack(pkt)
			if uerr != nil {
				continue
			}
			msg, _ := klf.ParseFrame(g.reg, frame)
			g.reqs <- msg
		}
		if err != nil {
			close(g.reqs)
			return
		}
	}
}

// next returns the next request the session wrote.
func (g *fakeGateway) next() *klf.Message {
	g.t.Helper()
	select {
	case msg, ok := <-g.reqs:
		require.True(g.t, ok, "connection closed before a request arrived")
		return msg
	case <-time.After(2 * time.Second):
		g.t.Fatal("no request from session")
		return nil
	}
}

// expectNone asserts that the session writes nothing for d.
func (g *fakeGateway) expectNone(d time.Duration) {
	g.t.Helper()
	select {
	case msg := <-g.reqs:
		g.t.Fatalf("unexpected request %s", msg)
	case <-time.After(d):
	}
}

func (g *fakeGateway) frame(cmd klf.Command, rec klf.Record) []byte {
	g.t.Helper()
	frame, err := klf.BuildFrame(g.reg, cmd, rec)
	require.NoError(g.t, err)
	return slip.Pack(frame)
}

func (g *fakeGateway) send(cmd klf.Command, rec klf.Record) {
	g.t.Helper()
	g.write(g.frame(cmd, rec))
}

func (g *fakeGateway) sendRaw(cmd klf.Command, payload []byte) {
	g.t.Helper()
	frame, err := klf.BuildRawFrame(cmd, payload)
	require.NoError(g.t, err)
	g.write(slip.Pack(frame))
}

func (g *fakeGateway) write(b []byte) {
	g.t.Helper()
	_ = g.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := g.conn.Write(b)
	require.NoError(g.t, err)
}

// connect returns a connected session talking to a fake gateway.
func connect(t *testing.T, opts ...Option) (*Session, *fakeGateway) {
	t.Helper()
	gw, dialer := newFakeGateway(t)
	s := New(append([]Option{WithDialer(dialer)}, opts...)...)
	require.NoError(t, s.Connect(context.Background(), "klf200.local"))
	t.Cleanup(func() { _ = s.End(context.Background()) })
	return s, gw
}

// collect subscribes to topic and returns a channel of its events.
func collect(s *Session, topic string) <-chan events.Event {
	ch := make(chan events.Event, 16)
	s.On(topic, func(ev events.Event) { ch <- ev })
	return ch
}

func waitEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return events.Event{}
	}
}

type sendResult struct {
	msg *klf.Message
	err error
}

func sendAsync(s *Session, cmd klf.Command, rec klf.Record) <-chan sendResult {
	ch := make(chan sendResult, 1)
	go func() {
		msg, err := s.Send(context.Background(), cmd, rec)
		ch <- sendResult{msg, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan sendResult) sendResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("Send did not return")
		return sendResult{}
	}
}
