package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/session"
)

const (
	// DefaultMaxRetries is the number of extra attempts for read requests
	// that timed out
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the initial delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// DefaultCollectTimeout bounds how long notification sequences
	// (node lists, scene lists, system table) may take
	DefaultCollectTimeout = 30 * time.Second

	// DefaultCacheDuration is how long Version results are reused
	DefaultCacheDuration = 5 * time.Minute
)

// Session is the part of *session.Session the client needs.
type Session interface {
	Send(ctx context.Context, cmd klf.Command, rec klf.Record) (*klf.Message, error)
	NextSessionID() uint16
	On(topic string, h events.Handler) events.Subscription
	Off(sub events.Subscription) bool
}

// Client runs gateway operations over a logged-in session.
type Client struct {
	sess Session

	// MaxRetries is the number of extra attempts for idempotent reads
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff
	MaxRetryDelay time.Duration

	// CollectTimeout bounds multi-notification answers
	CollectTimeout time.Duration

	// CacheDuration is how long to cache the version (0 = no cache)
	CacheDuration time.Duration

	cachedVersion *klf.Version
	cacheTime     time.Time
	cacheMutex    sync.RWMutex
}

// New returns a client for sess with default retry and cache settings.
func New(sess Session) *Client {
	return &Client{
		sess:           sess,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		MaxRetryDelay:  DefaultMaxRetryDelay,
		CollectTimeout: DefaultCollectTimeout,
		CacheDuration:  DefaultCacheDuration,
	}
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// InvalidateCache drops cached gateway data.
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cachedVersion = nil
}

// retry repeats fn while it fails with a retryable error.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return lastErr
			}
			delay *= 2
			if c.MaxRetryDelay > 0 && delay > c.MaxRetryDelay {
				delay = c.MaxRetryDelay
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !session.IsTimeout(err) {
			return err
		}
	}
	return lastErr
}

// call sends a request and returns the decoded confirmation record as T.
func call[T any](ctx context.Context, c *Client, cmd klf.Command, rec klf.Record) (T, error) {
	var zero T
	msg, err := c.sess.Send(ctx, cmd, rec)
	if err != nil {
		return zero, err
	}
	return record[T](msg)
}

// read is call with retries, for requests without side effects.
func read[T any](ctx context.Context, c *Client, cmd klf.Command) (T, error) {
	var out T
	err := c.retry(ctx, func() error {
		v, err := call[T](ctx, c, cmd, nil)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func record[T any](msg *klf.Message) (T, error) {
	v, ok := msg.Record.(T)
	if !ok {
		var zero T
		return zero, &session.Error{
			Kind:    session.KindDecode,
			Command: msg.Command,
			Message: fmt.Sprintf("expected %T, got %T", zero, msg.Record),
		}
	}
	return v, nil
}

// watcher buffers notifications of selected commands. It must be created
// before the request that triggers them is sent.
type watcher struct {
	c    *Client
	sub  events.Subscription
	ch   chan events.Event
	cmds map[klf.Command]bool
}

// watchBuffer holds a full node list plus its terminator.
const watchBuffer = 256

func (c *Client) watch(cmds ...klf.Command) *watcher {
	w := &watcher{
		c:    c,
		ch:   make(chan events.Event, watchBuffer),
		cmds: make(map[klf.Command]bool, len(cmds)),
	}
	for _, cmd := range cmds {
		w.cmds[cmd] = true
	}
	w.sub = c.sess.On(events.TopicNotification, func(ev events.Event) {
		if ev.Message == nil || !w.cmds[ev.Message.Command] {
			return
		}
		select {
		case w.ch <- ev:
		default:
		}
	})
	return w
}

func (w *watcher) close() {
	w.c.sess.Off(w.sub)
}

// next returns the next watched notification. deadline bounds the whole
// collection, not the single wait.
func (w *watcher) next(ctx context.Context, deadline <-chan time.Time, cmd klf.Command) (*klf.Message, error) {
	select {
	case ev := <-w.ch:
		if ev.Err != nil {
			return nil, ev.Err
		}
		return ev.Message, nil
	case <-deadline:
		return nil, &session.Error{
			Kind:    session.KindTimeout,
			Command: cmd,
			Message: fmt.Sprintf("notifications incomplete after %s", w.c.CollectTimeout),
		}
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &session.Error{Kind: session.KindTimeout, Command: cmd, Message: "deadline exceeded", Err: ctx.Err()}
		}
		return nil, &session.Error{Kind: session.KindClosed, Command: cmd, Message: "request cancelled", Err: ctx.Err()}
	}
}

func (c *Client) collectDeadline() (<-chan time.Time, func()) {
	d := c.CollectTimeout
	if d <= 0 {
		d = DefaultCollectTimeout
	}
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}
