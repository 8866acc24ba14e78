// Package stream maintains the realtime event channel to the DataGenesis
// backend.
//
// The channel mirrors the backend's per-client websocket endpoint: it dials
// /ws/{client_id}, decodes event frames, and reconnects with exponential
// backoff when the connection drops. After the reconnect budget is exhausted
// the channel parks in a terminal failed state and stays there until the
// caller connects again explicitly.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of the event channel.
type State string

const (
	// StateDisconnected covers both "never connected" and "waiting to
	// reconnect after a drop".
	StateDisconnected State = "disconnected"
	// StateConnecting means a dial is in flight.
	StateConnecting State = "connecting"
	// StateConnected means frames are being read.
	StateConnected State = "connected"
	// StateFailed is terminal: the reconnect budget is spent and no further
	// attempts will be made without an explicit Connect.
	StateFailed State = "failed"
)

const (
	// DefaultMaxAttempts bounds automatic reconnects per outage.
	DefaultMaxAttempts = 3
	// reconnectBase is the unit for exponential backoff.
	reconnectBase = time.Second
	// reconnectCap bounds a single backoff delay.
	reconnectCap = 10 * time.Second
)

// Message is one decoded event frame. ReceivedAt is assigned from the local
// clock on arrival; the server's clock is not trusted for ordering.
type Message struct {
	Type       string         `json:"type"`
	Data       map[string]any `json:"data"`
	ReceivedAt time.Time      `json:"-"`
}

// Channel is an auto-reconnecting websocket event channel.
type Channel struct {
	url      string
	clientID string
	dialer   Dialer
	logger   *slog.Logger

	maxAttempts int

	// schedule arms the reconnect timer. Injectable so tests can fire
	// reconnects deterministically.
	schedule func(time.Duration, func()) *time.Timer

	mu       sync.Mutex
	state    State
	attempts int
	conn     Conn
	gen      uint64
	timer    *time.Timer
	ctx      context.Context
	last     *Message

	onMessage func(Message)
	onState   func(State)
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithDialer replaces the websocket dialer. Used by tests.
func WithDialer(d Dialer) ChannelOption {
	return func(c *Channel) { c.dialer = d }
}

// WithMaxAttempts overrides the automatic reconnect budget.
func WithMaxAttempts(n int) ChannelOption {
	return func(c *Channel) { c.maxAttempts = n }
}

// WithScheduler replaces the reconnect timer source. Used by tests.
func WithScheduler(fn func(time.Duration, func()) *time.Timer) ChannelOption {
	return func(c *Channel) { c.schedule = fn }
}

// WithMessageHandler registers the frame callback. Frames are delivered in
// read order from a single goroutine.
func WithMessageHandler(fn func(Message)) ChannelOption {
	return func(c *Channel) { c.onMessage = fn }
}

// WithStateHandler registers the state transition callback.
func WithStateHandler(fn func(State)) ChannelOption {
	return func(c *Channel) { c.onState = fn }
}

// WithChannelLogger sets the logger.
func WithChannelLogger(logger *slog.Logger) ChannelOption {
	return func(c *Channel) { c.logger = logger }
}

// NewChannel creates a channel for the given websocket base URL
// (for example ws://localhost:8000). Each channel gets its own client ID.
func NewChannel(baseURL string, opts ...ChannelOption) *Channel {
	c := &Channel{
		clientID:    uuid.NewString(),
		dialer:      defaultDialer(),
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		schedule:    time.AfterFunc,
		state:       StateDisconnected,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.url = baseURL + "/ws/" + c.clientID

	return c
}

// ClientID returns the channel's backend client identifier.
func (c *Channel) ClientID() string {
	return c.clientID
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// LastMessage returns the most recently received frame, if any.
func (c *Channel) LastMessage() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return Message{}, false
	}

	return *c.last, true
}

// Connect dials the backend and starts the read loop. Calling Connect resets
// the reconnect budget, including from the terminal failed state.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}

	c.ctx = ctx
	c.attempts = 0
	c.stopTimerLocked()
	c.mu.Unlock()

	return c.dial(ctx)
}

// dial performs one connection attempt.
func (c *Channel) dial(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dialer.DialContext(ctx, c.url)
	if err != nil {
		c.logger.Warn("event channel dial failed", slog.String("error", err.Error()))
		c.handleDrop(c.currentGen())

		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.gen++
	gen := c.gen
	c.attempts = 0
	c.mu.Unlock()

	c.setState(StateConnected)
	c.logger.Debug("event channel connected", slog.String("client_id", c.clientID))

	go c.readLoop(gen, conn)

	return nil
}

// readLoop reads frames until the connection errors. Malformed frames are
// dropped, not fatal.
func (c *Channel) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(gen)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping malformed event frame", slog.String("error", err.Error()))
			continue
		}

		msg.ReceivedAt = time.Now()

		c.mu.Lock()
		c.last = &msg
		handler := c.onMessage
		c.mu.Unlock()

		if handler != nil {
			handler(msg)
		}
	}
}

// handleDrop reacts to a lost connection or failed dial attempt. Within one
// outage the attempt counter only grows; it resets on a successful open and
// on explicit Connect. A stale generation means a newer connection already
// took over.
func (c *Channel) handleDrop(gen uint64) {
	c.mu.Lock()

	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.state == StateDisconnected || c.state == StateFailed {
		// Deliberate disconnect already handled the transition.
		c.mu.Unlock()
		return
	}

	if c.attempts >= c.maxAttempts {
		c.mu.Unlock()
		c.setState(StateFailed)
		c.logger.Error("event channel failed",
			slog.Int("attempts", c.maxAttempts),
			slog.String("client_id", c.clientID))

		return
	}

	c.attempts++
	delay := backoff(c.attempts)
	attempt := c.attempts
	ctx := c.ctx
	c.state = StateDisconnected
	handler := c.onState
	c.timer = c.schedule(delay, func() { c.redial(ctx, gen) })
	c.mu.Unlock()

	if handler != nil {
		handler(StateDisconnected)
	}

	c.logger.Info("event channel reconnecting",
		slog.Int("attempt", attempt),
		slog.Duration("delay", delay))
}

// redial runs a scheduled reconnect attempt. A timer can fire concurrently
// with Disconnect or a newer connection taking over, so the attempt is
// re-validated under the lock before dialing.
func (c *Channel) redial(ctx context.Context, gen uint64) {
	c.mu.Lock()
	stale := gen != c.gen || c.state != StateDisconnected
	c.mu.Unlock()

	if stale {
		return
	}

	c.dial(ctx)
}

// backoff returns the delay before reconnect attempt n (1-based).
func backoff(n int) time.Duration {
	d := reconnectBase << uint(n)
	if d > reconnectCap {
		d = reconnectCap
	}

	return d
}

// Send marshals v and writes it as a text frame. Outside the connected state
// the call is a logged no-op so callers never race the reconnect loop.
func (c *Channel) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if state != StateConnected || conn == nil {
		c.logger.Warn("dropping outbound message, channel not connected",
			slog.String("state", string(state)))

		return nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return conn.WriteMessage(TextMessage, payload)
}

// Disconnect tears the channel down from any state: the connection closes,
// any pending reconnect timer is cancelled, and no further attempts run.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.gen++

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	c.attempts = 0
	c.mu.Unlock()

	c.setState(StateDisconnected)
}

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) currentGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

// setState records a transition and notifies the state handler outside the
// lock.
func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}

	c.state = s
	handler := c.onState
	c.mu.Unlock()

	if handler != nil {
		handler(s)
	}
}
