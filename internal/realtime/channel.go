// Package realtime maintains the WebSocket notification channel.
package realtime

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sentinelops/sentinel/internal/api"
	"github.com/sentinelops/sentinel/internal/session"
)

// State of the channel connection.
type State string

const (
	StateConnecting     State = "connecting"
	StateOpen           State = "open"
	StateClosedRetrying State = "closed_retrying"
	StateClosedFinal    State = "closed_final"
)

// ErrNoSession means Connect was called without a session token. The
// channel never dials unauthenticated.
var ErrNoSession = errors.New("no session token for realtime channel")

// ErrAlreadyConnected means Connect was called on a live channel.
var ErrAlreadyConnected = errors.New("channel already connected")

// Config for the notification channel
type Config struct {
	// URL is the WebSocket endpoint without the token parameter.
	URL string
	// ReconnectDelay between a drop and the single retry it schedules.
	ReconnectDelay time.Duration
	Store          *session.Store
	Logger         zerolog.Logger
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Channel is a reconnecting notification feed. After a drop it
// schedules exactly one retry, and only while a session still exists;
// logout or Disconnect cancels the pending retry so no timer outlives
// the session.
type Channel struct {
	cfg    Config
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	retryTimer *time.Timer
	// gen invalidates read loops and dials from superseded connections.
	gen int

	onMessage func(api.Notification)
	onError   func(error)
}

// NewChannel creates a channel in the ClosedFinal state.
func NewChannel(cfg Config) *Channel {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}

	return &Channel{
		cfg:    cfg,
		logger: cfg.Logger,
		state:  StateClosedFinal,
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the channel. onMessage receives each notification in
// arrival order; onError is informational and does not itself close
// the connection.
func (c *Channel) Connect(onMessage func(api.Notification), onError func(error)) error {
	if c.cfg.Store.Token() == "" {
		return ErrNoSession
	}

	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.onMessage = onMessage
	c.onError = onError
	c.stopRetryLocked()
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
	return nil
}

// Disconnect tears the channel down: cancels any pending retry and
// closes the live connection. Safe to call repeatedly.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateClosedFinal
	c.gen++
	c.stopRetryLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// stopRetryLocked cancels a pending reconnect. Caller holds c.mu.
func (c *Channel) stopRetryLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

// dial performs one handshake attempt for generation gen.
func (c *Channel) dial(gen int) {
	endpoint := c.cfg.URL + "?token=" + url.QueryEscape(c.cfg.Store.Token())

	conn, _, err := c.cfg.Dialer.Dial(endpoint, nil)

	c.mu.Lock()
	if gen != c.gen || c.state != StateConnecting {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("realtime handshake failed")
		if c.onError != nil {
			c.onError(err)
		}
		c.handleDrop(gen)
		return
	}

	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.logger.Debug().Msg("realtime channel open")
	go c.readLoop(conn, gen)
}

// readLoop delivers messages until the connection drops. Running in a
// single goroutine keeps delivery in arrival order.
func (c *Channel) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := gen == c.gen && c.state == StateOpen
			c.mu.Unlock()
			if current {
				c.logger.Warn().Err(err).Msg("realtime channel dropped")
				if c.onError != nil {
					c.onError(err)
				}
				c.handleDrop(gen)
			}
			return
		}

		var notif api.Notification
		if err := json.Unmarshal(data, &notif); err != nil {
			// Malformed payloads are dropped, never delivered, so
			// they cannot skew the consumer's unread counter.
			c.logger.Error().Err(err).Msg("dropping malformed realtime payload")
			continue
		}

		if c.onMessage != nil {
			c.onMessage(notif)
		}
	}
}

// handleDrop decides what follows a drop: one scheduled retry while a
// session exists, final close otherwise.
func (c *Channel) handleDrop(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state == StateClosedFinal {
		return
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.cfg.Store.Token() == "" {
		c.state = StateClosedFinal
		return
	}

	c.state = StateClosedRetrying
	c.stopRetryLocked()
	c.retryTimer = time.AfterFunc(c.cfg.ReconnectDelay, c.retry)
	c.logger.Info().Dur("delay", c.cfg.ReconnectDelay).Msg("realtime reconnect scheduled")
}

// retry fires from the reconnect timer.
func (c *Channel) retry() {
	c.mu.Lock()
	if c.state != StateClosedRetrying {
		c.mu.Unlock()
		return
	}
	if c.cfg.Store.Token() == "" {
		// Logged out while the timer was pending.
		c.state = StateClosedFinal
		c.mu.Unlock()
		return
	}

	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
}
