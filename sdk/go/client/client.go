// Package client provides a websocket client for the planetoid server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/sim"
	"github.com/zeusync/planetoid/internal/core/systems/input"
	"github.com/zeusync/planetoid/internal/server"
)

// Client is one connection to the server, bound to one simulation session.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	welcome server.WelcomeFrame

	snapshots chan sim.Snapshot
	events    chan server.EventFrame
	errors    chan server.ErrorFrame
	dropped   atomic.Uint64

	connected atomic.Bool
	closed    atomic.Bool
	done      chan struct{}
	doneOnce  sync.Once

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

// Config holds configuration for the client
type Config struct {
	// ServerURL is the websocket endpoint, e.g. ws://127.0.0.1:8080/ws.
	ServerURL      string
	Token          string
	Encoding       server.Encoding
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	// BufferSize is the capacity of each receive channel. Frames arriving
	// while a channel is full are dropped.
	BufferSize int
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "ws://127.0.0.1:8080/ws",
		Encoding:       server.EncodingJSON,
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   5 * time.Second,
		BufferSize:     256,
	}
}

func NewClient(config Config, logger log.Log) *Client {
	return &Client{
		snapshots: make(chan sim.Snapshot, config.BufferSize),
		events:    make(chan server.EventFrame, config.BufferSize),
		errors:    make(chan server.ErrorFrame, config.BufferSize),
		done:      make(chan struct{}),
		config:    config,
		logger:    logger.With(log.Component("client")),
	}
}

// Connect dials the server and waits for the welcome frame.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.connected.Load() {
		return ErrAlreadyConnected
	}

	u, err := c.dialURL()
	if err != nil {
		return err
	}

	c.logger.Info("Connecting to server", log.String("url", c.config.ServerURL))

	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: c.config.ConnectTimeout}
	conn, resp, err := dialer.DialContext(connectCtx, u, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			err = fmt.Errorf("%w: %s", ErrRejected, resp.Status)
		}
		err = timeoutError(connectCtx, err)
		c.logger.Error("Failed to connect to server", log.Error(err))
		return err
	}

	if deadline, ok := connectCtx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	if err = c.readWelcome(conn); err != nil {
		_ = conn.Close()
		return timeoutError(connectCtx, err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	c.conn = conn
	c.connected.Store(true)

	c.logger.Info("Connected to server",
		log.String("session_id", c.welcome.SessionID),
		log.Int("tick_rate", c.welcome.TickRate))

	c.workerGroup.Add(1)
	go func() {
		defer c.workerGroup.Done()
		c.readLoop()
	}()

	return nil
}

// timeoutError maps an expired connect deadline to ErrConnectionTimeout.
func timeoutError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrConnectionTimeout, err)
	}
	return err
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.config.ServerURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	q := u.Query()
	if c.config.Token != "" {
		q.Set("token", c.config.Token)
	}
	if c.config.Encoding != "" {
		q.Set("encoding", string(c.config.Encoding))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) readWelcome(conn *websocket.Conn) error {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	typ, err := c.frameType(data)
	if err != nil {
		return err
	}
	switch typ {
	case server.FrameWelcome:
		return c.config.Encoding.Unmarshal(data, &c.welcome)
	case server.FrameError:
		var f server.ErrorFrame
		if err = c.config.Encoding.Unmarshal(data, &f); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrRejected, f.Error)
	default:
		return fmt.Errorf("%w: expected welcome, got %q", ErrInvalidMessage, typ)
	}
}

func (c *Client) frameType(data []byte) (string, error) {
	var head struct {
		Type string `json:"type" cbor:"type"`
	}
	if err := c.config.Encoding.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return head.Type, nil
}

func (c *Client) readLoop() {
	defer func() {
		c.connected.Store(false)
		c.closeDone()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.logger.Warn("Connection lost", log.Error(err))
			}
			return
		}
		if err = c.dispatch(data); err != nil {
			c.logger.Warn("Failed to handle frame", log.Error(err))
		}
	}
}

func (c *Client) dispatch(data []byte) error {
	typ, err := c.frameType(data)
	if err != nil {
		return err
	}
	enc := c.config.Encoding

	switch typ {
	case server.FrameSnapshot:
		var f server.SnapshotFrame
		if err = enc.Unmarshal(data, &f); err != nil {
			return err
		}
		deliver(c, c.snapshots, f.Snapshot)
	case server.FrameEvent:
		var f server.EventFrame
		if err = enc.Unmarshal(data, &f); err != nil {
			return err
		}
		deliver(c, c.events, f)
	case server.FrameError:
		var f server.ErrorFrame
		if err = enc.Unmarshal(data, &f); err != nil {
			return err
		}
		deliver(c, c.errors, f)
	default:
		return fmt.Errorf("%w: unexpected frame %q", ErrInvalidMessage, typ)
	}
	return nil
}

func deliver[T any](c *Client, ch chan T, v T) {
	select {
	case ch <- v:
	default:
		c.dropped.Add(1)
	}
}

// Welcome returns the frame the server sent on connect.
func (c *Client) Welcome() server.WelcomeFrame { return c.welcome }
func (c *Client) SessionID() string { return c.welcome.SessionID }

func (c *Client) Snapshots() <-chan sim.Snapshot { return c.snapshots }
func (c *Client) Events() <-chan server.EventFrame { return c.events }
func (c *Client) Errors() <-chan server.ErrorFrame { return c.errors }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Dropped is the number of frames discarded because a channel was full.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

// SendSample replaces the session's input with a ready-made sample.
func (c *Client) SendSample(sample input.Sample) error {
	return c.send(server.InputFrame{Type: server.FrameInput, Sample: &sample})
}

// SendEvents forwards raw touch and button events.
func (c *Client) SendEvents(events ...input.Event) error {
	return c.send(server.InputFrame{Type: server.FrameInput, Events: events})
}

// SendRaw writes an already encoded frame.
func (c *Client) SendRaw(data []byte) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if !c.connected.Load() {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteMessage(c.config.Encoding.MessageType(), data)
}

func (c *Client) send(frame server.InputFrame) error {
	data, err := c.config.Encoding.Marshal(frame)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// Close closes the connection and waits for the reader to stop.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.logger.Info("Closing client")

	var err error
	if c.conn != nil {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	}

	c.workerGroup.Wait()
	c.closeDone()

	c.logger.Info("Client closed")
	return err
}

func (c *Client) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}
