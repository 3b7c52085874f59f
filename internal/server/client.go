package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/sim"
)

// frameConn is one client connection, independent of the transport.
// WriteFrame is only called from one goroutine at a time.
type frameConn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
	RemoteAddr() string
	Close() error
}

// ClientSession represents a connected client and the simulation it drives.
type ClientSession struct {
	ID          string
	Transport   string
	ConnectedAt time.Time
	LastSeen    atomic.Int64 // unix timestamp

	conn     frameConn
	encoding Encoding
	session  *sim.Session
	send     chan []byte
	done     chan struct{}
	dropped  atomic.Uint64
	logger   log.Log
}

// serveClient runs one simulation session for conn until the connection
// fails or the server stops. It owns conn and closes it.
func (s *Server) serveClient(ctx context.Context, conn frameConn, transport string, enc Encoding) {
	defer func() { _ = conn.Close() }()

	if n := s.clientCount.Add(1); n > int64(s.config.MaxClients) {
		s.clientCount.Add(-1)
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", conn.RemoteAddr()))
		_ = s.writeDirect(conn, enc, newErrorFrame(ErrMaxClientsReached))
		return
	}
	defer s.clientCount.Add(-1)

	session, err := s.manager.Create(s.simConfig)
	if err != nil {
		s.logger.Error("Failed to create session", log.Error(err))
		_ = s.writeDirect(conn, enc, newErrorFrame(err))
		return
	}

	ctx = log.ContextWithSession(ctx, session.ID())
	client := &ClientSession{
		ID:          session.ID(),
		Transport:   transport,
		ConnectedAt: time.Now(),
		conn:        conn,
		encoding:    enc,
		session:     session,
		send:        make(chan []byte, s.config.MessageBufferSize),
		done:        make(chan struct{}),
		logger: s.logger.WithContext(ctx).With(
			log.String("transport", transport),
			log.String("remote_addr", conn.RemoteAddr())),
	}
	client.LastSeen.Store(time.Now().Unix())

	s.clients.Store(client.ID, client)
	defer func() {
		s.clients.Delete(client.ID)
		if err := s.manager.Remove(client.ID); err != nil && !errors.Is(err, sim.ErrSessionNotFound) {
			client.logger.Warn("Failed to remove session", log.Error(err))
		}
		client.logger.Info("Client disconnected",
			log.Uint64("dropped_frames", client.dropped.Load()),
			log.Int64("total_clients", s.clientCount.Load()))
	}()

	if s.draining.Load() {
		return
	}

	if err = s.writeDirect(conn, enc, s.welcome(session)); err != nil {
		return
	}

	sub, err := s.manager.Bus().SubscribeTopic(client.ID, bus.Wildcard, client.forward)
	if err != nil {
		client.logger.Error("Failed to subscribe to session events", log.Error(err))
		return
	}
	defer func() { _ = sub.Cancel() }()

	client.logger.Info("Client connected", log.Int64("total_clients", s.clientCount.Load()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		client.writeLoop()
	}()

	client.readLoop()
	close(client.done)
	wg.Wait()
}

func (s *Server) welcome(session *sim.Session) WelcomeFrame {
	surface := session.Surface()
	return WelcomeFrame{
		Type:      FrameWelcome,
		SessionID: session.ID(),
		TickRate:  s.manager.Config().TickRate,
		Surface: SurfaceInfo{
			Center: surface.Center(),
			Radius: surface.Radius(),
		},
		Decorations: session.Decorations(),
	}
}

func (s *Server) writeDirect(conn frameConn, enc Encoding, frame any) error {
	data, err := enc.Marshal(frame)
	if err != nil {
		s.logger.Error("Failed to encode frame", log.Error(err))
		return err
	}
	if err = conn.WriteFrame(data); err != nil {
		s.logger.Debug("Failed to write frame", log.String("remote_addr", conn.RemoteAddr()), log.Error(err))
	}
	return err
}

// forward runs on the simulation goroutine and must not block.
func (c *ClientSession) forward(event bus.Event) error {
	var frame any
	switch data := event.Data().(type) {
	case sim.Snapshot:
		if event.Type() != sim.EventSnapshot {
			return nil
		}
		frame = SnapshotFrame{Type: FrameSnapshot, Snapshot: data}
	case sim.AgentEvent:
		frame = EventFrame{Type: FrameEvent, Event: event.Type(), Data: data}
	default:
		return nil
	}
	c.enqueue(frame)
	return nil
}

// enqueue drops the frame when the client is not keeping up.
func (c *ClientSession) enqueue(frame any) {
	data, err := c.encoding.Marshal(frame)
	if err != nil {
		c.logger.Error("Failed to encode frame", log.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.dropped.Add(1)
	}
}

func (c *ClientSession) readLoop() {
	for {
		data, err := c.conn.ReadFrame()
		if err != nil {
			c.logger.Debug("Read loop stopped", log.Error(err))
			return
		}
		c.LastSeen.Store(time.Now().Unix())

		if err = c.handleInput(data); err != nil {
			c.logger.Debug("Rejected input frame", log.Error(err))
			c.enqueue(newErrorFrame(err))
		}
	}
}

func (c *ClientSession) handleInput(data []byte) error {
	frame, err := DecodeInput(c.encoding, data)
	if err != nil {
		return err
	}
	sampler := c.session.Input()
	if frame.Sample != nil {
		return sampler.SetSample(*frame.Sample)
	}
	var errs error
	for _, ev := range frame.Events {
		errs = errors.Join(errs, sampler.Apply(ev))
	}
	return errs
}

func (c *ClientSession) writeLoop() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteFrame(data); err != nil {
				c.logger.Debug("Write loop stopped", log.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
