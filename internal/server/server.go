package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/sim"
	"github.com/zeusync/planetoid/pkg/concurrent"
)

// Server is the network edge: it accepts websocket and QUIC clients, gives
// each one a simulation session and streams the session's frames back.
type Server struct {
	manager   *sim.Manager
	simConfig sim.Config

	mu           sync.RWMutex // guards the listeners and cancel
	httpServer   *http.Server
	httpListener net.Listener
	quicListener *quic.Listener
	monitor      *busMonitor
	lifecycle    bus.Subscription

	// Client management
	clients     sync.Map // map[string]*ClientSession
	clientCount atomic.Int64

	// Server state
	running  atomic.Bool
	closed   atomic.Bool
	draining atomic.Bool
	cancel  context.CancelFunc
	workers sync.WaitGroup

	config Config
	logger log.Log
}

// Stats contains server statistics
type Stats struct {
	Clients  int64               `json:"clients"`
	Running  bool                `json:"running"`
	Sim      sim.Stats           `json:"sim"`
	Bus      bus.EventBusMetrics `json:"bus"`
	Topics   int                 `json:"topics"`
	Dropped  uint64              `json:"dropped_frames"`
	HTTPAddr string              `json:"http_addr,omitempty"`
	QUICAddr string              `json:"quic_addr,omitempty"`
}

// NewServer creates a server handing out sessions built from simConfig.
func NewServer(config Config, simConfig sim.Config, manager *sim.Manager, logger log.Log) *Server {
	s := &Server{
		manager:   manager,
		simConfig: simConfig,
		config:    config,
		logger:    logger.With(log.Component("server")),
	}
	s.monitor = newBusMonitor(s.logger)

	s.logger.Info("Server created",
		log.String("websocket_addr", config.WebSocketAddr),
		log.String("quic_addr", config.QUICAddr),
		log.Int("max_clients", config.MaxClients))

	return s
}

// Handler returns the HTTP routes: /ws, /board, /healthz and /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/board", s.handleBoard)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Start binds the configured listeners and serves them in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")
	s.draining.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)

	if s.config.WebSocketAddr != "" {
		ln, err := net.Listen("tcp", s.config.WebSocketAddr)
		if err != nil {
			cancel()
			s.running.Store(false)
			s.logger.Error("Failed to create listener", log.Error(err))
			return err
		}
		httpServer := &http.Server{
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		s.httpListener = ln
		s.httpServer = httpServer

		s.workers.Add(1)
		go func() {
			defer s.workers.Done()
			if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server failed", log.Error(err))
			}
		}()
		s.logger.Info("Server listening", log.String("transport", "websocket"), log.String("addr", ln.Addr().String()))
	}

	if s.config.QUICAddr != "" {
		listener, err := s.listenQUIC()
		if err != nil {
			cancel()
			if s.httpServer != nil {
				_ = s.httpServer.Close()
			}
			s.workers.Wait()
			s.running.Store(false)
			s.logger.Error("Failed to create listener", log.Error(err))
			return err
		}
		s.quicListener = listener

		s.workers.Add(1)
		go func() {
			defer s.workers.Done()
			s.acceptQUIC(ctx, listener)
		}()
		s.logger.Info("Server listening",
			log.String("transport", "quic"),
			log.String("addr", listener.Addr().String()),
			log.Bool("self_signed", s.config.CertFile == ""))
	}

	lifecycle, err := s.manager.Bus().Subscribe(sim.EventSessionRemoved, s.onSessionRemoved)
	if err != nil {
		s.logger.Warn("Failed to watch session lifecycle", log.Error(err))
	}
	s.lifecycle = lifecycle
	s.cancel = cancel
	s.manager.Bus().AddObserver(s.monitor)

	s.logger.Info("Server started successfully")
	return nil
}

// Stop closes the listeners and every client connection, then waits for
// the connection goroutines to finish or ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	s.mu.RLock()
	cancel, httpServer, quicListener, lifecycle := s.cancel, s.httpServer, s.quicListener, s.lifecycle
	s.mu.RUnlock()

	cancel()
	s.manager.Bus().RemoveObserver(s.monitor)

	var errs error
	if err := s.manager.Bus().Unsubscribe(lifecycle); err != nil {
		errs = errors.Join(errs, err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if quicListener != nil {
		if err := quicListener.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	// Hijacked websocket connections are not tracked by http.Server; their
	// handlers are counted in s.workers instead.
	s.draining.Store(true)
	var clients []*ClientSession
	s.clients.Range(func(_, value any) bool {
		clients = append(clients, value.(*ClientSession))
		return true
	})
	_ = concurrent.ForEach(context.Background(), clients, 0, func(_ context.Context, c *ClientSession) error {
		_ = c.conn.Close()
		return nil
	})

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = errors.Join(errs, ctx.Err())
	}

	s.logger.Info("Server stopped")
	return errs
}

// Close stops the server if needed; it cannot be started again.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// onSessionRemoved disconnects a client whose session was removed from the
// manager by someone else, e.g. Manager.Close during shutdown. It runs on
// the remover's goroutine, so the close happens in the background.
func (s *Server) onSessionRemoved(event bus.Event) error {
	id, _ := event.Data().(string)
	v, ok := s.clients.Load(id)
	if !ok {
		return nil
	}
	client := v.(*ClientSession)
	client.logger.Info("Session removed, disconnecting client")
	go func() { _ = client.conn.Close() }()
	return nil
}

// Addr returns the bound websocket/HTTP address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpListener == nil {
		return nil
	}
	return s.httpListener.Addr()
}

// QUICAddr returns the bound QUIC address, or nil before Start.
func (s *Server) QUICAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quicListener == nil {
		return nil
	}
	return s.quicListener.Addr()
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	stats := Stats{
		Clients: s.clientCount.Load(),
		Running: s.running.Load(),
		Sim:     s.manager.GetStats(),
		Bus:     s.manager.Bus().GetMetrics(),
		Topics:  len(s.manager.Bus().GetTopics()),
	}
	s.clients.Range(func(_, value any) bool {
		stats.Dropped += value.(*ClientSession).dropped.Load()
		return true
	})
	if addr := s.Addr(); addr != nil {
		stats.HTTPAddr = addr.String()
	}
	if addr := s.QUICAddr(); addr != nil {
		stats.QUICAddr = addr.String()
	}
	return stats
}
