package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/systems/board"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// wsConn adapts a gorilla connection to frameConn.
type wsConn struct {
	conn         *websocket.Conn
	messageType  int
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

func newWSConn(conn *websocket.Conn, enc Encoding, cfg Config) *wsConn {
	conn.SetReadLimit(cfg.MaxMessageSize)
	return &wsConn{
		conn:         conn,
		messageType:  enc.MessageType(),
		writeTimeout: cfg.WriteTimeout,
		idleTimeout:  cfg.IdleTimeout,
	}
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteFrame(data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(c.messageType, data)
}

func (c *wsConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }
func (c *wsConn) Close() error { return c.conn.Close() }

// authorize checks the shared token, taken from the "token" query parameter
// or a bearer Authorization header.
func (s *Server) authorize(r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return s.checkToken(token)
}

func (s *Server) checkToken(token string) error {
	if s.config.Token == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// upgrade authenticates and upgrades the request. On failure the HTTP
// response has already been written.
func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) (*wsConn, Encoding, bool) {
	if err := s.authorize(r); err != nil {
		s.logger.Warn("Rejected websocket client",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return nil, "", false
	}

	enc, err := ParseEncoding(r.URL.Query().Get("encoding"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Websocket upgrade failed", log.Error(err))
		return nil, "", false
	}
	return newWSConn(conn, enc, s.config), enc, true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Counted before the upgrade, while http.Server.Shutdown still tracks
	// the connection, so Stop's wait always covers it.
	s.workers.Add(1)
	defer s.workers.Done()

	conn, enc, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	s.serveClient(r.Context(), conn, "websocket", enc)
}

// handleBoard serves a private drag-and-drop board per connection.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.workers.Add(1)
	defer s.workers.Done()

	width := queryFloat(r, "width", 800)
	height := queryFloat(r, "height", 600)

	conn, enc, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	defer func() { _ = conn.Close() }()

	logger := s.logger.With(log.Component("board"), log.String("remote_addr", conn.RemoteAddr()))
	logger.Debug("Board opened")
	defer logger.Debug("Board closed")

	b := board.NewBoard(width, height)
	if err := s.writeDirect(conn, enc, boardFrame(b)); err != nil {
		return
	}

	for {
		data, err := conn.ReadFrame()
		if err != nil {
			return
		}

		var frame PointerFrame
		if err = enc.Unmarshal(data, &frame); err != nil {
			if s.writeDirect(conn, enc, newErrorFrame(ErrInvalidFrame)) != nil {
				return
			}
			continue
		}

		changed, err := applyPointer(b, frame)
		if err != nil {
			if s.writeDirect(conn, enc, newErrorFrame(err)) != nil {
				return
			}
			continue
		}
		if changed && s.writeDirect(conn, enc, boardFrame(b)) != nil {
			return
		}
	}
}

func applyPointer(b *board.Board, f PointerFrame) (bool, error) {
	if !physics.Finite(f.X) || !physics.Finite(f.Y) {
		return false, ErrInvalidFrame
	}
	switch f.Type {
	case FramePointerDown:
		return b.PointerDown(f.X, f.Y), nil
	case FramePointerMove:
		return b.PointerMove(f.X, f.Y), nil
	case FramePointerUp:
		_, dragging := b.Dragging()
		b.PointerUp()
		return dragging, nil
	case FrameResize:
		if !(f.Width > 0 && f.Height > 0) || !physics.Finite(f.Width) || !physics.Finite(f.Height) {
			return false, ErrInvalidFrame
		}
		b.Resize(f.Width, f.Height)
		return true, nil
	default:
		return false, ErrInvalidFrame
	}
}

func boardFrame(b *board.Board) BoardFrame {
	_, dragging := b.Dragging()
	width, height := b.Size()
	return BoardFrame{Type: FrameBoard, Width: width, Height: height, Pieces: b.Pieces(), Dragging: dragging}
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil || v <= 0 || !physics.Finite(v) {
		return def
	}
	return v
}
