package server

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/planetoid/internal/core/observability/log"
)

// ALPN is the application protocol negotiated on QUIC connections.
const ALPN = "planetoid"

const closeLinger = 250 * time.Millisecond

// FrameHello opens every QUIC stream and carries the credentials a
// websocket client passes in its URL.
const FrameHello = "hello"

type HelloFrame struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// quicConn carries newline-delimited JSON frames over one bidirectional stream.
type quicConn struct {
	conn         *quic.Conn
	stream       *quic.Stream
	scanner      *bufio.Scanner
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

func newQUICConn(conn *quic.Conn, stream *quic.Stream, cfg Config) *quicConn {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 4096), int(cfg.MaxMessageSize))
	return &quicConn{
		conn:         conn,
		stream:       stream,
		scanner:      scanner,
		writeTimeout: cfg.WriteTimeout,
		idleTimeout:  cfg.IdleTimeout,
	}
}

func (c *quicConn) ReadFrame() ([]byte, error) {
	_ = c.stream.SetReadDeadline(time.Now().Add(c.idleTimeout))
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "read QUIC frame")
		}
		return nil, errors.New("QUIC stream closed")
	}
	line := c.scanner.Bytes()
	data := make([]byte, len(line))
	copy(data, line)
	return data, nil
}

func (c *quicConn) WriteFrame(data []byte) error {
	_ = c.stream.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	buf := make([]byte, 0, len(data)+1)
	buf = append(append(buf, data...), '\n')
	if _, err := c.stream.Write(buf); err != nil {
		return errors.Wrap(err, "write QUIC frame")
	}
	return nil
}

func (c *quicConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// Close finishes the stream and gives the peer closeLinger to read what is
// still in flight before the connection is torn down.
func (c *quicConn) Close() error {
	_ = c.stream.Close()
	select {
	case <-c.conn.Context().Done():
		return nil
	case <-time.After(closeLinger):
	}
	return c.conn.CloseWithError(0, "closed")
}

// listenQUIC starts the QUIC listener.
func (s *Server) listenQUIC() (*quic.Listener, error) {
	tlsConfig, err := s.tlsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create TLS config")
	}

	quicConfig := &quic.Config{
		MaxIdleTimeout:     s.config.IdleTimeout,
		KeepAlivePeriod:    s.config.IdleTimeout / 2,
		MaxIncomingStreams: 1,
	}

	listener, err := quic.ListenAddr(s.config.QUICAddr, tlsConfig, quicConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start QUIC listener")
	}
	return listener, nil
}

// acceptQUIC accepts connections until ctx is done or the listener closes.
func (s *Server) acceptQUIC(ctx context.Context, listener *quic.Listener) {
	s.logger.Debug("QUIC acceptor started")
	defer s.logger.Debug("QUIC acceptor stopped")

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return
			}
			s.logger.Error("Failed to accept QUIC connection", log.Error(err))
			continue
		}

		s.workers.Add(1)
		go func() {
			defer s.workers.Done()
			s.handleQUIC(ctx, conn)
		}()
	}
}

func (s *Server) handleQUIC(ctx context.Context, conn *quic.Conn) {
	acceptCtx, cancel := context.WithTimeout(ctx, s.config.IdleTimeout)
	stream, err := conn.AcceptStream(acceptCtx)
	cancel()
	if err != nil {
		s.logger.Debug("QUIC client opened no stream",
			log.String("remote_addr", conn.RemoteAddr().String()),
			log.Error(err))
		_ = conn.CloseWithError(0, "no stream")
		return
	}

	fc := newQUICConn(conn, stream, s.config)

	data, err := fc.ReadFrame()
	if err != nil {
		_ = fc.Close()
		return
	}
	var hello HelloFrame
	if err = json.Unmarshal(data, &hello); err != nil || hello.Type != FrameHello {
		s.logger.Debug("Invalid QUIC hello",
			log.String("remote_addr", fc.RemoteAddr()),
			log.String("type", hello.Type),
			log.ErrorWithKey("decode_error", err))
		_ = s.writeDirect(fc, EncodingJSON, newErrorFrame(ErrInvalidFrame))
		_ = fc.Close()
		return
	}
	if err = s.checkToken(hello.Token); err != nil {
		s.logger.Warn("Rejected QUIC client",
			log.String("remote_addr", fc.RemoteAddr()),
			log.Error(err))
		_ = s.writeDirect(fc, EncodingJSON, newErrorFrame(err))
		_ = fc.Close()
		return
	}

	s.serveClient(ctx, fc, "quic", EncodingJSON)
}

func (s *Server) tlsConfig() (*tls.Config, error) {
	if s.config.CertFile == "" {
		return GenerateSelfSignedTLS()
	}

	cert, err := tls.LoadX509KeyPair(s.config.CertFile, s.config.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load TLS certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13, // QUIC requires TLS 1.3
	}, nil
}

// GenerateSelfSignedTLS generates a self-signed TLS certificate for development
func GenerateSelfSignedTLS() (*tls.Config, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"planetoid"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{certDER}, PrivateKey: privateKey}},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}
