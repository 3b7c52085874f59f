package server

import (
	"fmt"
	"time"
)

// Config holds server configuration
type Config struct {
	// Network settings. An empty address disables that listener.
	WebSocketAddr string `yaml:"websocket_addr"`
	QUICAddr      string `yaml:"quic_addr"`
	MaxClients    int    `yaml:"max_clients"`

	// Token, when set, must be presented by every client.
	Token string `yaml:"token"`

	// TLS for QUIC. A self-signed certificate is generated when empty.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// Message settings
	MaxMessageSize    int64         `yaml:"max_message_size"`
	MessageBufferSize int           `yaml:"message_buffer_size"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		WebSocketAddr:     "127.0.0.1:8080",
		QUICAddr:          "127.0.0.1:8443",
		MaxClients:        1000,
		MaxMessageSize:    64 * 1024, // 64KB
		MessageBufferSize: 256,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       time.Minute,
		ShutdownTimeout:   5 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.WebSocketAddr == "" && c.QUICAddr == "" {
		return fmt.Errorf("%w: no listener configured", ErrInvalidConfig)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("%w: cert_file and key_file must be set together", ErrInvalidConfig)
	}
	if c.MaxClients <= 0 || c.MaxMessageSize <= 0 || c.MessageBufferSize <= 0 {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}
