package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMaxClientsReached    = errors.New("maximum clients reached")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidFrame         = errors.New("invalid frame")
	ErrUnknownEncoding      = errors.New("unknown encoding")
	ErrInvalidConfig        = errors.New("invalid server configuration")
)
