package sim

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrMaxSessionsReached = errors.New("maximum sessions reached")
	ErrManagerRunning     = errors.New("manager loop is already running")
	ErrInvalidTickRate    = errors.New("tick rate must be positive")
	ErrInvalidConfig      = errors.New("invalid session configuration")
)
