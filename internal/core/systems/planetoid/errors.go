package planetoid

import "errors"

var (
	ErrInvalidRadius = errors.New("surface radius must be positive and finite")
	ErrInvalidCenter = errors.New("surface center must be finite")
	ErrInvalidConfig = errors.New("invalid planetoid configuration")
)
