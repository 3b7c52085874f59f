package movement

import "errors"

var (
	ErrInvalidTuning = errors.New("invalid movement tuning")
	ErrInvalidHeight = errors.New("agent height must be positive and finite")
)
