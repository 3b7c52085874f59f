package input

import "errors"

var (
	ErrUnknownEvent = errors.New("unknown input event")
	ErrUnknownStick = errors.New("unknown joystick")
	ErrInvalidValue = errors.New("input value is not finite")
)
