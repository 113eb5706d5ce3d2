package core

import "errors"

var (
	ErrUnknownCode     = errors.New("unknown code")
	ErrShortPayload    = errors.New("short payload")
	ErrNotRunnable     = errors.New("device is not runnable")
	ErrDeviceMismatch  = errors.New("id bound to another device")
	ErrUnknownDevice   = errors.New("no device with this id")
	ErrAnonymousDevice = errors.New("runnable device needs an id")
	ErrDuplicateID     = errors.New("device id already registered")
	ErrInvalidRange    = errors.New("invalid range")
	ErrRegistration    = errors.New("handler registration rejected")
	ErrNoDriver        = errors.New("hardware driver not configured")
)
