package event

import "errors"

var (
	// ErrBufferFull is returned when the channel transport buffer is full.
	ErrBufferFull = errors.New("event buffer is full")

	// ErrTransportClosed is returned when dispatching after Close.
	ErrTransportClosed = errors.New("event transport is closed")
)
