package client

import "errors"

var (
	// ErrBind is returned when the local socket cannot be created.
	ErrBind = errors.New("bind failed")

	// ErrInput ends the client when a line cannot be read from input,
	// including end of input.
	ErrInput = errors.New("input failed")

	// ErrDatagramIO ends the client when a request or reply cannot be exchanged.
	ErrDatagramIO = errors.New("datagram i/o failed")

	// ErrNotImplemented is returned by roles without an implementation.
	ErrNotImplemented = errors.New("not implemented")
)
