package server

import "errors"

var (
	// ErrBind is returned when the listening socket cannot be created.
	ErrBind = errors.New("bind failed")

	// ErrAccept ends the TCP accept loop.
	ErrAccept = errors.New("accept failed")

	// ErrConnectionIO ends a single TCP echo worker.
	ErrConnectionIO = errors.New("connection i/o failed")

	// ErrDatagramIO ends the UDP receive loop.
	ErrDatagramIO = errors.New("datagram i/o failed")
)
