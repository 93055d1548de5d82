package client

import "fmt"

// Connect is the TCP client role. It has no implementation; use a tool such as
// telnet or nc against the TCP server instead.
func Connect(address string) error {
	return fmt.Errorf("%w: tcp client for %s", ErrNotImplemented, address)
}
