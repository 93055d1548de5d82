// Package client implements the client roles: an interactive UDP client that
// sends each line of input and prints the reply, and a placeholder TCP client.
package client
