// Package server implements the TCP and UDP echo servers and the HTTP endpoint
// exposing their Prometheus metrics.
//
// The TCP server hands every accepted connection to its own goroutine. The UDP
// server answers datagrams one at a time from a single socket and keeps no state
// about its peers.
package server
