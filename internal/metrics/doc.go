// Package metrics defines the Prometheus collectors shared by the echo servers and the UDP client.
package metrics
