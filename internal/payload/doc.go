// Package payload holds the UTF-8 decoding applied to payloads before they are
// printed by the echo servers and the UDP client.
package payload
