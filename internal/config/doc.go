// Package config provides configuration loading and validation for the socket toolkit.
// It handles YAML-based configuration for logging, the echo buffers and the optional
// metrics endpoint, falling back to defaults for anything the file leaves out.
package config
