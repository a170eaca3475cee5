// Package config loads, validates and watches the netswitch configuration
// file.
package config
