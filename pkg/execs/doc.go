// Package execs runs external commands with a controlled environment.
//
// It backs the probes that shell out to system tools (nmcli, iw, ping) and
// the command used to activate a profile.
package execs
