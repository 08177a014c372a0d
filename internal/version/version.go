// Package version contains information on the current version of sentree.
// It is split from the main program for easy use.
package version

// Current is the version of the sentree engine and CLI.
const Current = "1.0.0"

// ServerCurrent is the version of the sentree HTTP parse service.
const ServerCurrent = "1.0.0"
