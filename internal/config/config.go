// Package config holds process-wide tunables for the protocol engine.
// Persistent configuration (files, flags beyond verbosity) is out of
// scope; these are package vars in the same spirit as a header full of
// #define constants.
package config

import (
	"fmt"
	"time"
)

// Verbose enables debug output when true.
var Verbose bool

// Debugf prints debug messages when Verbose is true.
func Debugf(format string, args ...any) {
	if Verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

// DefaultDeadline is the time a command waits for a matching response
// before failing with Timeout, absent an explicit per-command deadline.
var DefaultDeadline = 1000 * time.Millisecond

// MaxPayload is the device MTU budget the codec assumes: 512 bytes
// minus the lower transport layer's ~3 bytes of framing overhead.
const MaxPayload = 512 - 3

// TextChunkSize is the maximum chunk payload for text-display packets.
const TextChunkSize = 180

// JSONChunkSize is the maximum chunk payload for notification-config
// JSON packets.
const JSONChunkSize = 180

// WhitelistChunkSize is the maximum chunk payload for whitelist JSON
// packets, which carry a shorter per-chunk budget than notifications.
const WhitelistChunkSize = 176

// BitmapChunkSize is the maximum chunk payload for bitmap transfer
// packets.
const BitmapChunkSize = 194

// MaxChunks is the largest chunk count the single-byte chunk-index
// framing can address.
const MaxChunks = 255
