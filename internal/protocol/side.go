// Package protocol implements the Frame Codec of spec.md §4.1: pure
// functions that encode application operations into outbound packets
// and decode raw response bytes into typed results. Nothing in here
// holds state or touches a transport — that split mirrors the
// teacher's internal/protocol package, which kept its binme envelope
// encode/decode pure and let internal/ble own the stateful send/wait.
package protocol

import "github.com/duolink/duolink/internal/engine"

// Side re-exports engine.Side so callers building packets don't need
// to import both packages just to say protocol.Left.
type Side = engine.Side

const (
	Left  = engine.Left
	Right = engine.Right
	Both  = engine.Both
)
