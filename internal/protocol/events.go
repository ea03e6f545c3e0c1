package protocol

import "github.com/duolink/duolink/internal/engine"

// Touch and wear event second-bytes, per spec.md §4.4's standard
// listener table (opcode prefix 0xF5).
const (
	evtDoubleTap         = 0x00
	evtSingleTap         = 0x01
	evtTripleTap         = 0x05
	evtCaseOpen          = 0x08
	evtGlassesBattery    = 0x0A
	evtCaseClosed        = 0x0B
	evtCaseCharging      = 0x0E
	evtCaseBattery       = 0x0F
	evtBlePairedSuccess  = 0x11
	evtLongPressHeldAlt  = 0x17
	evtLongPressHeldOrRel = 0x18
)

func isEventFrame(data []byte, second byte) bool {
	return len(data) > 1 && data[0] == EventPrefix && data[1] == second
}

// EventListeners builds the standard set of Listener values for the
// touch, wear, and case events of spec.md §4.4. Callers register
// whichever of these they need via engine.RegisterListener; each
// carries a stable ID so re-registering replaces rather than
// duplicates.
func EventListeners(handlers EventHandlers) []engine.Listener {
	var out []engine.Listener
	add := func(id string, second byte, parse func([]byte) (any, error), handle func(any, engine.Side)) {
		if handle == nil {
			return
		}
		out = append(out, engine.Listener{
			ID: id,
			Predicate: func(data []byte, side engine.Side) bool {
				return isEventFrame(data, second)
			},
			Parse: func(data []byte, side engine.Side) (any, error) {
				return parse(data)
			},
			Handle: handle,
		})
	}

	add("double-tap", evtDoubleTap, parseDoubleTap, handlerOf(handlers.OnDoubleTap))
	// onSingleTap reproduces the documented source bug: the parser
	// always returns data[1] == 0x00, which can never be true once the
	// predicate has already required data[1] == 0x01. Single tap events
	// therefore always deliver false to the handler.
	add("single-tap", evtSingleTap, parseSingleTapBuggy, handlerOf(handlers.OnSingleTap))
	add("triple-tap", evtTripleTap, parseTripleTap, handlerOf(handlers.OnTripleTap))
	add("long-press-held", evtLongPressHeldAlt, parseLongPressHeld, handlerOf(handlers.OnLongPressHeld))
	out = appendLongPressHeldAlt(out, handlers)
	add("long-press-release", evtLongPressHeldOrRel, parseLongPressRelease, handlerOf(handlers.OnLongPressRelease))
	add("ble-paired-success", evtBlePairedSuccess, parseBlePairedSuccess, handlerOf(handlers.OnBlePairedSuccess))
	add("case-open", evtCaseOpen, parseBoolTrue, handlerOf(handlers.OnCaseOpen))
	add("case-closed", evtCaseClosed, parseBoolTrue, handlerOf(handlers.OnCaseClosed))
	add("case-charging", evtCaseCharging, parseBoolTrue, handlerOf(handlers.OnCaseCharging))
	add("glasses-battery", evtGlassesBattery, parseBatteryByte, handlerOf(handlers.OnGlassesBattery))
	add("case-battery", evtCaseBattery, parseBatteryByte, handlerOf(handlers.OnCaseBattery))

	return out
}

// appendLongPressHeldAlt registers the long-press-held predicate's
// second accepted byte (0x18) under its own listener ID, since a
// single Listener only carries one predicate function; spec.md §4.4
// lists "0x17 or 0x18" for this event, so both second-bytes route to
// the same handler.
func appendLongPressHeldAlt(out []engine.Listener, handlers EventHandlers) []engine.Listener {
	if handlers.OnLongPressHeld == nil {
		return out
	}
	return append(out, engine.Listener{
		ID: "long-press-held-alt",
		Predicate: func(data []byte, side engine.Side) bool {
			return isEventFrame(data, evtLongPressHeldOrRel)
		},
		Parse: func(data []byte, side engine.Side) (any, error) {
			return parseLongPressHeld(data)
		},
		Handle: handlerOf(handlers.OnLongPressHeld),
	})
}

func handlerOf(fn func(any, engine.Side)) func(any, engine.Side) {
	return fn
}

func parseDoubleTap(data []byte) (any, error)        { return data[1] == evtDoubleTap, nil }
func parseSingleTapBuggy(data []byte) (any, error)    { return data[1] == 0x00, nil }
func parseTripleTap(data []byte) (any, error)         { return data[1] == evtTripleTap, nil }
func parseBlePairedSuccess(data []byte) (any, error)  { return data[1] == evtBlePairedSuccess, nil }
func parseBoolTrue(data []byte) (any, error)          { return true, nil }

func parseLongPressHeld(data []byte) (any, error) {
	return data[1] == evtLongPressHeldAlt || data[1] == evtLongPressHeldOrRel, nil
}

func parseLongPressRelease(data []byte) (any, error) {
	return data[1] == evtLongPressHeldOrRel, nil
}

// parseBatteryByte applies spec.md §4.4's shared battery percentage
// formula: min(data[2], 64) * 100 / 64, data[2] treated as unsigned.
func parseBatteryByte(data []byte) (any, error) {
	if len(data) < 3 {
		return nil, &engine.Error{Kind: engine.KindDecodeError, Op: "battery-event"}
	}
	raw := data[2]
	pct := raw
	if pct > 64 {
		pct = 64
	}
	return int(pct) * 100 / 64, nil
}

// EventHandlers bundles the optional callbacks a caller wants wired
// for each standard event. A nil field skips registering that
// listener entirely.
type EventHandlers struct {
	OnDoubleTap         func(any, engine.Side)
	OnSingleTap         func(any, engine.Side)
	OnTripleTap         func(any, engine.Side)
	OnLongPressHeld     func(any, engine.Side)
	OnLongPressRelease  func(any, engine.Side)
	OnBlePairedSuccess  func(any, engine.Side)
	OnCaseOpen          func(any, engine.Side)
	OnCaseClosed        func(any, engine.Side)
	OnCaseCharging      func(any, engine.Side)
	OnGlassesBattery    func(any, engine.Side)
	OnCaseBattery       func(any, engine.Side)
}
