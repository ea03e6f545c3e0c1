package protocol

import (
	"testing"

	"github.com/duolink/duolink/internal/engine"
)

// TestCaseBatteryListenerScenario6 reproduces spec.md §8 Scenario 6
// verbatim: injecting [0xF5, 0x0F, 0x20] on LEFT with no command
// pending must fire the case-battery listener with (0x20*100)/64 = 50.
func TestCaseBatteryListenerScenario6(t *testing.T) {
	e := engine.New()

	var got any
	var gotSide engine.Side
	fired := false
	for _, l := range EventListeners(EventHandlers{
		OnCaseBattery: func(v any, side engine.Side) {
			fired = true
			got = v
			gotSide = side
		},
	}) {
		e.RegisterListener(l)
	}

	e.OnBytes(engine.Left, []byte{EventPrefix, evtCaseBattery, 0x20})

	if !fired {
		t.Fatal("expected case-battery listener to fire")
	}
	if gotSide != engine.Left {
		t.Fatalf("expected Left, got %v", gotSide)
	}
	if got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestGlassesBatteryListenerClampsAboveSixtyFour(t *testing.T) {
	e := engine.New()

	var got any
	for _, l := range EventListeners(EventHandlers{
		OnGlassesBattery: func(v any, side engine.Side) { got = v },
	}) {
		e.RegisterListener(l)
	}

	// data[2] = 0xFF is well above 64; the parser clamps before scaling.
	e.OnBytes(engine.Right, []byte{EventPrefix, evtGlassesBattery, 0xFF})

	if got != 100 {
		t.Fatalf("expected clamp to 64 -> 100%%, got %v", got)
	}
}

// TestSingleTapListenerReproducesSourceBug locks in spec.md §9's
// documented discrepancy: the single-tap parser always returns
// data[1] == 0x00, which the predicate (data[1] == 0x01) has already
// ruled out, so a genuine single-tap frame always delivers false.
func TestSingleTapListenerReproducesSourceBug(t *testing.T) {
	e := engine.New()

	var got any
	fired := false
	for _, l := range EventListeners(EventHandlers{
		OnSingleTap: func(v any, side engine.Side) {
			fired = true
			got = v
		},
	}) {
		e.RegisterListener(l)
	}

	e.OnBytes(engine.Left, []byte{EventPrefix, evtSingleTap})

	if !fired {
		t.Fatal("expected single-tap listener to fire on a genuine single-tap frame")
	}
	if got != false {
		t.Fatalf("expected the buggy parser to report false, got %v", got)
	}
}

func TestDoubleTapListenerReportsTrue(t *testing.T) {
	e := engine.New()

	var got any
	for _, l := range EventListeners(EventHandlers{
		OnDoubleTap: func(v any, side engine.Side) { got = v },
	}) {
		e.RegisterListener(l)
	}

	e.OnBytes(engine.Left, []byte{EventPrefix, evtDoubleTap})

	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestLongPressHeldFiresOnEitherAcceptedByte(t *testing.T) {
	for _, second := range []byte{evtLongPressHeldAlt, evtLongPressHeldOrRel} {
		e := engine.New()
		var got any
		for _, l := range EventListeners(EventHandlers{
			OnLongPressHeld: func(v any, side engine.Side) { got = v },
		}) {
			e.RegisterListener(l)
		}

		e.OnBytes(engine.Left, []byte{EventPrefix, second})

		if got != true {
			t.Fatalf("second-byte 0x%02X: expected long-press-held to fire true, got %v", second, got)
		}
	}
}

func TestLongPressReleaseOnlyFiresOn0x18(t *testing.T) {
	e := engine.New()
	var got any
	fired := false
	for _, l := range EventListeners(EventHandlers{
		OnLongPressRelease: func(v any, side engine.Side) {
			fired = true
			got = v
		},
	}) {
		e.RegisterListener(l)
	}

	e.OnBytes(engine.Left, []byte{EventPrefix, evtLongPressHeldAlt})
	if fired {
		t.Fatalf("expected long-press-release not to fire on 0x%02X", evtLongPressHeldAlt)
	}

	e.OnBytes(engine.Left, []byte{EventPrefix, evtLongPressHeldOrRel})

	if !fired || got != true {
		t.Fatalf("expected long-press-release to fire true, fired=%v got=%v", fired, got)
	}
}

func TestNilHandlersAreNotRegistered(t *testing.T) {
	listeners := EventListeners(EventHandlers{
		OnCaseOpen: func(v any, side engine.Side) {},
	})
	if len(listeners) != 1 {
		t.Fatalf("expected exactly 1 listener for 1 non-nil handler, got %d", len(listeners))
	}
	if listeners[0].ID != "case-open" {
		t.Fatalf("expected case-open listener, got %q", listeners[0].ID)
	}
}
