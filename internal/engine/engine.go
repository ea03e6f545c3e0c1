// Package engine implements the protocol engine of spec.md §4.3: the
// per-side request/response correlator, the side lifecycle state
// machine, and the event-listener dispatcher. It is transport- and
// opcode-agnostic — the wire format lives in internal/protocol and the
// high-level operations live in internal/catalogue.
package engine

import (
	"sync"
	"time"

	"github.com/duolink/duolink/internal/config"
)

// Engine owns both per-side Pending Registries and the listener
// table, fans outbound packets to the correct transport, and
// correlates inbound bytes to pending commands or listeners.
type Engine struct {
	registries map[Side]*registry
	listeners  *listenerTable

	mu         sync.Mutex
	transports map[Side]Transport
	states     map[Side]State

	// submitMu serializes the admit-then-insert sequence of Submit
	// across every target registry at once, so two concurrent Submit
	// calls targeting overlapping sides can't both pass admit before
	// either inserts (which would violate invariant I1). It is never
	// held across a transport write.
	submitMu sync.Mutex

	onUnknownFrame func(data []byte, side Side)
}

// New creates an Engine with both sides DISCONNECTED and no
// transports attached. Attach transports with Bind before calling
// Connect.
func New() *Engine {
	return &Engine{
		registries: map[Side]*registry{
			Left:  newRegistry(),
			Right: newRegistry(),
		},
		listeners: newListenerTable(),
		transports: map[Side]Transport{},
		states: map[Side]State{
			Left:  StateDisconnected,
			Right: StateDisconnected,
		},
	}
}

// OnUnknownFrame installs a hook invoked whenever an inbound frame
// matches neither a pending command nor a listener. The default
// behaviour (no hook installed) is to log via config.Debugf, per
// spec.md §4.3 step 4.
func (e *Engine) OnUnknownFrame(fn func(data []byte, side Side)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUnknownFrame = fn
}

// Bind attaches a Transport for side and wires its receive callback
// into the engine's dispatch path.
func (e *Engine) Bind(side Side, t Transport) {
	e.mu.Lock()
	e.transports[side] = t
	e.mu.Unlock()
	t.OnReceive(func(data []byte) {
		e.OnBytes(side, data)
	})
}

// Connect connects the transport bound to side and marks it
// CONNECTED on success; callers still need to call SetState(side,
// StateInitialized) once MTU negotiation, service discovery, and
// notification subscription complete, per spec.md §4.3.
func (e *Engine) Connect(side Side) error {
	e.mu.Lock()
	t := e.transports[side]
	e.mu.Unlock()
	if t == nil {
		return newError("connect", KindTransportError, nil)
	}
	e.SetState(side, StateConnecting)
	if err := t.Connect(); err != nil {
		e.SetState(side, StateDisconnected)
		return newError("connect", KindTransportError, err)
	}
	e.SetState(side, StateConnected)
	return nil
}

// Disconnect disconnects the transport bound to side. All commands
// pending on that side fail with SideDisconnected.
func (e *Engine) Disconnect(side Side) error {
	e.mu.Lock()
	t := e.transports[side]
	e.mu.Unlock()
	e.SetState(side, StateDisconnected)
	if t == nil {
		return nil
	}
	return t.Disconnect()
}

// SetState records side's lifecycle state. Transitioning out of
// INITIALIZED (to any other state) fails every command currently
// pending on that side's registry with SideDisconnected, per spec.md
// §4.3 and invariant I2. A drained command may also be pending on the
// other side's registry (a BOTH-targeted command) — it is removed
// from there too, mirroring OnBytes's own removal-from-every-target
// pattern, so it can't leak and block future Submits on that prefix.
func (e *Engine) SetState(side Side, state State) {
	e.mu.Lock()
	prev := e.states[side]
	e.states[side] = state
	e.mu.Unlock()

	if prev == StateInitialized && state != StateInitialized {
		for _, p := range e.registries[side].drain() {
			for _, t := range p.Side().Targets() {
				if t != side {
					e.registries[t].remove(p)
				}
			}
			p.fail(newError("side", KindSideDisconnected, nil))
		}
	}
}

// State reports side's current lifecycle state.
func (e *Engine) State(side Side) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[side]
}

func (e *Engine) isInitialized(side Side) bool {
	return e.State(side) == StateInitialized
}

// RegisterListener adds or replaces (by ID) an unsolicited-frame
// listener, per spec.md §4.4.
func (e *Engine) RegisterListener(l Listener) {
	e.listeners.register(l)
}

// DeregisterListener removes a listener by ID. Removing an unknown ID
// is a no-op.
func (e *Engine) DeregisterListener(id string) {
	e.listeners.deregister(id)
}

// Handle is returned by Submit: it is the command's completion
// Future plus the ability to cancel it before it resolves.
type Handle[T any] struct {
	*Future[T]
	cancel func()
}

// Cancel removes the command from its registries and completes its
// future with Cancelled. Calling it after the command has already
// resolved or timed out is a no-op (I2 holds: exactly one completion).
func (h *Handle[T]) Cancel() { h.cancel() }

// Failed builds a Handle whose Future is already resolved with err.
// It is for callers rejecting an operation before anything would be
// submitted to the engine — a validation failure, an unsupported
// operation — so the caller still gets back the same Handle[T] shape
// as a real submission.
func Failed[T any](err error) *Handle[T] {
	f := newFuture[T]()
	f.fail(err)
	return &Handle[T]{Future: f, cancel: func() {}}
}

// Submit is spec.md §4.3's submit(cmd) -> Promise<T>. It always
// returns a non-nil Handle; every rejection reason (SideNotReady,
// Busy, TransportError) surfaces through the Handle's Future rather
// than a synchronous error, so callers have one place to look
// regardless of which step failed.
func Submit[T any](e *Engine, spec Command[T]) *Handle[T] {
	deadline := spec.Deadline
	if deadline == 0 {
		deadline = config.DefaultDeadline
	}
	cmd := newCommand(spec, deadline)
	targets := spec.Target.Targets()

	handle := &Handle[T]{
		Future: cmd.future,
		cancel: func() {
			cmd.fail(newError("submit", KindCancelled, nil))
			for _, t := range targets {
				e.registries[t].remove(cmd)
			}
		},
	}

	for _, t := range targets {
		if !e.isInitialized(t) {
			cmd.fail(newError("submit", KindSideNotReady, nil))
			return handle
		}
	}

	// admit and insert happen under one lock spanning every target
	// registry, so a concurrent Submit targeting an overlapping side
	// can't slip an admit in between this call's admit and insert.
	e.submitMu.Lock()
	for _, t := range targets {
		if !e.registries[t].admit(cmd) {
			e.submitMu.Unlock()
			cmd.fail(newError("submit", KindBusy, nil))
			return handle
		}
	}
	for _, t := range targets {
		e.registries[t].insert(cmd)
	}
	e.submitMu.Unlock()

	e.armDeadline(cmd, targets, deadline)

	for _, t := range targets {
		tr := e.transports[t]
		if tr == nil {
			e.failAndRemove(cmd, targets, newError("submit", KindTransportError, nil))
			return handle
		}
		for _, packet := range cmd.packets {
			if err := tr.Send(packet); err != nil {
				e.failAndRemove(cmd, targets, newError("submit", KindTransportError, err))
				return handle
			}
		}
	}

	return handle
}

func (e *Engine) armDeadline(cmd pending, targets []Side, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cmd.fail(newError("submit", KindTimeout, nil))
		for _, t := range targets {
			e.registries[t].remove(cmd)
		}
	})
	cmd.setTimer(timer)
}

func (e *Engine) failAndRemove(cmd pending, targets []Side, err error) {
	cmd.fail(err)
	for _, t := range targets {
		e.registries[t].remove(cmd)
	}
}

// SubmitAndWait is the submit_and_wait(cmd, deadline) convenience of
// spec.md §4.3: it submits cmd and blocks up to deadline for the
// result, returning a Timeout error if the future hasn't resolved by
// then. It does not cancel the underlying command on timeout — the
// command keeps running against its own deadline.
func SubmitAndWait[T any](e *Engine, spec Command[T], deadline time.Duration) (T, error) {
	h := Submit(e, spec)
	return h.WaitTimeout(deadline)
}

// OnBytes is spec.md §4.3's on_bytes(data, side): it correlates data
// to pending commands and to listeners independently, and logs an
// "unknown frame" if neither matched.
func (e *Engine) OnBytes(side Side, data []byte) {
	matched := e.registries[side].matches(data)
	for _, cmd := range matched {
		for _, t := range cmd.Side().Targets() {
			e.registries[t].remove(cmd)
		}
		cmd.resolve(data)
	}

	listenerMatched := e.listeners.dispatch(data, side)

	if len(matched) == 0 && !listenerMatched {
		e.mu.Lock()
		hook := e.onUnknownFrame
		e.mu.Unlock()
		if hook != nil {
			hook(data, side)
		} else {
			config.Debugf("unknown frame on %s: %X", side, data)
		}
	}
}
