package blelink

import (
	"time"

	"github.com/duolink/duolink/internal/catalogue"
	"github.com/duolink/duolink/internal/engine"
)

// Manager owns the left and right Links, binds them to an Engine, and
// runs the initialize-on-connect handshake for each, mirroring the
// orchestration role ConnectionManager plays over the two per-side
// Connection objects in the original SDK.
type Manager struct {
	Engine *engine.Engine
	Left   *Link
	Right  *Link
	cat    *catalogue.Catalogue
}

// NewManager wires left and right into e and returns the Manager.
func NewManager(e *engine.Engine, left, right *Link) *Manager {
	e.Bind(engine.Left, left)
	e.Bind(engine.Right, right)
	return &Manager{
		Engine: e,
		Left:   left,
		Right:  right,
		cat:    catalogue.New(e),
	}
}

// ConnectAndInitialize connects both sides. Connect already carries
// each Link through service discovery and notification subscription
// (no MTU negotiation is done), so the moment it returns the side is
// promoted straight to INITIALIZED, per spec.md §4.3's lifecycle
// definition. Only then is the initialize() handshake frame sent, as
// an ordinary command like any other.
func (m *Manager) ConnectAndInitialize() error {
	for _, side := range []engine.Side{engine.Left, engine.Right} {
		if err := m.Engine.Connect(side); err != nil {
			return err
		}
		m.Engine.SetState(side, engine.StateInitialized)
		if _, err := m.cat.Initialize(side).WaitTimeout(5 * time.Second); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect tears down both links.
func (m *Manager) Disconnect() {
	m.Engine.Disconnect(engine.Left)
	m.Engine.Disconnect(engine.Right)
}
