package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/duolink/duolink/internal/catalogue"
	"github.com/duolink/duolink/internal/engine"
	"github.com/duolink/duolink/internal/protocol"
	"github.com/duolink/duolink/internal/transport/blelink"
)

const maxLogLines = 12

type action struct {
	title string
	run   func(m *Model) tea.Cmd
}

// sideStatus is the dashboard's view of one side's live state.
type sideStatus struct {
	state   engine.State
	battery string
	err     string
}

// Model is the Bubbletea model for the live status dashboard: left
// and right connection/battery status, a scrolling feed of
// unsolicited events, and a small menu of operations to run against
// both sides.
type Model struct {
	manager *blelink.Manager
	cat     *catalogue.Catalogue

	cursor  int
	actions []action

	left  sideStatus
	right sideStatus

	brightness int
	silent     bool

	events []string

	errorMsg string
	width    int
	height   int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles

	eventCh chan string
}

// eventMsg carries one formatted event line into the Bubbletea
// update loop.
type eventMsg string

// resultMsg carries the outcome of an operation triggered from the
// menu. When err is set, text and err are shown as the error line;
// on success the error line is cleared and text is not shown.
type resultMsg struct {
	text string
	err  error
}

// NewModel builds a dashboard Model bound to an already-constructed
// Manager and Catalogue. Event listeners are registered so that
// battery/tap/case notifications stream into the on-screen log.
func NewModel(manager *blelink.Manager, cat *catalogue.Catalogue) *Model {
	m := &Model{
		manager:    manager,
		cat:        cat,
		brightness: 50,
		help:       help.New(),
		spinner:    spinner.New(),
		styles:     DefaultStyles(),
		keys:       DefaultKeyMap(),
		eventCh:    make(chan string, 32),
	}
	m.actions = []action{
		{"Connect both sides", (*Model).runConnect},
		{"Refresh battery", (*Model).runRefreshBattery},
		{"Increase brightness", (*Model).runBrightnessUp},
		{"Decrease brightness", (*Model).runBrightnessDown},
		{"Toggle silent mode", (*Model).runToggleSilent},
		{"Clear screens", (*Model).runClearScreen},
	}
	m.registerEventListeners()
	return m
}

func (m *Model) registerEventListeners() {
	push := func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		select {
		case m.eventCh <- line:
		default:
		}
	}
	for _, l := range protocol.EventListeners(protocol.EventHandlers{
		OnDoubleTap: func(v any, side engine.Side) { push("%s double tap", side) },
		OnSingleTap: func(v any, side engine.Side) { push("%s single tap (reported=%v)", side, v) },
		OnTripleTap: func(v any, side engine.Side) { push("%s triple tap", side) },
		OnLongPressHeld: func(v any, side engine.Side) {
			push("%s long press held", side)
		},
		OnLongPressRelease: func(v any, side engine.Side) {
			push("%s long press released", side)
		},
		OnBlePairedSuccess: func(v any, side engine.Side) { push("%s BLE paired", side) },
		OnCaseOpen:         func(v any, side engine.Side) { push("case open (%s)", side) },
		OnCaseClosed:       func(v any, side engine.Side) { push("case closed (%s)", side) },
		OnCaseCharging:     func(v any, side engine.Side) { push("case charging (%s)", side) },
		OnGlassesBattery:   func(v any, side engine.Side) { push("%s glasses battery %v%%", side, v) },
		OnCaseBattery:      func(v any, side engine.Side) { push("case battery %v%% (%s)", v, side) },
	}) {
		m.manager.Engine.RegisterListener(l)
	}
}

// waitForEvent returns a tea.Cmd that blocks for the next pushed
// event line, re-armed after every Update.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.eventCh)
	}
}

// Init starts the spinner and the event-feed listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *Model) runConnect() tea.Cmd {
	return func() tea.Msg {
		err := m.manager.ConnectAndInitialize()
		if err != nil {
			return resultMsg{text: "connect failed", err: err}
		}
		return resultMsg{text: "connected and initialized"}
	}
}

func (m *Model) runRefreshBattery() tea.Cmd {
	return func() tea.Msg {
		lh := m.cat.GetBatteryInfo(protocol.Left)
		rh := m.cat.GetBatteryInfo(protocol.Right)
		lv, lerr := lh.WaitTimeout(3 * time.Second)
		rv, rerr := rh.WaitTimeout(3 * time.Second)
		if lerr == nil {
			m.left.battery = fmt.Sprintf("%d%%", lv)
		} else {
			m.left.err = lerr.Error()
		}
		if rerr == nil {
			m.right.battery = fmt.Sprintf("%d%%", rv)
		} else {
			m.right.err = rerr.Error()
		}
		return resultMsg{text: "battery refreshed"}
	}
}

func (m *Model) runBrightnessUp() tea.Cmd  { return m.setBrightness(m.brightness + 10) }
func (m *Model) runBrightnessDown() tea.Cmd { return m.setBrightness(m.brightness - 10) }

func (m *Model) setBrightness(level int) tea.Cmd {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	m.brightness = level
	return func() tea.Msg {
		_, err := m.cat.SetBrightness(protocol.Both, level, true).WaitTimeout(2 * time.Second)
		return resultMsg{text: fmt.Sprintf("brightness -> %d", level), err: err}
	}
}

func (m *Model) runToggleSilent() tea.Cmd {
	m.silent = !m.silent
	silent := m.silent
	return func() tea.Msg {
		_, err := m.cat.SetSilentMode(protocol.Both, silent).WaitTimeout(2 * time.Second)
		return resultMsg{text: fmt.Sprintf("silent mode -> %v", silent), err: err}
	}
}

func (m *Model) runClearScreen() tea.Cmd {
	return func() tea.Msg {
		_, err := m.cat.ClearScreen(protocol.Both).WaitTimeout(2 * time.Second)
		return resultMsg{text: "cleared", err: err}
	}
}

// Update handles key presses and async command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.events = append(m.events, string(msg))
		if len(m.events) > maxLogLines {
			m.events = m.events[len(m.events)-maxLogLines:]
		}
		return m, m.waitForEvent()

	case resultMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("%s: %v", msg.text, msg.err)
		} else {
			m.errorMsg = ""
		}
		m.left.state = m.manager.Engine.State(engine.Left)
		m.right.state = m.manager.Engine.State(engine.Right)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			return m, m.actions[m.cursor].run(&m)
		case key.Matches(msg, m.keys.Connect):
			return m, m.runConnect()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.runRefreshBattery()
		case key.Matches(msg, m.keys.BrightUp):
			return m, m.runBrightnessUp()
		case key.Matches(msg, m.keys.BrightDown):
			return m, m.runBrightnessDown()
		case key.Matches(msg, m.keys.Silent):
			return m, m.runToggleSilent()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("duolink dashboard"))
	b.WriteString("\n\n")

	b.WriteString(m.renderSide("LEFT", m.left))
	b.WriteString(m.renderSide("RIGHT", m.right))
	b.WriteString("\n")

	for i, a := range m.actions {
		cursor := "  "
		style := m.styles.MenuItem
		if i == m.cursor {
			cursor = "> "
			style = m.styles.MenuItemSelected
		}
		b.WriteString(cursor + style.Render(a.title) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Recent events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(m.styles.Muted.Render("  (none yet)") + "\n")
	}
	for _, line := range m.events {
		b.WriteString("  " + line + "\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errorMsg) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return m.styles.App.Render(b.String())
}

func (m Model) renderSide(label string, s sideStatus) string {
	stateStyle := m.styles.StatusOffline
	if s.state == engine.StateInitialized {
		stateStyle = m.styles.StatusOnline
	}
	battery := s.battery
	if battery == "" {
		battery = "?"
	}
	return fmt.Sprintf("%s %s  %s %s\n",
		m.styles.StatusKey.Render(label),
		stateStyle.Render(s.state.String()),
		m.styles.StatusKey.Render("battery"),
		m.styles.StatusValue.Render(battery),
	)
}
