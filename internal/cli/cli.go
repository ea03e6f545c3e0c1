// Package cli defines the kong command tree for duolinkctl. The
// teacher carried this package with a Kong-shaped CLI struct that no
// main ever parsed; this is that same struct shape, now actually
// wired up and pointed at the glasses instead of the SFP Wizard.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/duolink/duolink/internal/catalogue"
	"github.com/duolink/duolink/internal/config"
	"github.com/duolink/duolink/internal/dashboard"
	"github.com/duolink/duolink/internal/engine"
	"github.com/duolink/duolink/internal/protocol"
	"github.com/duolink/duolink/internal/transport/blelink"
)

// CLI is the root command structure for duolinkctl.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose debug output"`

	LeftName  string `help:"Substring matched against the advertised name of the left side." default:"_L_"`
	RightName string `help:"Substring matched against the advertised name of the right side." default:"_R_"`

	Dashboard  DashboardCmd     `cmd:"" default:"withargs" help:"Launch the live status dashboard (default)"`
	Brightness BrightnessCmd    `cmd:"" help:"Set display brightness"`
	Silent     SilentCmd        `cmd:"" help:"Toggle silent mode"`
	Mic        MicCmd           `cmd:"" help:"Toggle the microphone"`
	Text       TextCmd          `cmd:"" help:"Display a line of text"`
	Bitmap     BitmapCmd        `cmd:"" help:"Transfer a 1-bit bitmap from a file"`
	Battery    BatteryCmd       `cmd:"" help:"Query battery levels"`
	Firmware   FirmwareCmd      `cmd:"" help:"Query firmware version"`
	Clear      ClearCmd         `cmd:"" help:"Clear the display"`
	Notify     NotifyCmd        `cmd:"" help:"Push a notification config payload (JSON argument)"`
	Mode       DashboardModeCmd `cmd:"" name:"dashboard-mode" help:"Set the dashboard layout and sub-mode"`
	EventTail  EventTailCmd     `cmd:"" name:"event-tail" help:"Print touch/wear/case events as they arrive"`
}

// connect builds the two-sided BLE manager and runs the full
// connect/initialize sequence, common to every leaf command.
func connect(globals *CLI) (*blelink.Manager, *catalogue.Catalogue, error) {
	config.Verbose = globals.Verbose

	left := blelink.New("LEFT", matchesSubstring(globals.LeftName))
	right := blelink.New("RIGHT", matchesSubstring(globals.RightName))

	e := engine.New()
	m := blelink.NewManager(e, left, right)
	if err := m.ConnectAndInitialize(); err != nil {
		return nil, nil, err
	}
	return m, catalogue.New(e), nil
}

func matchesSubstring(needle string) blelink.NamePredicate {
	return func(name string) bool {
		return needle == "" || strings.Contains(name, needle)
	}
}

// --- Dashboard ---

type DashboardCmd struct{}

func (c *DashboardCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	return dashboard.Run(m, cat)
}

// --- Brightness ---

type BrightnessCmd struct {
	Level int  `arg:"" help:"Brightness level, 0-100."`
	Auto  bool `help:"Enable auto-brightness." default:"false"`
}

func (c *BrightnessCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	ok, err := cat.SetBrightness(protocol.Both, c.Level, c.Auto).WaitTimeout(2 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("brightness set: %v\n", ok)
	return nil
}

// --- Silent ---

type SilentCmd struct {
	On bool `arg:"" help:"true to enable silent mode, false to disable."`
}

func (c *SilentCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	ok, err := cat.SetSilentMode(protocol.Both, c.On).WaitTimeout(2 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("silent mode set: %v\n", ok)
	return nil
}

// --- Mic ---

type MicCmd struct {
	On bool `arg:"" help:"true to enable the microphone, false to disable."`
}

func (c *MicCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	ok, err := cat.SetMicrophoneEnabled(protocol.Both, c.On).WaitTimeout(2 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("microphone set: %v\n", ok)
	return nil
}

// --- Text ---

type TextCmd struct {
	Body string `arg:"" help:"Text to display."`
}

// Run displays text. Text display is LEFT-only at the protocol level
// (spec.md §3), so there is no side flag to get wrong here.
func (c *TextCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	ok, err := cat.SendText(c.Body).WaitTimeout(3 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("text sent: %v\n", ok)
	return nil
}

// --- Bitmap ---

type BitmapCmd struct {
	Path string `arg:"" help:"Path to a 1-bit BMP file to transfer."`
}

// Run reads Path and drives the full bitmap bulk-transfer sequence
// (chunks, CRC handshake, end-transfer). Bitmap transfer is LEFT-only,
// same as Text — see catalogue.BitmapTransfer.
func (c *BitmapCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("read bitmap: %w", err)
	}
	if err := cat.BitmapTransfer(data); err != nil {
		return err
	}
	fmt.Println("bitmap transfer complete")
	return nil
}

// --- Battery ---

type BatteryCmd struct{}

func (c *BatteryCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	lh := cat.GetBatteryInfo(protocol.Left)
	rh := cat.GetBatteryInfo(protocol.Right)
	left, lerr := lh.WaitTimeout(2 * time.Second)
	right, rerr := rh.WaitTimeout(2 * time.Second)
	if lerr != nil {
		fmt.Printf("left: error: %v\n", lerr)
	} else {
		fmt.Printf("left: %d%%\n", left)
	}
	if rerr != nil {
		fmt.Printf("right: error: %v\n", rerr)
	} else {
		fmt.Printf("right: %d%%\n", right)
	}
	return nil
}

// --- Firmware ---

type FirmwareCmd struct{}

func (c *FirmwareCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	version, err := cat.GetFirmwareInfo(protocol.Left).WaitTimeout(2 * time.Second)
	if err != nil {
		return err
	}
	fmt.Println(version)
	return nil
}

// --- Clear ---

type ClearCmd struct{}

func (c *ClearCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()
	_, err = cat.ClearScreen(protocol.Both).WaitTimeout(2 * time.Second)
	return err
}

// --- Notify ---

type NotifyCmd struct {
	JSON string `arg:"" help:"Raw JSON payload for the notification config."`
}

func (c *NotifyCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()

	var payload any
	if err := json.Unmarshal([]byte(c.JSON), &payload); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	ok, err := cat.SetNotificationConfig(payload).WaitTimeout(3 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("notification config set: %v\n", ok)
	return nil
}

// --- DashboardMode ---

type DashboardModeCmd struct {
	Mode    string `arg:"" help:"Dashboard layout." enum:"full,dual,minimal"`
	SubMode string `arg:"" default:"notes" help:"Active sub-mode; minimal only allows notes." enum:"notes,stock,news,calendar,navigation"`
	Side    string `help:"left, right, or both." default:"both" enum:"left,right,both"`
}

var dashboardModes = map[string]protocol.DashboardMode{
	"full":    protocol.DashboardFull,
	"dual":    protocol.DashboardDual,
	"minimal": protocol.DashboardMinimal,
}

var dashboardSubModes = map[string]protocol.DashboardSubMode{
	"notes":      protocol.SubModeNotes,
	"stock":      protocol.SubModeStock,
	"news":       protocol.SubModeNews,
	"calendar":   protocol.SubModeCalendar,
	"navigation": protocol.SubModeNavigation,
}

func (c *DashboardModeCmd) Run(globals *CLI) error {
	m, cat, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()

	ok, err := cat.SetDashboardMode(sideFromFlag(c.Side), dashboardModes[c.Mode], dashboardSubModes[c.SubMode]).WaitTimeout(2 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("dashboard mode set: %v\n", ok)
	return nil
}

func sideFromFlag(s string) protocol.Side {
	switch s {
	case "left":
		return protocol.Left
	case "right":
		return protocol.Right
	default:
		return protocol.Both
	}
}

// --- EventTail ---

type EventTailCmd struct{}

// Run subscribes every standard touch/wear/case listener (spec.md
// §4.4) and prints each event to stdout as it arrives, until
// interrupted with Ctrl-C.
func (c *EventTailCmd) Run(globals *CLI) error {
	m, _, err := connect(globals)
	if err != nil {
		return err
	}
	defer m.Disconnect()

	print := func(name string) func(any, engine.Side) {
		return func(v any, side engine.Side) {
			fmt.Printf("%s: %s %v\n", side, name, v)
		}
	}
	for _, l := range protocol.EventListeners(protocol.EventHandlers{
		OnDoubleTap:        print("double-tap"),
		OnSingleTap:        print("single-tap"),
		OnTripleTap:        print("triple-tap"),
		OnLongPressHeld:    print("long-press-held"),
		OnLongPressRelease: print("long-press-release"),
		OnBlePairedSuccess: print("ble-paired-success"),
		OnCaseOpen:         print("case-open"),
		OnCaseClosed:       print("case-closed"),
		OnCaseCharging:     print("case-charging"),
		OnGlassesBattery:   print("glasses-battery"),
		OnCaseBattery:      print("case-battery"),
	}) {
		m.Engine.RegisterListener(l)
	}

	fmt.Println("tailing events, press Ctrl-C to stop...")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
