// Package blelink is a concrete engine.Transport backed by
// tinygo.org/x/bluetooth: one GATT connection per side, grounded on
// the teacher's internal/ble scan/connect/discover sequence, adapted
// to the glasses' UART-style service instead of the SFP Wizard's API
// service.
package blelink

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/duolink/duolink/internal/config"
	"github.com/duolink/duolink/internal/util"
)

// UART service/characteristic UUIDs, per the original SDK's
// ConnectionConfig defaults for the glasses' Nordic UART-style GATT
// profile.
const (
	UARTServiceUUID = "6E400001-B5A3-F393-E0A9-E50E24DCCA9E"
	UARTTxCharUUID  = "6E400002-B5A3-F393-E0A9-E50E24DCCA9E" // write (APP -> device)
	UARTRxCharUUID  = "6E400003-B5A3-F393-E0A9-E50E24DCCA9E" // notify (device -> APP)
)

// NamePredicate decides whether a scan result belongs to the side
// this Link is responsible for (e.g. "...L" vs "...R" suffix in the
// advertised name).
type NamePredicate func(name string) bool

// Link is one side's BLE connection: scan, connect, discover the UART
// service, subscribe to notifications, and expose Send/OnReceive.
type Link struct {
	label   string
	matches NamePredicate
	mtu     int

	adapter *bluetooth.Adapter
	device  bluetooth.Device
	txChar  *bluetooth.DeviceCharacteristic
	rxChar  *bluetooth.DeviceCharacteristic

	mu         sync.Mutex
	connected  bool
	onReceive  func(data []byte)
}

// New creates a Link for one side. label is used only in log output;
// matches selects the advertised device name to connect to.
func New(label string, matches NamePredicate) *Link {
	return &Link{
		label:   label,
		matches: matches,
		mtu:     247,
		adapter: bluetooth.DefaultAdapter,
	}
}

// Connect scans for a matching advertisement, connects, discovers the
// UART service, and subscribes to notifications. It does not negotiate
// an MTU. It does not mark the side INITIALIZED — the caller does that
// (Manager.ConnectAndInitialize, before sending the handshake).
func (l *Link) Connect() error {
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}

	config.Debugf("%s: scanning...", l.label)
	var result bluetooth.ScanResult
	var found bool
	err := l.adapter.Scan(func(adapter *bluetooth.Adapter, r bluetooth.ScanResult) {
		if l.matches(r.LocalName()) {
			result = r
			found = true
			adapter.StopScan()
		}
	})
	if err != nil {
		return fmt.Errorf("%s: scan: %w", l.label, err)
	}
	if !found {
		return fmt.Errorf("%s: no matching device found", l.label)
	}

	config.Debugf("%s: connecting...", l.label)
	device, err := l.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("%s: connect: %w", l.label, err)
	}
	l.device = device

	services, err := device.DiscoverServices(nil)
	if err != nil {
		return fmt.Errorf("%s: discover services: %w", l.label, err)
	}

	var uart *bluetooth.DeviceService
	for i := range services {
		if strings.EqualFold(services[i].UUID().String(), UARTServiceUUID) {
			uart = &services[i]
			break
		}
	}
	if uart == nil {
		return fmt.Errorf("%s: UART service not found", l.label)
	}

	chars, err := uart.DiscoverCharacteristics(nil)
	if err != nil {
		return fmt.Errorf("%s: discover characteristics: %w", l.label, err)
	}
	for i := range chars {
		switch {
		case strings.EqualFold(chars[i].UUID().String(), UARTTxCharUUID):
			l.txChar = &chars[i]
		case strings.EqualFold(chars[i].UUID().String(), UARTRxCharUUID):
			l.rxChar = &chars[i]
		}
	}
	if l.txChar == nil || l.rxChar == nil {
		return fmt.Errorf("%s: UART characteristics not found", l.label)
	}

	if err := l.rxChar.EnableNotifications(func(buf []byte) {
		config.Debugf("%s: recv %d bytes", l.label, len(buf))
		if config.Verbose {
			if util.IsTextData(buf) {
				fmt.Printf("%s: %s\n", l.label, buf)
			} else {
				util.PrintHexDump(buf)
			}
		}
		l.mu.Lock()
		handler := l.onReceive
		l.mu.Unlock()
		if handler != nil {
			cp := make([]byte, len(buf))
			copy(cp, buf)
			handler(cp)
		}
	}); err != nil {
		return fmt.Errorf("%s: enable notifications: %w", l.label, err)
	}
	time.Sleep(100 * time.Millisecond)

	l.mu.Lock()
	l.connected = true
	l.mu.Unlock()
	return nil
}

// Disconnect tears down the GATT connection.
func (l *Link) Disconnect() error {
	l.mu.Lock()
	wasConnected := l.connected
	l.connected = false
	l.mu.Unlock()
	if !wasConnected {
		return nil
	}
	return l.device.Disconnect()
}

// IsInitialized reports whether the GATT link itself is up. It
// deliberately does not know about the protocol handshake; engine.Side
// INITIALIZED state tracks that separately.
func (l *Link) IsInitialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Send writes one outbound packet. tinygo's Linux BlueZ backend only
// supports write-without-response on most peripherals, which matches
// what the retrieved examples rely on too.
func (l *Link) Send(data []byte) error {
	if l.txChar == nil {
		return fmt.Errorf("%s: not connected", l.label)
	}
	_, err := l.txChar.WriteWithoutResponse(data)
	return err
}

// OnReceive installs the callback invoked with each inbound
// notification payload.
func (l *Link) OnReceive(handler func(data []byte)) {
	l.mu.Lock()
	l.onReceive = handler
	l.mu.Unlock()
}
