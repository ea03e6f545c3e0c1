// Package catalogue provides the high-level, typed Operation
// Catalogue: one method per wire operation, each building a
// protocol-level frame with internal/protocol and submitting it
// through internal/engine. It plays the role the teacher's
// internal/api.Client played for its HTTP-over-BLE bridge — a thin,
// typed front door callers use instead of touching the engine or the
// codec directly.
package catalogue

import (
	"encoding/json"
	"time"

	"github.com/duolink/duolink/internal/engine"
	"github.com/duolink/duolink/internal/protocol"
)

// Catalogue wraps an Engine and exposes every supported operation as
// a typed method. Each returns a Handle for that operation's result,
// except BitmapTransfer, which blocks and returns an error.
type Catalogue struct {
	engine   *engine.Engine
	deadline time.Duration
}

// New creates a Catalogue bound to e. deadline of zero uses the
// engine's configured default per command.
func New(e *engine.Engine) *Catalogue {
	return &Catalogue{engine: e}
}

// WithDeadline returns a Catalogue that submits every command with
// the given deadline instead of the engine default.
func (c *Catalogue) WithDeadline(d time.Duration) *Catalogue {
	return &Catalogue{engine: c.engine, deadline: d}
}

func (c *Catalogue) submitAck(side protocol.Side, packet, prefix []byte) *engine.Handle[bool] {
	return engine.Submit(c.engine, engine.Command[bool]{
		Packets:        [][]byte{packet},
		ResponsePrefix: prefix,
		Target:         side,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	})
}

// SetBrightness sets display brightness (0-100) and auto-brightness
// on the given side(s).
func (c *Catalogue) SetBrightness(side protocol.Side, level int, auto bool) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeBrightness(level, auto)
	return c.submitAck(side, packet, prefix)
}

// SetSilentMode toggles silent (do-not-disturb) mode.
func (c *Catalogue) SetSilentMode(side protocol.Side, silent bool) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeSilentMode(silent)
	return c.submitAck(side, packet, prefix)
}

// SetMicrophoneEnabled toggles the onboard microphone.
func (c *Catalogue) SetMicrophoneEnabled(side protocol.Side, enabled bool) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeMicrophone(enabled)
	return c.submitAck(side, packet, prefix)
}

// Heartbeat sends a keep-alive with the given rolling sequence byte.
func (c *Catalogue) Heartbeat(side protocol.Side, seq byte) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeHeartbeat(seq)
	return c.submitAck(side, packet, prefix)
}

// ClearScreen exits the current app / clears the display.
func (c *Catalogue) ClearScreen(side protocol.Side) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeClearScreen()
	return c.submitAck(side, packet, prefix)
}

// Initialize sends the post-connect handshake frame.
func (c *Catalogue) Initialize(side protocol.Side) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeInitialize()
	return c.submitAck(side, packet, prefix)
}

// GetFirmwareInfo requests the device's firmware version string.
func (c *Catalogue) GetFirmwareInfo(side protocol.Side) *engine.Handle[string] {
	packet, prefix := protocol.EncodeFirmwareInfoRequest()
	return engine.Submit(c.engine, engine.Command[string]{
		Packets:        [][]byte{packet},
		ResponsePrefix: prefix,
		Target:         side,
		Decode:         protocol.DecodeFirmwareVersion,
		Deadline:       c.deadline,
	})
}

// SetWearDetection toggles wear detection.
func (c *Catalogue) SetWearDetection(side protocol.Side, enabled bool) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeWearDetection(enabled)
	return c.submitAck(side, packet, prefix)
}

// GetBatteryInfo requests the current battery percentage.
func (c *Catalogue) GetBatteryInfo(side protocol.Side) *engine.Handle[uint8] {
	packet, prefix := protocol.EncodeBatteryQuery()
	return engine.Submit(c.engine, engine.Command[uint8]{
		Packets:        [][]byte{packet},
		ResponsePrefix: prefix,
		Target:         side,
		Decode:         protocol.DecodeBatteryPercent,
		Deadline:       c.deadline,
	})
}

// GetDeviceUptime requests device uptime, a supplemented operation
// carried over from the original SDK's getDeviceUptimeInfo.
func (c *Catalogue) GetDeviceUptime(side protocol.Side) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeDeviceUptime()
	return c.submitAck(side, packet, prefix)
}

// GetUsageInfo requests usage/diagnostic info, a supplemented
// operation carried over from the original SDK's "buried point" query.
func (c *Catalogue) GetUsageInfo(side protocol.Side) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeUsageInfo()
	return c.submitAck(side, packet, prefix)
}

// SetQuickNote is not implemented by this engine; it fails
// immediately with NotImplemented rather than silently dropping the
// call, since the wire format for quick notes was never recovered
// from the retrieved source.
func (c *Catalogue) SetQuickNote(side protocol.Side, text string) *engine.Handle[bool] {
	return engine.Failed[bool](&engine.Error{Kind: engine.KindNotImplemented, Op: "setQuickNote"})
}

// SetHeadUpAngle sets the head-up display trigger angle, clamped to
// [0,60] degrees.
func (c *Catalogue) SetHeadUpAngle(side protocol.Side, angle int) *engine.Handle[bool] {
	packet, prefix := protocol.EncodeHeadUpAngle(angle)
	return c.submitAck(side, packet, prefix)
}

// SetDashboardMode configures the dashboard layout and active
// sub-mode, failing fast with InvalidArgument if the combination is
// not allowed.
func (c *Catalogue) SetDashboardMode(side protocol.Side, mode protocol.DashboardMode, sub protocol.DashboardSubMode) *engine.Handle[bool] {
	packet, prefix, err := protocol.EncodeDashboardMode(mode, sub)
	if err != nil {
		return engine.Failed[bool](err)
	}
	return c.submitAck(side, packet, prefix)
}

// SendText displays the given text, chunked transparently if it
// exceeds a single packet. Text display is LEFT-only, per spec.md §3
// and the Java source's sendText, which hardcodes Sides.LEFT; there
// is no side parameter to get wrong.
func (c *Catalogue) SendText(text string) *engine.Handle[bool] {
	packets, prefix, err := protocol.EncodeText(text)
	if err != nil {
		return engine.Failed[bool](err)
	}
	return engine.Submit(c.engine, engine.Command[bool]{
		Packets:        packets,
		ResponsePrefix: prefix,
		Target:         protocol.Left,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	})
}

// SetNotificationConfig pushes a notification allow-list/config
// payload (arbitrary JSON), chunked transparently. Notification
// config is LEFT-only, per spec.md §3 and the Java source's
// setNotificationConfig, which hardcodes Sides.LEFT.
func (c *Catalogue) SetNotificationConfig(payload any) *engine.Handle[bool] {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return engine.Failed[bool](&engine.Error{Kind: engine.KindInvalidArgument, Op: "setNotificationConfig", Err: err})
	}
	packets, prefix, cerr := protocol.EncodeNotificationConfig(jsonData)
	if cerr != nil {
		return engine.Failed[bool](cerr)
	}
	return engine.Submit(c.engine, engine.Command[bool]{
		Packets:        packets,
		ResponsePrefix: prefix,
		Target:         protocol.Left,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	})
}

// BitmapTransfer runs the full chunked bitmap bulk-transfer
// sub-protocol: send chunks, run the CRC handshake, then send the
// end-transfer frame. It blocks until the whole sequence completes or
// fails, unlike the other Catalogue methods which return immediately.
// Bitmap transfer is LEFT-only, per spec.md §3 and the Java source's
// sendBmp, which hardcodes Sides.LEFT.
func (c *Catalogue) BitmapTransfer(bmpData []byte) error {
	packets, prefix, err := protocol.EncodeBitmap(bmpData)
	if err != nil {
		return err
	}
	deadline := c.deadlineOrDefault()
	if _, err := engine.SubmitAndWait(c.engine, engine.Command[bool]{
		Packets:        packets,
		ResponsePrefix: prefix,
		Target:         protocol.Left,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	}, deadline); err != nil {
		return err
	}

	crcPacket, crcPrefix := protocol.EncodeBitmapCRC(bmpData)
	if _, err := engine.SubmitAndWait(c.engine, engine.Command[bool]{
		Packets:        [][]byte{crcPacket},
		ResponsePrefix: crcPrefix,
		Target:         protocol.Left,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	}, deadline); err != nil {
		return err
	}

	endPacket, endPrefix := protocol.EncodeEndTransferBmp()
	_, err = engine.SubmitAndWait(c.engine, engine.Command[bool]{
		Packets:        [][]byte{endPacket},
		ResponsePrefix: endPrefix,
		Target:         protocol.Left,
		Decode:         protocol.DecodeAck,
		Deadline:       c.deadline,
	}, deadline)
	return err
}

func (c *Catalogue) deadlineOrDefault() time.Duration {
	if c.deadline > 0 {
		return c.deadline
	}
	return 5 * time.Second
}
