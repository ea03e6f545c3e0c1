package protocol

import (
	"fmt"

	"github.com/duolink/duolink/internal/config"
	"github.com/duolink/duolink/internal/engine"
)

// DecodeAck is the decoder shared by every simple acknowledged
// operation. The engine hands decoders the full matched response,
// starting at the response prefix (spec.md §4.1), and every operation
// that uses DecodeAck has a one-byte (opcode) response prefix, so the
// ack byte sits immediately after it: the result is true when
// response[1] is AckByte, false otherwise, per the GLOSSARY's "ack
// byte ... appearing immediately after the echoed opcode in responses."
func DecodeAck(response []byte) (bool, error) {
	if len(response) < 2 {
		return false, fmt.Errorf("response too short for an ack byte: %d bytes", len(response))
	}
	return response[1] == AckByte, nil
}

// EncodeBrightness builds the setBrightness(level, auto) request of
// spec.md §4.1: level is clamped to [0,100] (fallback 30 out of
// range), then scaled to a 6-bit device value by truncating
// integer division.
func EncodeBrightness(level int, auto bool) (packet, prefix []byte) {
	const fallback = 30
	safe := level
	if level < 0 || level > 100 {
		safe = fallback
	}
	scaled := (safe * 63) / 100
	autoByte := byte(0)
	if auto {
		autoByte = 1
	}
	packet = []byte{opBrightness, byte(scaled), autoByte}
	return packet, []byte{opBrightness}
}

// EncodeSilentMode builds the setSilentMode(silent) request.
func EncodeSilentMode(silent bool) (packet, prefix []byte) {
	b := byte(0)
	if silent {
		b = 1
	}
	packet = []byte{opSilentMode, b}
	return packet, []byte{opSilentMode}
}

// EncodeMicrophone builds the setMicrophoneEnabled(enabled) request.
func EncodeMicrophone(enabled bool) (packet, prefix []byte) {
	b := byte(0)
	if enabled {
		b = 1
	}
	packet = []byte{opMicrophone, b}
	return packet, []byte{opMicrophone}
}

// EncodeHeartbeat builds the heartbeat(seq) request of spec.md §4.1:
// [0x25, length_lo, length_hi, seq, 0x04, (seq+1) mod 256] with
// length = 6, little-endian.
func EncodeHeartbeat(seq byte) (packet, prefix []byte) {
	const length = 6
	packet = []byte{
		opHeartbeat,
		byte(length & 0xFF),
		byte((length >> 8) & 0xFF),
		seq,
		0x04,
		byte(seq + 1),
	}
	return packet, []byte{opHeartbeat}
}

// EncodeClearScreen builds the exitApp / clear-screen request.
func EncodeClearScreen() (packet, prefix []byte) {
	packet = []byte{opClearExit}
	return packet, []byte{opClearExit}
}

// EncodeInitialize builds the initialize() request. spec.md §9 notes
// the source targets LEFT in one revision and BOTH in another; the
// catalogue decides the target Side, this function only builds the
// bytes.
func EncodeInitialize() (packet, prefix []byte) {
	packet = []byte{opInitializeHi, opInitializeLo}
	return packet, []byte{opInitializeHi}
}

// EncodeFirmwareInfoRequest builds the getFirmwareInfo() request.
// The response prefix is the 9 ASCII bytes "net build".
func EncodeFirmwareInfoRequest() (packet, prefix []byte) {
	packet = []byte{opFirmwareReq}
	return packet, firmwareInfoPrefix
}

// DecodeFirmwareVersion reads the four bytes immediately following
// the matched "net build" prefix and formats them as "b0.b1.b2.b3".
// spec.md §9 flags that the source instead reads from the start of
// the raw response array; this implements the prescribed (and
// defensible) interpretation: bytes after the prefix.
func DecodeFirmwareVersion(body []byte) (string, error) {
	if len(body) < len(firmwareInfoPrefix)+4 {
		return "", fmt.Errorf("firmware response too short: %d bytes", len(body))
	}
	b := body[len(firmwareInfoPrefix) : len(firmwareInfoPrefix)+4]
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3]), nil
}

// EncodeWearDetection builds the setWearDetection(enabled) request.
func EncodeWearDetection(enabled bool) (packet, prefix []byte) {
	b := byte(0)
	if enabled {
		b = 1
	}
	packet = []byte{opWearDetection, b}
	return packet, []byte{opWearDetection}
}

// EncodeBatteryQuery builds the getBatteryInfo() request of spec.md
// §4.1: request is a single opcode byte, no side tag is required by
// the transport layer since each side is queried over its own pipe.
func EncodeBatteryQuery() (packet, prefix []byte) {
	packet = []byte{opBattery}
	return packet, []byte{opBattery}
}

// DecodeBatteryPercent reads data[2] as an unsigned byte percentage,
// per spec.md §4.1.
func DecodeBatteryPercent(body []byte) (uint8, error) {
	if len(body) < 3 {
		return 0, fmt.Errorf("battery response too short: %d bytes", len(body))
	}
	return body[2], nil
}

// EncodeDeviceUptime builds the getDeviceUptime() request, a
// supplemented operation carried over from the original SDK
// (original_source's 0x37 opcode, not in spec.md's wire table).
func EncodeDeviceUptime() (packet, prefix []byte) {
	packet = []byte{opDeviceUptime}
	return packet, []byte{opDeviceUptime}
}

// EncodeUsageInfo builds the getUsageInfo() request, a supplemented
// operation (original_source's 0x3E "buried point" usage query).
func EncodeUsageInfo() (packet, prefix []byte) {
	packet = []byte{opUsageInfo}
	return packet, []byte{opUsageInfo}
}

// EncodeHeadUpAngle builds the setHeadUpAngle(angle) request: angle
// clamped to [0,60], followed by the constant trailing byte 0x01.
func EncodeHeadUpAngle(angle int) (packet, prefix []byte) {
	clamped := angle
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 60 {
		clamped = 60
	}
	packet = []byte{opHeadUpAngle, byte(clamped), 0x01}
	return packet, []byte{opHeadUpAngle}
}

// DashboardMode and DashboardSubMode mirror the EvenOsApi Java enums.
type DashboardMode int

const (
	DashboardFull DashboardMode = iota
	DashboardDual
	DashboardMinimal
)

type DashboardSubMode int

const (
	SubModeNotes DashboardSubMode = iota
	SubModeStock
	SubModeNews
	SubModeCalendar
	SubModeNavigation
)

// EncodeDashboardMode builds the setDashboardMode(mode, subMode)
// request: [0x06, 0x07, 0x00, 0x00, 0x06, mode, submode]. Fails with
// InvalidArgument if mode is MINIMAL and submode isn't NOTES.
func EncodeDashboardMode(mode DashboardMode, sub DashboardSubMode) (packet, prefix []byte, err error) {
	if mode == DashboardMinimal && sub != SubModeNotes {
		return nil, nil, &engine.Error{Kind: engine.KindInvalidArgument, Op: "setDashboardMode"}
	}
	packet = []byte{opDashboardMode, 0x07, 0x00, 0x00, 0x06, byte(mode), byte(sub)}
	return packet, []byte{opDashboardMode}, nil
}

// EncodeText splits text into chunks of at most config.TextChunkSize
// bytes and builds one packet per chunk: [0x4E, i, N, i, 0x71, 0x00,
// 0x00, i+1, N, ...chunk], per spec.md §4.1. All chunks share the
// corrected response prefix [0x4E] — the source's decoder advertises
// [0x04], which spec.md §9 flags as a bug; see the protocol tests.
func EncodeText(text string) (packets [][]byte, prefix []byte, err error) {
	chunked := chunks([]byte(text), config.TextChunkSize)
	if err := checkChunkCount(len(chunked), config.MaxChunks); err != nil {
		return nil, nil, err
	}
	total := len(chunked)
	out := make([][]byte, total)
	for i, chunk := range chunked {
		packet := make([]byte, 0, 9+len(chunk))
		packet = append(packet,
			opTextDisplay,
			byte(i),
			byte(total),
			byte(i),
			0x71,
			0x00,
			0x00,
			byte(i+1),
			byte(total),
		)
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out, []byte{opTextDisplay}, nil
}

// EncodeNotificationConfig splits a JSON notification-config payload
// into chunks of at most config.JSONChunkSize bytes: each packet is
// [0x04, totalChunks, index, ...chunk], per spec.md §4.1 and the
// original setNotificationConfig in EvenOs_1_5_0.
func EncodeNotificationConfig(jsonData []byte) (packets [][]byte, prefix []byte, err error) {
	chunked := chunks(jsonData, config.JSONChunkSize)
	if err := checkChunkCount(len(chunked), config.MaxChunks); err != nil {
		return nil, nil, err
	}
	total := len(chunked)
	out := make([][]byte, total)
	for i, chunk := range chunked {
		packet := make([]byte, 0, 2+len(chunk))
		packet = append(packet, opNotification, byte(total), byte(i))
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out, []byte{opNotification}, nil
}

// EncodeBitmap splits a 1-bit BMP payload into chunks of at most
// config.BitmapChunkSize bytes. The first chunk is prefixed with the
// opcode, sequence 0, and the 4-byte address header; subsequent
// chunks are [0x15, i, ...chunk], per spec.md §4.1.
func EncodeBitmap(bmpData []byte) (packets [][]byte, prefix []byte, err error) {
	chunked := chunks(bmpData, config.BitmapChunkSize)
	if err := checkChunkCount(len(chunked), config.MaxChunks); err != nil {
		return nil, nil, err
	}
	out := make([][]byte, len(chunked))
	for i, chunk := range chunked {
		var packet []byte
		if i == 0 {
			packet = make([]byte, 0, 2+len(bitmapAddressHeader)+len(chunk))
			packet = append(packet, opBitmap, byte(i))
			packet = append(packet, bitmapAddressHeader...)
		} else {
			packet = make([]byte, 0, 2+len(chunk))
			packet = append(packet, opBitmap, byte(i))
		}
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out, []byte{opBitmap}, nil
}

// EncodeBitmapCRC computes CRC-32 over address_header ‖ bmpData and
// builds the [0x16, b3, b2, b1, b0] packet with the CRC in
// big-endian byte order, per spec.md §4.1.
func EncodeBitmapCRC(bmpData []byte) (packet, prefix []byte) {
	sum := crc32Checksum(bitmapAddressHeader, bmpData)
	packet = []byte{
		opBitmapCRC,
		byte(sum >> 24),
		byte(sum >> 16),
		byte(sum >> 8),
		byte(sum),
	}
	return packet, []byte{opBitmapCRC}
}

// EncodeEndTransferBmp builds the end-transfer-bmp request that must
// follow a successful CRC check, per spec.md §4.1.
func EncodeEndTransferBmp() (packet, prefix []byte) {
	packet = []byte{opEndTransferBmp, 0x0D, 0x0E}
	return packet, []byte{opEndTransferBmp}
}
