package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeBrightnessScalesAndClamps(t *testing.T) {
	packet, prefix := EncodeBrightness(50, true)
	want := []byte{opBrightness, 0x1F, 0x01} // 50*63/100 = 31 = 0x1F
	if !bytes.Equal(packet, want) {
		t.Fatalf("got % X, want % X", packet, want)
	}
	if !bytes.Equal(prefix, []byte{opBrightness}) {
		t.Fatalf("unexpected prefix % X", prefix)
	}

	// Out-of-range level falls back to 30.
	packet, _ = EncodeBrightness(500, false)
	wantFallback := []byte{opBrightness, byte((30 * 63) / 100), 0x00}
	if !bytes.Equal(packet, wantFallback) {
		t.Fatalf("got % X, want % X", packet, wantFallback)
	}
}

func TestEncodeHeartbeatLayout(t *testing.T) {
	packet, _ := EncodeHeartbeat(5)
	want := []byte{opHeartbeat, 0x06, 0x00, 0x05, 0x04, 0x06}
	if !bytes.Equal(packet, want) {
		t.Fatalf("got % X, want % X", packet, want)
	}
}

func TestEncodeHeartbeatSequenceWraps(t *testing.T) {
	packet, _ := EncodeHeartbeat(255)
	if packet[5] != 0x00 {
		t.Fatalf("expected sequence to wrap to 0, got %d", packet[5])
	}
}

func TestDecodeAck(t *testing.T) {
	// The engine hands decoders the full matched response, echoed
	// opcode included, per spec.md's "ack byte appears immediately
	// after the echoed opcode" wording.
	ok, err := DecodeAck([]byte{opBrightness, AckByte})
	if err != nil || !ok {
		t.Fatalf("expected ack true, got %v %v", ok, err)
	}
	ok, err = DecodeAck([]byte{opBrightness, FailByte})
	if err != nil || ok {
		t.Fatalf("expected ack false, got %v %v", ok, err)
	}
	if _, err := DecodeAck([]byte{opBrightness}); err == nil {
		t.Fatal("expected error for a response missing the ack byte")
	}
	if _, err := DecodeAck(nil); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestDecodeFirmwareVersionReadsBytesAfterPrefix(t *testing.T) {
	body := append(append([]byte{}, firmwareInfoPrefix...), 1, 2, 3, 4)
	got, err := DecodeFirmwareVersion(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1.2.3.4" {
		t.Fatalf("got %q, want %q", got, "1.2.3.4")
	}
}

func TestDecodeBatteryPercentReadsThirdByte(t *testing.T) {
	pct, err := DecodeBatteryPercent([]byte{opBattery, 0x00, 77})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 77 {
		t.Fatalf("got %d, want 77", pct)
	}
}

func TestEncodeHeadUpAngleClamps(t *testing.T) {
	p, _ := EncodeHeadUpAngle(-5)
	if p[1] != 0 {
		t.Fatalf("expected clamp to 0, got %d", p[1])
	}
	p, _ = EncodeHeadUpAngle(120)
	if p[1] != 60 {
		t.Fatalf("expected clamp to 60, got %d", p[1])
	}
	if p[2] != 0x01 {
		t.Fatalf("expected trailing 0x01, got 0x%02X", p[2])
	}
}

func TestEncodeDashboardModeRejectsMinimalWithNonNotesSubmode(t *testing.T) {
	_, _, err := EncodeDashboardMode(DashboardMinimal, SubModeStock)
	if err == nil {
		t.Fatal("expected InvalidArgument error")
	}
}

func TestEncodeDashboardModeAllowsMinimalWithNotes(t *testing.T) {
	packet, _, err := EncodeDashboardMode(DashboardMinimal, SubModeNotes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{opDashboardMode, 0x07, 0x00, 0x00, 0x06, byte(DashboardMinimal), byte(SubModeNotes)}
	if !bytes.Equal(packet, want) {
		t.Fatalf("got % X, want % X", packet, want)
	}
}

func TestEncodeTextChunksAndFramesEachPacket(t *testing.T) {
	text := make([]byte, 250) // forces 2 chunks of at most 180 bytes (180 + 70)
	for i := range text {
		text[i] = 'x'
	}
	packets, prefix, err := EncodeText(string(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if !bytes.Equal(prefix, []byte{opTextDisplay}) {
		t.Fatalf("unexpected prefix % X", prefix)
	}
	first := packets[0]
	if first[0] != opTextDisplay || first[1] != 0 || first[2] != 2 {
		t.Fatalf("unexpected first packet header: % X", first[:9])
	}
}

func TestEncodeBitmapFirstChunkCarriesAddressHeader(t *testing.T) {
	data := make([]byte, 10)
	packets, _, err := EncodeBitmap(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet for 10 bytes, got %d", len(packets))
	}
	got := packets[0]
	if got[0] != opBitmap || got[1] != 0 {
		t.Fatalf("unexpected header: % X", got[:2])
	}
	if !bytes.Equal(got[2:6], bitmapAddressHeader) {
		t.Fatalf("expected address header, got % X", got[2:6])
	}
}

func TestEncodeBitmapCRCMatchesHeaderPlusData(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	packet, prefix := EncodeBitmapCRC(data)
	if packet[0] != opBitmapCRC {
		t.Fatalf("unexpected opcode 0x%02X", packet[0])
	}
	if !bytes.Equal(prefix, []byte{opBitmapCRC}) {
		t.Fatalf("unexpected prefix % X", prefix)
	}
	want := crc32Checksum(bitmapAddressHeader, data)
	got := uint32(packet[1])<<24 | uint32(packet[2])<<16 | uint32(packet[3])<<8 | uint32(packet[4])
	if got != want {
		t.Fatalf("CRC mismatch: got 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeEndTransferBmpExactBytes(t *testing.T) {
	packet, _ := EncodeEndTransferBmp()
	want := []byte{opEndTransferBmp, 0x0D, 0x0E}
	if !bytes.Equal(packet, want) {
		t.Fatalf("got % X, want % X", packet, want)
	}
}

func TestEncodeNotificationConfigFraming(t *testing.T) {
	payload := []byte(`{"a":1}`)
	packets, prefix, err := EncodeNotificationConfig(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	got := packets[0]
	if got[0] != opNotification || got[1] != 1 || got[2] != 0 {
		t.Fatalf("unexpected header % X", got[:3])
	}
	if !bytes.Equal(prefix, []byte{opNotification}) {
		t.Fatalf("unexpected prefix % X", prefix)
	}
}
