package rtp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello, reliable world")
	raw := Encode(TypeDATA, 7, payload)

	h, got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if h.Type != TypeDATA {
		t.Errorf("Type = %v, want DATA", h.Type)
	}
	if h.SeqNum != 7 {
		t.Errorf("SeqNum = %d, want 7", h.SeqNum)
	}
	if h.Length != uint32(len(payload)) {
		t.Errorf("Length = %d, want %d", h.Length, len(payload))
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestEncodeControlPacketHasNoPayload(t *testing.T) {
	raw := Encode(TypeSTART, 0, nil)
	if len(raw) != HeaderSize {
		t.Fatalf("len(raw) = %d, want %d", len(raw), HeaderSize)
	}
	h, payload, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if h.Length != 0 || len(payload) != 0 {
		t.Errorf("expected empty payload, got length=%d payload=%v", h.Length, payload)
	}
}

func TestMakeACK(t *testing.T) {
	raw := MakeACK(42)
	h, payload, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if h.Type != TypeACK {
		t.Errorf("Type = %v, want ACK", h.Type)
	}
	if h.SeqNum != 42 {
		t.Errorf("SeqNum = %d, want 42", h.SeqNum)
	}
	if len(payload) != 0 {
		t.Errorf("expected empty payload, got %v", payload)
	}
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, _, err := Decode(make([]byte, HeaderSize-1))
	if err != ErrInvalidPacket {
		t.Fatalf("err = %v, want ErrInvalidPacket", err)
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	raw := Encode(TypeDATA, 1, []byte("0123456789"))
	truncated := raw[:len(raw)-3]
	_, _, err := Decode(truncated)
	if err != ErrInvalidPacket {
		t.Fatalf("err = %v, want ErrInvalidPacket", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	raw := Encode(TypeDATA, 1, []byte("0123456789"))
	padded := append(raw, 0xFF, 0xFF)
	_, _, err := Decode(padded)
	if err != ErrInvalidPacket {
		t.Fatalf("err = %v, want ErrInvalidPacket", err)
	}
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	raw := Encode(TypeDATA, 1, []byte("payload"))
	corrupted := append([]byte(nil), raw...)
	corrupted[HeaderSize] ^= 0xFF // flip the first payload byte, checksum now stale
	_, _, err := Decode(corrupted)
	if err != ErrInvalidPacket {
		t.Fatalf("err = %v, want ErrInvalidPacket", err)
	}
}

func TestEncodeUsesBigEndian(t *testing.T) {
	raw := Encode(TypeDATA, 0x01020304, []byte("x"))
	// type (4 bytes) then seq_num big-endian
	if raw[4] != 0x01 || raw[5] != 0x02 || raw[6] != 0x03 || raw[7] != 0x04 {
		t.Errorf("seq_num bytes = % X, want big-endian 01 02 03 04", raw[4:8])
	}
}
