package config

import (
	"testing"

	"github.com/ventosilenzioso/rtp-go/pkg/rtp"
)

func TestParseSenderArgsValid(t *testing.T) {
	cfg, err := ParseSenderArgs([]string{"gbn", "127.0.0.1", "9000", "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := SenderConfig{Policy: rtp.GoBackN, ReceiverIP: "127.0.0.1", ReceiverPort: 9000, WindowSize: 4}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestParseSenderArgsWrongCount(t *testing.T) {
	if _, err := ParseSenderArgs([]string{"gbn", "127.0.0.1"}); err == nil {
		t.Error("expected error for too few arguments")
	}
}

func TestParseSenderArgsUnknownPolicy(t *testing.T) {
	if _, err := ParseSenderArgs([]string{"xyz", "127.0.0.1", "9000", "4"}); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestParseSenderArgsBadPort(t *testing.T) {
	if _, err := ParseSenderArgs([]string{"sr", "127.0.0.1", "notaport", "4"}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestParseReceiverArgsValid(t *testing.T) {
	cfg, err := ParseReceiverArgs([]string{"sr", "9000", "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ReceiverConfig{Policy: rtp.SelectiveRepeat, Port: 9000, WindowSize: 4}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestParseReceiverArgsWrongCount(t *testing.T) {
	if _, err := ParseReceiverArgs([]string{"sr", "9000"}); err == nil {
		t.Error("expected error for too few arguments")
	}
}
