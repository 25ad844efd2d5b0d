// Package config parses the fixed positional command-line arguments for the
// rtp-sender and rtp-receiver binaries.
//
// Plain struct-returning loader, no flag library: the CLI surface is a
// strictly positional argument list, so there is no flag/subcommand
// surface to parse.
package config

import (
	"fmt"
	"strconv"

	"github.com/ventosilenzioso/rtp-go/pkg/rtp"
)

// SenderConfig holds the parsed arguments for rtp-sender.
type SenderConfig struct {
	Policy       rtp.Policy
	ReceiverIP   string
	ReceiverPort int
	WindowSize   uint32
}

// ReceiverConfig holds the parsed arguments for rtp-receiver.
type ReceiverConfig struct {
	Policy     rtp.Policy
	Port       int
	WindowSize uint32
}

// ParseSenderArgs parses argv (excluding argv[0]) into a SenderConfig. The
// expected form is: <policy> <receiver-ip> <receiver-port> <window-size>.
func ParseSenderArgs(argv []string) (SenderConfig, error) {
	if len(argv) != 4 {
		return SenderConfig{}, fmt.Errorf("usage: rtp-sender <gbn|sr> <receiver-ip> <receiver-port> <window-size> < message")
	}

	policy, ok := rtp.ParsePolicy(argv[0])
	if !ok {
		return SenderConfig{}, fmt.Errorf("unknown policy %q, want gbn or sr", argv[0])
	}

	port, err := strconv.Atoi(argv[2])
	if err != nil {
		return SenderConfig{}, fmt.Errorf("invalid receiver port %q: %w", argv[2], err)
	}

	window, err := strconv.ParseUint(argv[3], 10, 32)
	if err != nil {
		return SenderConfig{}, fmt.Errorf("invalid window size %q: %w", argv[3], err)
	}

	return SenderConfig{
		Policy:       policy,
		ReceiverIP:   argv[1],
		ReceiverPort: port,
		WindowSize:   uint32(window),
	}, nil
}

// ParseReceiverArgs parses argv (excluding argv[0]) into a ReceiverConfig.
// The expected form is: <policy> <port> <window-size>.
func ParseReceiverArgs(argv []string) (ReceiverConfig, error) {
	if len(argv) != 3 {
		return ReceiverConfig{}, fmt.Errorf("usage: rtp-receiver <gbn|sr> <port> <window-size> > output-file")
	}

	policy, ok := rtp.ParsePolicy(argv[0])
	if !ok {
		return ReceiverConfig{}, fmt.Errorf("unknown policy %q, want gbn or sr", argv[0])
	}

	port, err := strconv.Atoi(argv[1])
	if err != nil {
		return ReceiverConfig{}, fmt.Errorf("invalid port %q: %w", argv[1], err)
	}

	window, err := strconv.ParseUint(argv[2], 10, 32)
	if err != nil {
		return ReceiverConfig{}, fmt.Errorf("invalid window size %q: %w", argv[2], err)
	}

	return ReceiverConfig{
		Policy:     policy,
		Port:       port,
		WindowSize: uint32(window),
	}, nil
}
