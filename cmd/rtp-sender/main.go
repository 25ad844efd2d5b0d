// Command rtp-sender reads a message from stdin and transfers it to a
// waiting rtp-receiver using the selected loss-recovery policy.
//
// Usage: rtp-sender <gbn|sr> <receiver-ip> <receiver-port> <window-size> < message
//
// Startup loads configuration, then wires signal handling around the
// long-running transfer so an interrupt aborts cleanly.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ventosilenzioso/rtp-go/internal/config"
	"github.com/ventosilenzioso/rtp-go/pkg/endpoint"
	"github.com/ventosilenzioso/rtp-go/pkg/rtp"
	"github.com/ventosilenzioso/rtp-go/pkg/rtplog"
	"github.com/ventosilenzioso/rtp-go/pkg/source"
)

const version = "1.0.0"

func main() {
	if lvl := os.Getenv("RTP_LOG_LEVEL"); lvl != "" {
		rtplog.SetLevel(lvl)
	}
	log := rtplog.New()

	cfg, err := config.ParseSenderArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	chunks, err := source.Chunks(os.Stdin)
	if err != nil {
		log.Fatalf("reading stdin: %v", err)
	}
	log.Infof("read source, split into %d chunks", len(chunks))

	conn, err := endpoint.DialUDP(cfg.ReceiverIP, cfg.ReceiverPort)
	if err != nil {
		log.Fatalf("dial %s:%d: %v", cfg.ReceiverIP, cfg.ReceiverPort, err)
	}
	defer conn.Close()

	log.Infof("rtp-sender %s, policy=%s, window=%d, target=%s:%d",
		version, cfg.Policy, cfg.WindowSize, cfg.ReceiverIP, cfg.ReceiverPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sender := rtp.NewSender(conn, cfg.Policy, cfg.WindowSize, chunks)
	runErr := make(chan error, 1)
	go func() { runErr <- sender.Run() }()

	select {
	case err := <-runErr:
		if err != nil {
			conn.Close()
			log.Fatalf("transfer failed: %v", err)
		}
		log.Infof("transfer complete")
	case sig := <-sigChan:
		log.Warnf("received signal %v, aborting transfer", sig)
		conn.Close()
		os.Exit(1)
	}
}
