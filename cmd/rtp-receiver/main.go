// Command rtp-receiver accepts one transfer from an rtp-sender and writes
// the delivered payload to stdout.
//
// Usage: rtp-receiver <gbn|sr> <port> <window-size> > output-file
//
// Startup follows the banner/load-config/signal-driven-shutdown sequence
// common across the package's entrypoints; the blocking-recv-with-idle-
// timeout driver loop below mirrors the reference receiver scripts' top-
// level `while True: recvfrom(...)` loop.
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
	"github.com/ventosilenzioso/rtp-go/pkg/sink"
)

const version = "1.0.0"

func main() {
	if lvl := os.Getenv("RTP_LOG_LEVEL"); lvl != "" {
		rtplog.SetLevel(lvl)
	}
	log := rtplog.New()

	cfg, err := config.ParseReceiverArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	conn, err := endpoint.ListenUDP(cfg.Port)
	if err != nil {
		log.Fatalf("listen on port %d: %v", cfg.Port, err)
	}

	log.Infof("rtp-receiver %s, policy=%s, window=%d, listening on %s",
		version, cfg.Policy, cfg.WindowSize, conn.LocalAddr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	session := rtp.NewSession(cfg.Policy, cfg.WindowSize, sink.Writer{W: os.Stdout})
	runErr := make(chan error, 1)
	go func() { runErr <- run(conn, session, log) }()

	select {
	case err := <-runErr:
		conn.Close()
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Infof("transfer complete")
	case sig := <-sigChan:
		log.Warnf("received signal %v, shutting down", sig)
		conn.Close()
		os.Exit(1)
	}
}

// run drives the blocking-recv loop described in the protocol's receiver
// component: a 30 s idle timeout aborts the process if no connection has
// ever been established, but is tolerated indefinitely once one has (the
// sender may simply be slow to retransmit).
func run(conn *endpoint.Endpoint, session *rtp.Session, log *rtplog.Logger) error {
	if err := conn.SetBlocking(true); err != nil {
		return err
	}
	if err := conn.SetReadTimeout(rtp.TRecvIdle); err != nil {
		return err
	}

	buf := make([]byte, rtp.MaxDatagram)
	for {
		n, from, err := conn.RecvFrom(buf)
		if endpoint.IsTimeout(err) {
			if !session.ConnectionActive {
				return fmt.Errorf("no connection established within %s, aborting", rtp.TRecvIdle)
			}
			log.Warnf("idle recv timeout, sender may still be retransmitting")
			continue
		}
		if err != nil {
			return err
		}

		outcome := session.HandleDatagram(buf[:n], from)
		if outcome.Reply != nil {
			if err := conn.SendTo(outcome.Reply, outcome.ReplyAddr); err != nil {
				return err
			}
		}
		if outcome.Terminate {
			return nil
		}
	}
}
