package rtp

import (
	"time"

	"github.com/ventosilenzioso/rtp-go/pkg/endpoint"
	"github.com/ventosilenzioso/rtp-go/pkg/rtplog"
)

func isTimeout(err error) bool    { return err != nil && endpoint.IsTimeout(err) }
func isWouldBlock(err error) bool { return err == endpoint.ErrWouldBlock }

// Conn is the narrow endpoint interface the sender and receiver state
// machines need: switchable blocking mode, a read timeout, and send and
// receive with a single fixed peer. Satisfied by *endpoint.Endpoint; kept
// as an interface here so pkg/rtp has no import-time dependency on the
// concrete UDP implementation, and so tests can supply an in-memory double.
type Conn interface {
	SetBlocking(blocking bool) error
	SetReadTimeout(d time.Duration) error
	Send(data []byte) error
	Recv(buf []byte) (int, error)
}

// Sender drives the START -> DATA -> END phases over conn, reading its
// payload from chunks (see pkg/source.Chunks). GBN and SR differ only in
// how the DATA phase's sliding window processes ACKs and timeouts.
type Sender struct {
	conn   Conn
	policy Policy
	window uint32
	chunks [][]byte
	log    *rtplog.Logger
}

// NewSender constructs a sender for the given policy, window size, and
// pre-chunked payload.
func NewSender(conn Conn, policy Policy, window uint32, chunks [][]byte) *Sender {
	return &Sender{conn: conn, policy: policy, window: window, chunks: chunks, log: rtplog.New()}
}

// Run executes the full transfer to completion (or returns early only on an
// unrecoverable I/O error from conn). It returns nil once the END-ACK is
// received or the END grace period elapses: the sender closes cleanly
// either way.
func (s *Sender) Run() error {
	if err := s.runStart(); err != nil {
		return err
	}
	if err := s.runData(); err != nil {
		return err
	}
	return s.runEnd()
}

// runStart sends START and blocks (with TStartWait retries) until an
// ACK(1) arrives. All other datagrams received in this phase are ignored.
func (s *Sender) runStart() error {
	if err := s.conn.SetBlocking(true); err != nil {
		return err
	}
	if err := s.conn.SetReadTimeout(TStartWait); err != nil {
		return err
	}

	start := Encode(TypeSTART, 0, nil)
	if err := s.conn.Send(start); err != nil {
		return err
	}
	s.log.Infof("sent START")

	buf := make([]byte, MaxDatagram)
	for {
		n, err := s.conn.Recv(buf)
		if isTimeout(err) {
			s.log.Debugf("START-ACK timeout, resending START")
			if err := s.conn.Send(start); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		h, _, decodeErr := Decode(buf[:n])
		if decodeErr != nil {
			continue
		}
		if h.Type == TypeACK && h.SeqNum == 1 {
			s.log.Infof("connection established")
			return nil
		}
	}
}

// runData encodes the pre-chunked payload as DATA packets and drives the
// sliding window engine (C3) to completion.
func (s *Sender) runData() error {
	total := uint32(len(s.chunks))
	window := NewSendWindow(s.policy, s.window, total)

	if err := s.conn.SetBlocking(false); err != nil {
		return err
	}

	build := func(seq uint32) []byte {
		return Encode(TypeDATA, seq, s.chunks[seq-1])
	}

	buf := make([]byte, MaxDatagram)
	for !window.Done() {
		for _, pkt := range window.Admit(build) {
			if err := s.conn.Send(pkt); err != nil {
				return err
			}
			s.log.Debugf("sent DATA packet")
		}

		n, err := s.conn.Recv(buf)
		switch {
		case err == nil:
			h, _, decodeErr := Decode(buf[:n])
			if decodeErr == nil && h.Type == TypeACK {
				window.OnACK(h)
			}
		case isWouldBlock(err):
			// Expected: nothing queued this iteration.
		default:
			return err
		}

		for _, pkt := range window.CheckTimer(time.Now()) {
			if err := s.conn.Send(pkt); err != nil {
				return err
			}
			s.log.Debugf("retransmitted DATA packet after timeout")
		}
	}
	return nil
}

// runEnd sends END and waits up to TEndWait for its ACK, resending on each
// TStartWait timeout; it closes cleanly regardless of whether the ACK ever
// arrives, since the receiver may have already torn down.
func (s *Sender) runEnd() error {
	total := uint32(len(s.chunks))
	endSeq := total + 1

	if err := s.conn.SetBlocking(true); err != nil {
		return err
	}
	if err := s.conn.SetReadTimeout(TStartWait); err != nil {
		return err
	}

	end := Encode(TypeEND, endSeq, nil)
	if err := s.conn.Send(end); err != nil {
		return err
	}
	s.log.Infof("sent END")

	deadline := time.Now().Add(TEndWait)
	buf := make([]byte, MaxDatagram)
	for time.Now().Before(deadline) {
		n, err := s.conn.Recv(buf)
		if isTimeout(err) {
			s.log.Debugf("END-ACK timeout, resending END")
			if err := s.conn.Send(end); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		h, _, decodeErr := Decode(buf[:n])
		if decodeErr != nil {
			continue
		}
		if h.Type == TypeACK && h.SeqNum == endSeq+1 {
			s.log.Infof("connection terminated")
			return nil
		}
	}
	s.log.Warnf("END-ACK grace period elapsed, closing anyway")
	return nil
}
