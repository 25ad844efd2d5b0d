package rtp

import (
	"net"

	"github.com/google/uuid"

	"github.com/ventosilenzioso/rtp-go/pkg/rtplog"
	"github.com/ventosilenzioso/rtp-go/pkg/sink"
)

// Session is the receiver's per-connection state, modeled as an explicit
// record rather than process-wide globals so a receiver process could in
// principle serve more than one connection in sequence without state
// bleeding between them.
type Session struct {
	ID     uuid.UUID
	Policy Policy

	ExpectedSeq      uint32
	ConnectionActive bool
	SenderAddr       *net.UDPAddr

	// WindowSize bounds how far ahead of ExpectedSeq an SR receiver will
	// buffer a DATA packet; set once from the CLI argument.
	WindowSize uint32

	reorder *ReorderBuffer
	sink    sink.Sink
	log     *rtplog.Logger
}

// NewSession constructs a fresh receiver session bound to the given sink.
// Its ID is attached to every log line this session emits, so a receiver
// process handling connections in sequence can tell their diagnostics
// apart.
func NewSession(policy Policy, windowSize uint32, s sink.Sink) *Session {
	id := uuid.New()
	sess := &Session{
		ID:          id,
		Policy:      policy,
		ExpectedSeq: 1,
		WindowSize:  windowSize,
		sink:        s,
		log:         rtplog.New().With(map[string]interface{}{"session": id}),
	}
	if policy == SelectiveRepeat {
		sess.reorder = NewReorderBuffer()
	}
	return sess
}

// Outcome describes what HandleDatagram decided to do, for logging and for
// the cmd/rtp-receiver loop to know whether to send a reply and/or stop.
type Outcome struct {
	Reply     []byte // nil if no reply should be sent
	ReplyAddr *net.UDPAddr
	Terminate bool // true once an END has been fully processed
}

// HandleDatagram decodes and dispatches one inbound datagram. A decode
// failure (bad checksum, truncated length, unknown-length mismatch) is
// silently dropped: Outcome.Reply is nil and Terminate is false.
func (s *Session) HandleDatagram(raw []byte, from *net.UDPAddr) Outcome {
	h, payload, err := Decode(raw)
	if err != nil {
		s.log.Debugf("dropped invalid datagram from %s: %v", from, err)
		return Outcome{}
	}

	switch h.Type {
	case TypeSTART:
		return s.handleStart(from)
	case TypeEND:
		return s.handleEnd(h, from)
	case TypeDATA:
		return s.handleData(h, payload, from)
	case TypeACK:
		// A receiver never originates data; an inbound ACK here is
		// malformed for this connection's role and is dropped.
		return Outcome{}
	default:
		return Outcome{}
	}
}

func (s *Session) handleStart(from *net.UDPAddr) Outcome {
	s.ExpectedSeq = 1

	switch s.Policy {
	case GoBackN:
		if !s.ConnectionActive {
			s.ConnectionActive = true
			s.SenderAddr = from
			s.log.Infof("connection established with %s", from)
		} else if !sameAddr(s.SenderAddr, from) {
			// A second peer while already bound: ignore, do not
			// re-ACK to a different address.
			s.log.Warnf("ignoring START from second peer %s, already bound to %s", from, s.SenderAddr)
			return Outcome{}
		}
	case SelectiveRepeat:
		// SR re-activates unconditionally so a duplicate START
		// (caused by a lost START-ACK) is idempotent.
		s.ConnectionActive = true
		s.SenderAddr = from
		if s.reorder == nil {
			s.reorder = NewReorderBuffer()
		}
		s.log.Infof("connection established with %s", from)
	}

	return Outcome{Reply: MakeACK(1), ReplyAddr: from}
}

func (s *Session) handleEnd(h Header, from *net.UDPAddr) Outcome {
	s.ConnectionActive = false
	s.log.Infof("connection terminated by %s", from)
	return Outcome{
		Reply:     MakeACK(h.SeqNum + 1),
		ReplyAddr: from,
		Terminate: true,
	}
}

func (s *Session) handleData(h Header, payload []byte, from *net.UDPAddr) Outcome {
	switch s.Policy {
	case GoBackN:
		return s.handleDataGoBackN(h, payload, from)
	case SelectiveRepeat:
		return s.handleDataSelectiveRepeat(h, payload, from)
	default:
		return Outcome{}
	}
}

func (s *Session) handleDataGoBackN(h Header, payload []byte, from *net.UDPAddr) Outcome {
	if h.SeqNum == s.ExpectedSeq {
		_ = s.sink.Deliver(payload)
		s.ExpectedSeq++
	}
	return Outcome{Reply: MakeACK(s.ExpectedSeq), ReplyAddr: from}
}

func (s *Session) handleDataSelectiveRepeat(h Header, payload []byte, from *net.UDPAddr) Outcome {
	window := s.WindowSize
	switch {
	case h.SeqNum < s.ExpectedSeq:
		// Duplicate: re-ACK to accelerate the sender's recovery of a
		// lost ACK, but do not buffer or re-deliver.
		return Outcome{Reply: MakeACK(h.SeqNum), ReplyAddr: from}

	case h.SeqNum == s.ExpectedSeq:
		_ = s.sink.Deliver(payload)
		s.ExpectedSeq++
		s.ExpectedSeq, _ = s.reorder.Drain(s.ExpectedSeq, s.sink)
		return Outcome{Reply: MakeACK(h.SeqNum), ReplyAddr: from}

	case window > 0 && h.SeqNum < s.ExpectedSeq+window:
		s.reorder.Put(h.SeqNum, payload)
		return Outcome{Reply: MakeACK(h.SeqNum), ReplyAddr: from}

	default:
		// Out of window: drop without ACK.
		return Outcome{}
	}
}

func sameAddr(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}
