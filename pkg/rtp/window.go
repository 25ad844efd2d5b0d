package rtp

import "time"

// SendWindow is the send-side sliding-window engine shared by both
// policies. It owns the send buffer, the single retransmission timer, and
// the base/next-seq bookkeeping; OnACK and CheckTimer hold the
// policy-specific ACK and retransmission rules, and SR additionally tracks
// per-packet acknowledgment from admission onward.
type SendWindow struct {
	policy     Policy
	windowSize uint32
	total      uint32 // N: total number of DATA packets this transfer will send

	base    uint32 // lowest unacknowledged seq
	nextSeq uint32 // next seq to admit

	sendBuffer   map[uint32][]byte
	acknowledged map[uint32]bool // SR only

	timerActive bool
	timerStart  time.Time
}

// NewSendWindow constructs a window for a transfer of N total DATA packets.
func NewSendWindow(policy Policy, windowSize, total uint32) *SendWindow {
	w := &SendWindow{
		policy:     policy,
		windowSize: windowSize,
		total:      total,
		base:       1,
		nextSeq:    1,
		sendBuffer: make(map[uint32][]byte),
	}
	if policy == SelectiveRepeat {
		w.acknowledged = make(map[uint32]bool)
	}
	return w
}

// Done reports whether every DATA packet has been acknowledged.
func (w *SendWindow) Done() bool {
	return w.base > w.total
}

// Admit advances nextSeq while it remains inside the window and does not
// exceed the total packet count, invoking build for each newly admitted sequence
// number to obtain its encoded DATA packet. It returns the packets that
// were admitted, in order, so the caller can transmit them. Starts the
// retransmission timer if it wasn't already running.
func (w *SendWindow) Admit(build func(seq uint32) []byte) [][]byte {
	var admitted [][]byte
	for w.nextSeq < w.base+w.windowSize && w.nextSeq <= w.total {
		pkt := build(w.nextSeq)
		w.sendBuffer[w.nextSeq] = pkt
		if w.policy == SelectiveRepeat {
			w.acknowledged[w.nextSeq] = false
		}
		admitted = append(admitted, pkt)
		w.nextSeq++
	}
	if len(admitted) > 0 && !w.timerActive {
		w.timerActive = true
		w.timerStart = time.Now()
	}
	return admitted
}

// OnACK processes an inbound ACK header per the active policy. GBN
// interprets SeqNum as the cumulative next-expected value; SR interprets it
// as the single packet acknowledged.
func (w *SendWindow) OnACK(h Header) {
	if h.Type != TypeACK {
		return
	}
	switch w.policy {
	case GoBackN:
		w.onACKGoBackN(h.SeqNum)
	case SelectiveRepeat:
		w.onACKSelectiveRepeat(h.SeqNum)
	}
}

func (w *SendWindow) onACKGoBackN(seq uint32) {
	if seq <= w.base {
		return
	}
	w.base = seq
	if w.base == w.nextSeq {
		w.timerActive = false
	} else {
		w.timerStart = time.Now()
	}
}

func (w *SendWindow) onACKSelectiveRepeat(seq uint32) {
	if seq < w.base || seq >= w.nextSeq {
		return
	}
	w.acknowledged[seq] = true
	for w.acknowledged[w.base] {
		delete(w.acknowledged, w.base)
		delete(w.sendBuffer, w.base)
		w.base++
	}
}

// CheckTimer checks the single retransmission timer against now and, if it
// has expired, returns the set of packets to retransmit (in ascending
// sequence order) and restarts the timer. Returns nil if the timer has not
// fired.
func (w *SendWindow) CheckTimer(now time.Time) [][]byte {
	if !w.timerActive || now.Sub(w.timerStart) <= TRtx {
		return nil
	}
	w.timerStart = now

	var resend [][]byte
	switch w.policy {
	case GoBackN:
		for seq := w.base; seq < w.nextSeq; seq++ {
			if pkt, ok := w.sendBuffer[seq]; ok {
				resend = append(resend, pkt)
			}
		}
	case SelectiveRepeat:
		for seq := w.base; seq < w.nextSeq; seq++ {
			if !w.acknowledged[seq] {
				if pkt, ok := w.sendBuffer[seq]; ok {
					resend = append(resend, pkt)
				}
			}
		}
	}
	return resend
}

// Base returns the current base (lowest unacknowledged sequence number),
// exposed for tests asserting the window-bound invariant.
func (w *SendWindow) Base() uint32 { return w.base }

// NextSeq returns the next sequence number to admit.
func (w *SendWindow) NextSeq() uint32 { return w.nextSeq }
