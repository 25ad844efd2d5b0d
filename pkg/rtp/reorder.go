package rtp

import "github.com/ventosilenzioso/rtp-go/pkg/sink"

// ReorderBuffer holds out-of-order, in-window DATA payloads on the SR
// receiver until their predecessor arrives. Bounded to at most W-1 live
// entries: every key k satisfies expected < k < expected+W, and expected
// itself is never buffered (it is delivered immediately).
type ReorderBuffer struct {
	buf map[uint32][]byte
}

// NewReorderBuffer constructs an empty buffer.
func NewReorderBuffer() *ReorderBuffer {
	return &ReorderBuffer{buf: make(map[uint32][]byte)}
}

// Put buffers payload under seq if not already present.
func (r *ReorderBuffer) Put(seq uint32, payload []byte) {
	if _, exists := r.buf[seq]; exists {
		return
	}
	r.buf[seq] = payload
}

// Has reports whether seq is currently buffered.
func (r *ReorderBuffer) Has(seq uint32) bool {
	_, ok := r.buf[seq]
	return ok
}

// Len returns the number of entries currently buffered.
func (r *ReorderBuffer) Len() int {
	return len(r.buf)
}

// Drain delivers the contiguous run starting at expected to s, removing
// each entry as it is delivered, and returns the new expected value (one
// past the last seq delivered). Each Deliver call flushes before Drain
// proceeds to the next seq.
func (r *ReorderBuffer) Drain(expected uint32, s sink.Sink) (uint32, error) {
	for {
		payload, ok := r.buf[expected]
		if !ok {
			return expected, nil
		}
		if err := s.Deliver(payload); err != nil {
			return expected, err
		}
		delete(r.buf, expected)
		expected++
	}
}
