package rtp

import (
	"time"

	"github.com/ventosilenzioso/rtp-go/pkg/endpoint"
)

// fakeConn is an in-memory Conn double used to exercise the sender and
// receiver state machines against each other without a real socket. It
// mimics endpoint.Endpoint's blocking/non-blocking recv semantics (a
// blocking recv really waits, bounded by the configured read timeout; a
// non-blocking recv returns endpoint.ErrWouldBlock immediately when
// nothing is queued) using a channel instead of a raw socket.
type fakeConn struct {
	inbox       chan []byte
	peer        *fakeConn
	blocking    bool
	readTimeout time.Duration

	// drop, if set, is consulted for every datagram the peer is about
	// to deliver into this conn's inbox; returning true drops it silently.
	drop func(raw []byte) bool
}

func newFakeConnPair() (*fakeConn, *fakeConn) {
	a := &fakeConn{inbox: make(chan []byte, 256), blocking: true}
	b := &fakeConn{inbox: make(chan []byte, 256), blocking: true}
	a.peer = b
	b.peer = a
	return a, b
}

func (c *fakeConn) SetBlocking(blocking bool) error {
	c.blocking = blocking
	return nil
}

func (c *fakeConn) SetReadTimeout(d time.Duration) error {
	c.readTimeout = d
	return nil
}

func (c *fakeConn) Send(data []byte) error {
	cp := append([]byte(nil), data...)
	if c.peer.drop != nil && c.peer.drop(cp) {
		return nil
	}
	c.peer.inbox <- cp
	return nil
}

func (c *fakeConn) Recv(buf []byte) (int, error) {
	if !c.blocking {
		select {
		case next := <-c.inbox:
			return copy(buf, next), nil
		default:
			return 0, endpoint.ErrWouldBlock
		}
	}

	timeout := c.readTimeout
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	select {
	case next := <-c.inbox:
		return copy(buf, next), nil
	case <-time.After(timeout):
		return 0, errFakeTimeout{}
	}
}

type errFakeTimeout struct{}

func (errFakeTimeout) Error() string   { return "fake: timeout" }
func (errFakeTimeout) Timeout() bool   { return true }
func (errFakeTimeout) Temporary() bool { return true }
