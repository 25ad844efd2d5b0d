// Package endpoint wraps a UDP socket behind the narrow send/recv interface
// the rtp state machines need: switchable blocking mode, a configurable
// receive timeout, and send-to/recv-from addressed datagrams. It is the
// concrete implementation of the "datagram endpoint" the protocol treats as
// an external collaborator.
package endpoint

import (
	"errors"
	"net"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// ErrWouldBlock is returned by RecvFrom when the endpoint is in
// non-blocking mode and no datagram is currently available. Callers in the
// DATA phase treat this as an expected, non-error outcome.
var ErrWouldBlock = errors.New("endpoint: would block")

// Endpoint is a UDP datagram endpoint with switchable blocking semantics.
type Endpoint struct {
	conn        *net.UDPConn
	nonBlocking bool

	// readTimeout is the blocking-mode receive timeout, re-armed as an
	// absolute deadline before every blocking RecvFrom call. Zero means
	// block indefinitely. Go's read deadline is a one-shot absolute
	// instant, not a persistent relative timeout like Python's
	// socket.settimeout, so it must be reset on each call rather than
	// once up front.
	readTimeout time.Duration
}

// ListenUDP binds a receiving endpoint to 127.0.0.1:port.
func ListenUDP(port int) (*Endpoint, error) {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "bind UDP socket")
	}
	return &Endpoint{conn: conn}, nil
}

// DialUDP opens a sending endpoint targeting (ip, port). UDP dial does not
// touch the network; it only fixes the destination for subsequent writes
// and lets the kernel pick a local port.
func DialUDP(ip string, port int) (*Endpoint, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: port}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "dial UDP socket")
	}
	return &Endpoint{conn: conn}, nil
}

// SetBlocking switches between a blocking recv (honoring whatever read
// timeout was last set by SetReadTimeout) and a non-blocking recv that
// returns ErrWouldBlock immediately when nothing is queued.
//
// Go's net package has no native non-blocking mode; non-blocking is
// emulated with read deadlines. A deadline that has already passed fails a
// read even when a datagram is queued, so RecvFrom arms a deadline one
// millisecond ahead on every non-blocking call: a queued datagram is
// returned, and an empty socket times out after that short poll, which
// RecvFrom turns into ErrWouldBlock rather than a real error.
func (e *Endpoint) SetBlocking(blocking bool) error {
	e.nonBlocking = !blocking
	if blocking {
		return nil
	}
	return e.conn.SetReadDeadline(time.Now())
}

// SetReadTimeout sets the blocking-mode receive timeout, as a duration that
// is re-armed before every blocking RecvFrom call (see readTimeout). A zero
// duration blocks indefinitely. Only meaningful while the endpoint is in
// blocking mode.
func (e *Endpoint) SetReadTimeout(d time.Duration) error {
	e.readTimeout = d
	if e.nonBlocking {
		return nil
	}
	return e.armDeadline()
}

// armDeadline sets the read deadline to now+readTimeout (or clears it if
// readTimeout is zero). Called once per blocking RecvFrom so a persistent
// timeout behaves like Python's socket.settimeout rather than a single
// absolute deadline that, once past, fails every future read instantly.
func (e *Endpoint) armDeadline() error {
	if e.readTimeout <= 0 {
		return e.conn.SetReadDeadline(time.Time{})
	}
	return e.conn.SetReadDeadline(time.Now().Add(e.readTimeout))
}

// SendTo writes a datagram to addr. Used by the receiver, which sees a
// distinct peer address per inbound datagram.
func (e *Endpoint) SendTo(data []byte, addr *net.UDPAddr) error {
	_, err := e.conn.WriteToUDP(data, addr)
	return pkgerrors.Wrap(err, "sendto")
}

// Send writes a datagram to the endpoint's dialed peer. Used by the sender,
// which has a single fixed destination for the lifetime of the connection.
func (e *Endpoint) Send(data []byte) error {
	_, err := e.conn.Write(data)
	return pkgerrors.Wrap(err, "send")
}

// RecvFrom reads one datagram. In non-blocking mode (see SetBlocking) it
// returns ErrWouldBlock instead of an error when nothing is queued; in
// blocking mode a timeout set via SetReadTimeout surfaces as the
// net.Error with Timeout() == true. Each blocking call re-arms the read
// deadline from readTimeout, so the configured timeout behaves as a
// persistent per-call wait rather than a one-shot absolute deadline.
func (e *Endpoint) RecvFrom(buf []byte) (int, *net.UDPAddr, error) {
	const nonBlockingPoll = time.Millisecond
	if e.nonBlocking {
		// An already-expired deadline would fail the read before the
		// socket is polled, so arm one just ahead of now.
		if err := e.conn.SetReadDeadline(time.Now().Add(nonBlockingPoll)); err != nil {
			return 0, nil, err
		}
	} else if err := e.armDeadline(); err != nil {
		return 0, nil, err
	}

	n, addr, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			if e.nonBlocking {
				return 0, nil, ErrWouldBlock
			}
			return 0, nil, err
		}
		return 0, nil, pkgerrors.Wrap(err, "recvfrom")
	}
	return n, addr, nil
}

// Recv reads one datagram like RecvFrom, discarding the peer address. Used
// by the sender, which already knows its single fixed peer.
func (e *Endpoint) Recv(buf []byte) (int, error) {
	n, _, err := e.RecvFrom(buf)
	return n, err
}

// IsTimeout reports whether err is a blocking-mode receive timeout (as
// opposed to ErrWouldBlock or a genuine socket failure).
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// LocalAddr returns the endpoint's bound local address.
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the underlying socket. Safe to call more than once.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}
