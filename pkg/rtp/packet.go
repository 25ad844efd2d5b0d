package rtp

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

// ErrInvalidPacket is returned by Decode for any malformed datagram: too
// short, length mismatch, or checksum mismatch. Callers drop the datagram
// silently per the protocol's error taxonomy; they should never branch on
// the specific cause.
var ErrInvalidPacket = errors.New("rtp: invalid packet")

// Header is the parsed fixed 16-byte packet header.
type Header struct {
	Type     PacketType
	SeqNum   uint32
	Length   uint32
	Checksum uint32
}

// Encode assembles a wire packet: header with checksum zeroed, payload
// appended, then the checksum recomputed over the whole thing and patched
// back into the header.
func Encode(typ PacketType, seq uint32, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(typ))
	binary.BigEndian.PutUint32(buf[4:8], seq)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(payload)))
	// buf[12:16] (checksum) stays zero for the checksum pass.
	copy(buf[HeaderSize:], payload)

	sum := crc32.ChecksumIEEE(buf)
	binary.BigEndian.PutUint32(buf[12:16], sum)
	return buf
}

// MakeACK is shorthand for Encode(TypeACK, seq, nil).
func MakeACK(seq uint32) []byte {
	return Encode(TypeACK, seq, nil)
}

// Decode parses a raw datagram into its header and payload. It returns
// ErrInvalidPacket for anything short of a well-formed, checksum-verified
// packet: too few bytes for a header, a length field that disagrees with
// the datagram size (too short or with trailing bytes), or a checksum
// mismatch.
func Decode(raw []byte) (Header, []byte, error) {
	if len(raw) < HeaderSize {
		return Header{}, nil, ErrInvalidPacket
	}

	h := Header{
		Type:     PacketType(binary.BigEndian.Uint32(raw[0:4])),
		SeqNum:   binary.BigEndian.Uint32(raw[4:8]),
		Length:   binary.BigEndian.Uint32(raw[8:12]),
		Checksum: binary.BigEndian.Uint32(raw[12:16]),
	}

	if uint64(HeaderSize)+uint64(h.Length) != uint64(len(raw)) {
		return Header{}, nil, ErrInvalidPacket
	}
	payload := raw[HeaderSize:]

	verify := make([]byte, len(raw))
	copy(verify, raw)
	binary.BigEndian.PutUint32(verify[12:16], 0)
	if crc32.ChecksumIEEE(verify) != h.Checksum {
		return Header{}, nil, ErrInvalidPacket
	}

	return h, payload, nil
}
