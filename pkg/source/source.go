// Package source wraps the byte source the sender reads its payload from:
// a finite stream chunked into consecutive DATA-packet-sized pieces.
package source

import (
	"io"

	"github.com/ventosilenzioso/rtp-go/pkg/rtp"
)

// Chunks reads all of r and splits it into consecutive payloads of at most
// rtp.MaxDataSize bytes each, assigned implicitly to sequence numbers
// 1..len(chunks). A zero-length source yields a zero-length chunk slice
// (no DATA packets are sent, only START and END).
func Chunks(r io.Reader) ([][]byte, error) {
	message, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var chunks [][]byte
	for i := 0; i < len(message); i += rtp.MaxDataSize {
		end := i + rtp.MaxDataSize
		if end > len(message) {
			end = len(message)
		}
		chunks = append(chunks, message[i:end])
	}
	return chunks, nil
}
