package framewiretcp

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/lithdew/bytesutil"

	"github.com/arloliu/framewire/framewire"
)

// connSource adapts a net.Conn to the framewire.ByteSource contract. Each
// read is bounded by a deadline so the driver loop can never block on an
// idle peer for longer than the configured receive timeout.
//
// Partial word reads are accumulated in the word buffer across calls, so a
// header word split across TCP segments survives any number of would-block
// returns in between.
type connSource struct {
	conn    net.Conn
	timeout time.Duration
	word    [framewire.WordSize]byte
	have    int
}

func newConnSource(conn net.Conn, timeout time.Duration) *connSource {
	return &connSource{conn: conn, timeout: timeout}
}

// ReadWord reads one 4-byte big-endian word, resuming a partially read word
// from the previous call.
func (s *connSource) ReadWord() (uint32, framewire.ReadStatus) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return 0, framewire.ReadFailed
	}

	for s.have < framewire.WordSize {
		n, err := s.conn.Read(s.word[s.have:])
		s.have += n

		if err != nil {
			if isTimeout(err) {
				return 0, framewire.ReadWouldBlock
			}

			return 0, framewire.ReadFailed
		}
	}

	s.have = 0

	return bytesutil.Uint32BE(s.word[:]), framewire.ReadOK
}

// ReadInto reads up to len(p) bytes into p. The returned count may be
// non-zero even when the status is ReadWouldBlock.
func (s *connSource) ReadInto(p []byte) (int, framewire.ReadStatus) {
	if len(p) == 0 {
		return 0, framewire.ReadOK
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return 0, framewire.ReadFailed
	}

	n, err := s.conn.Read(p)
	if err != nil {
		if isTimeout(err) {
			return n, framewire.ReadWouldBlock
		}

		if n > 0 {
			// Deliver what arrived; the failure surfaces on the next read.
			return n, framewire.ReadOK
		}

		return 0, framewire.ReadFailed
	}

	return n, framewire.ReadOK
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
