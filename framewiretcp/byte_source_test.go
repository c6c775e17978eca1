package framewiretcp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/framewire/framewire"
)

func TestConnSource(t *testing.T) {
	require := require.New(t)

	newPair := func(t *testing.T, timeout time.Duration) (*connSource, net.Conn) {
		t.Helper()

		local, remote := net.Pipe()
		t.Cleanup(func() {
			local.Close()
			remote.Close()
		})

		return newConnSource(local, timeout), remote
	}

	t.Run("ReadWord Would Block When Idle", func(t *testing.T) {
		src, _ := newPair(t, 30*time.Millisecond)

		word, status := src.ReadWord()
		require.Equal(framewire.ReadWouldBlock, status)
		require.Equal(uint32(0), word)
	})

	t.Run("ReadWord Full Word", func(t *testing.T) {
		src, remote := newPair(t, 200*time.Millisecond)

		go remote.Write([]byte{0x2B, 0xAD, 0x01, 0x00})

		word, status := src.ReadWord()
		require.Equal(framewire.ReadOK, status)
		require.Equal(uint32(0x2BAD0100), word)
	})

	t.Run("Partial Word Survives Would Block", func(t *testing.T) {
		src, remote := newPair(t, 50*time.Millisecond)

		go remote.Write([]byte{0x2B, 0xAD})

		_, status := src.ReadWord()
		require.Equal(framewire.ReadWouldBlock, status)

		go remote.Write([]byte{0x01, 0x00})

		word, status := src.ReadWord()
		require.Equal(framewire.ReadOK, status)
		require.Equal(uint32(0x2BAD0100), word)
	})

	t.Run("ReadWord Source Failure", func(t *testing.T) {
		src, remote := newPair(t, 50*time.Millisecond)

		remote.Close()

		_, status := src.ReadWord()
		require.Equal(framewire.ReadFailed, status)
	})

	t.Run("ReadInto Partial Fill", func(t *testing.T) {
		src, remote := newPair(t, 200*time.Millisecond)

		go remote.Write([]byte{0x01, 0x02, 0x03})

		buf := make([]byte, 5)
		n, status := src.ReadInto(buf)
		require.Equal(framewire.ReadOK, status)
		require.Equal(3, n)
		require.Equal([]byte{0x01, 0x02, 0x03}, buf[:3])
	})

	t.Run("ReadInto Empty Buffer", func(t *testing.T) {
		src, _ := newPair(t, 30*time.Millisecond)

		n, status := src.ReadInto(nil)
		require.Equal(framewire.ReadOK, status)
		require.Equal(0, n)
	})

	t.Run("ReadInto Would Block When Idle", func(t *testing.T) {
		src, _ := newPair(t, 30*time.Millisecond)

		n, status := src.ReadInto(make([]byte, 4))
		require.Equal(framewire.ReadWouldBlock, status)
		require.Equal(0, n)
	})

	t.Run("ReadInto Source Failure", func(t *testing.T) {
		src, remote := newPair(t, 50*time.Millisecond)

		remote.Close()

		n, status := src.ReadInto(make([]byte, 4))
		require.Equal(framewire.ReadFailed, status)
		require.Equal(0, n)
	})
}
