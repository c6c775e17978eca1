package framewire

import (
	"github.com/lithdew/bytesutil"
)

// Wire-level constants. All multi-byte values on the wire are big-endian.
const (
	// Signature is the 16-bit magic carried in the top half of the header word.
	Signature uint32 = 0x2BAD
	// VersionMajor is the protocol major version carried in the header word.
	VersionMajor uint32 = 1
	// VersionMinor is the protocol minor version carried in the header word.
	VersionMinor uint32 = 0

	// HeaderWord is the full 32-bit header word sent in front of every frame.
	HeaderWord = Signature<<16 | VersionMajor<<8 | VersionMinor

	// KeepaliveWord is the bare zero word sent as a liveness probe.
	KeepaliveWord uint32 = 0

	// WordSize is the size in bytes of each wire word.
	WordSize = 4

	// MaxPayloadSize is the hard cap on a single payload (500 MiB). A frame
	// declaring more is rejected before its buffer is allocated.
	MaxPayloadSize = 500 * 1024 * 1024

	// WarnPayloadSize is the threshold (128 MiB) above which payloads are
	// accepted but logged as suspiciously large.
	WarnPayloadSize = 128 * 1024 * 1024
)

// SignatureOf extracts the 16-bit signature from a header word.
func SignatureOf(word uint32) uint32 {
	return word >> 16
}

// AppendFrame appends one complete wire frame to dst and returns the
// extended slice: header word, payload size, type tag, then the payload.
func AppendFrame(dst []byte, typeTag uint32, payload []byte) []byte {
	dst = bytesutil.AppendUint32BE(dst, HeaderWord)
	dst = bytesutil.AppendUint32BE(dst, uint32(len(payload))) //nolint:gosec
	dst = bytesutil.AppendUint32BE(dst, typeTag)

	return append(dst, payload...)
}

// AppendKeepalive appends a keepalive frame (a single zero word) to dst.
func AppendKeepalive(dst []byte) []byte {
	return bytesutil.AppendUint32BE(dst, KeepaliveWord)
}

// FrameSize returns the encoded size of a frame carrying payloadLen bytes.
func FrameSize(payloadLen int) int {
	return 3*WordSize + payloadLen
}
