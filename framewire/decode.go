package framewire

import (
	"errors"
)

// ReadStatus is the tri-state result of a read against a ByteSource.
type ReadStatus int

const (
	// ReadOK means bytes were read.
	ReadOK ReadStatus = iota
	// ReadWouldBlock means no bytes are currently available; the caller
	// should retry on the next tick. It is never an error.
	ReadWouldBlock
	// ReadFailed means the source failed (closed, reset, EOF).
	ReadFailed
)

// ByteSource supplies bytes to the FrameDecoder using non-blocking-with-
// timeout semantics: a read either returns bytes, reports that none are
// currently available, or reports a failure. Implementations accumulate
// partial word reads internally so a word split across reads is never lost.
type ByteSource interface {
	// ReadWord reads one 4-byte big-endian word. On ReadWouldBlock any bytes
	// already consumed are retained and the read resumes on the next call.
	ReadWord() (uint32, ReadStatus)

	// ReadInto reads up to len(p) bytes into p, returning the count read.
	// The count may be non-zero even when the status is ReadWouldBlock.
	ReadInto(p []byte) (int, ReadStatus)
}

// Decode errors returned by FrameDecoder.Step. All are non-fatal protocol
// errors except ErrSourceFailed, which indicates the underlying connection
// is gone.
var (
	// ErrHeaderMismatch indicates a header word whose signature does not
	// match the protocol magic; the peer may be speaking another protocol.
	ErrHeaderMismatch = errors.New("frame header signature mismatch")

	// ErrPayloadTooLarge indicates a declared payload size beyond MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("declared payload size exceeds maximum")

	// ErrSourceFailed indicates the byte source failed mid-frame.
	ErrSourceFailed = errors.New("byte source read failed")
)

// FrameDecoder drives a single inbound frame through its parse stages using
// only the bytes currently available from a ByteSource. It never blocks on
// unavailable bytes: each stage consumes exactly the bytes it needs and
// Step returns when the source would block.
//
// FrameDecoder holds no I/O state beyond the one in-progress frame and is
// not goroutine-safe; the driver loop is its only caller.
type FrameDecoder struct {
	frame   *Frame
	maxSize uint32
}

// NewFrameDecoder creates a FrameDecoder with the default payload size cap.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{maxSize: MaxPayloadSize}
}

// Frame returns the in-progress inbound frame, or nil if none.
func (d *FrameDecoder) Frame() *Frame {
	return d.frame
}

// Reset discards the in-progress frame, if any.
func (d *FrameDecoder) Reset() {
	d.frame = nil
}

// Step performs one decode cycle. Depending on the bytes currently
// available it may advance zero stages, several stages, or complete a whole
// frame.
//
// It returns a non-nil Frame only when a frame reached StageReadyToDispatch;
// the decoder releases the frame and the caller owns it. A nil frame with a
// nil error means "try again later" (would-block, or a keepalive was
// consumed). Protocol errors are returned as the sentinel errors declared in
// this package; after ErrHeaderMismatch the parse stage remains
// StageAwaitingHeader so resynchronization is retried word by word.
func (d *FrameDecoder) Step(src ByteSource) (*Frame, error) {
	if d.frame == nil {
		d.frame = newFrame()
	}
	f := d.frame

	if f.Stage == StageAwaitingHeader {
		word, status := src.ReadWord()
		if done, err := d.checkRead(status); done {
			return nil, err
		}

		if word == KeepaliveWord {
			// Keepalive: consumed, no size/type/payload follow.
			return nil, nil
		}

		if SignatureOf(word) != Signature {
			// Stage intentionally stays at StageAwaitingHeader.
			return nil, ErrHeaderMismatch
		}

		f.Stage = StageAwaitingSize
	}

	if f.Stage == StageAwaitingSize {
		size, status := src.ReadWord()
		if done, err := d.checkRead(status); done {
			return nil, err
		}

		if size > d.maxSize {
			d.Reset()
			return nil, ErrPayloadTooLarge
		}

		f.DeclaredSize = size
		f.Stage = StageAwaitingType
	}

	if f.Stage == StageAwaitingType {
		tag, status := src.ReadWord()
		if done, err := d.checkRead(status); done {
			return nil, err
		}

		f.TypeTag = tag
		f.Payload = make([]byte, f.DeclaredSize)
		f.Stage = StageAwaitingPayload
	}

	if f.Stage == StageAwaitingPayload {
		if !f.IsComplete() {
			n, status := src.ReadInto(f.Payload[f.BytesReceived:])
			f.BytesReceived += uint32(n) //nolint:gosec

			if status == ReadFailed {
				d.Reset()
				return nil, ErrSourceFailed
			}
		}

		if !f.IsComplete() {
			return nil, nil
		}

		if !f.Valid {
			// Invalid frames are discarded without dispatch.
			d.Reset()
			return nil, nil
		}

		f.Stage = StageReadyToDispatch
	}

	d.frame = nil

	return f, nil
}

// checkRead maps a word-read status to the Step control flow: done=true
// means Step must return immediately with the given error (nil for
// would-block).
func (d *FrameDecoder) checkRead(status ReadStatus) (done bool, err error) {
	switch status {
	case ReadWouldBlock:
		return true, nil
	case ReadFailed:
		d.Reset()
		return true, ErrSourceFailed
	default:
		return false, nil
	}
}
