package framewire

// ParseStage represents the decode progress of an inbound wire frame.
type ParseStage uint8

const (
	// StageAwaitingHeader waits for the 4-byte signature/version word.
	StageAwaitingHeader ParseStage = iota
	// StageAwaitingSize waits for the 4-byte payload size word.
	StageAwaitingSize
	// StageAwaitingType waits for the 4-byte type tag word.
	StageAwaitingType
	// StageAwaitingPayload accumulates payload bytes.
	StageAwaitingPayload
	// StageReadyToDispatch marks a fully received frame.
	StageReadyToDispatch
)

var parseStageNames = map[ParseStage]string{
	StageAwaitingHeader:  "awaiting-header",
	StageAwaitingSize:    "awaiting-size",
	StageAwaitingType:    "awaiting-type",
	StageAwaitingPayload: "awaiting-payload",
	StageReadyToDispatch: "ready-to-dispatch",
}

// String returns the string representation of the parse stage.
func (s ParseStage) String() string {
	if name, ok := parseStageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Frame is one in-progress inbound message on the wire.
//
// A frame is created lazily when a receive cycle begins with no frame in
// progress, persists across driver ticks until complete, and is discarded on
// dispatch, on invalidity, or on fatal error.
//
// Invariants: BytesReceived never exceeds DeclaredSize, and Payload is
// allocated exactly once, sized exactly to DeclaredSize, when the frame
// moves from StageAwaitingType to StageAwaitingPayload.
type Frame struct {
	Stage         ParseStage
	DeclaredSize  uint32
	BytesReceived uint32
	TypeTag       uint32
	Payload       []byte
	Valid         bool
}

func newFrame() *Frame {
	return &Frame{Stage: StageAwaitingHeader, Valid: true}
}

// IsComplete reports whether the whole declared payload has been received.
func (f *Frame) IsComplete() bool {
	return f.BytesReceived >= f.DeclaredSize
}

// Remaining returns the number of payload bytes still outstanding.
func (f *Frame) Remaining() uint32 {
	return f.DeclaredSize - f.BytesReceived
}
