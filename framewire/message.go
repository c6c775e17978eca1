package framewire

import "encoding"

// Message represents an application message exchanged over a framewire
// connection.
//
// The transport treats payloads as opaque bytes; a message only needs to
// provide its own binary form and a stable type name. The type name is
// hashed into the 32-bit type tag carried on the wire, so it must be
// identical on both peers for a given message type.
type Message interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	// TypeName returns the stable, globally unique name of the message type,
	// e.g. "app.JobRequest". Both peers must use the same name for the
	// same wire format.
	TypeName() string
}

// MessageFactory constructs an empty message of a concrete type, ready to be
// populated by Serializer.Unmarshal.
type MessageFactory func() Message
