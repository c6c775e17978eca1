package framewire

import (
	"fmt"

	"github.com/arloliu/framewire/logger"
)

// Serializer converts messages to and from their wire payload form while
// enforcing the protocol's payload size limits. Payloads above the hard cap
// are rejected in both directions; payloads above the warning threshold are
// accepted but logged, since a well-behaved peer should never produce them.
type Serializer struct {
	maxSize  int
	warnSize int
	logger   logger.Logger
}

// NewSerializer creates a Serializer with the default size limits
// (MaxPayloadSize hard cap, WarnPayloadSize warning threshold).
func NewSerializer(l logger.Logger) *Serializer {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Serializer{
		maxSize:  MaxPayloadSize,
		warnSize: WarnPayloadSize,
		logger:   l,
	}
}

// Marshal produces the serialized payload bytes of msg.
func (s *Serializer) Marshal(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrMessageNil
	}

	data, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.TypeName(), err)
	}

	if err := s.checkSize(msg.TypeName(), len(data)); err != nil {
		return nil, err
	}

	return data, nil
}

// Unmarshal populates msg from the payload bytes.
func (s *Serializer) Unmarshal(data []byte, msg Message) error {
	if msg == nil {
		return ErrMessageNil
	}

	if err := s.checkSize(msg.TypeName(), len(data)); err != nil {
		return err
	}

	if err := msg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("unmarshal %s: %w", msg.TypeName(), err)
	}

	return nil
}

func (s *Serializer) checkSize(typeName string, size int) error {
	if size > s.maxSize {
		return fmt.Errorf("%w: %s payload is %d bytes, maximum is %d", ErrMessageTooBig, typeName, size, s.maxSize)
	}

	if size > s.warnSize {
		s.logger.Warn("message payload exceeds warning threshold",
			"type", typeName, "size", size, "warn_threshold", s.warnSize,
		)
	}

	return nil
}
