package framewire

import (
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/zeebo/xxh3"
)

var (
	// ErrFactoryNil indicates that a nil MessageFactory was provided.
	ErrFactoryNil = errors.New("message factory is nil")

	// ErrFactoryReturnsNil indicates that a MessageFactory returned a nil message.
	ErrFactoryReturnsNil = errors.New("message factory returns nil message")
)

// TagForName derives the 32-bit wire type tag for a message type name.
//
// The tag is the low 32 bits of the xxh3 hash of the name. Both peers derive
// tags from names, so they agree on the tag without exchanging a schema.
func TagForName(name string) uint32 {
	return uint32(xxh3.HashString(name)) //nolint:gosec
}

// TypeRegistry maps 32-bit wire type tags to message factories.
//
// It is the collaborator the transport uses to turn an inbound type tag into
// a constructible message, and an outbound message into its tag. All methods
// are safe for concurrent use.
type TypeRegistry struct {
	factories *xsync.MapOf[uint32, MessageFactory]
	names     *xsync.MapOf[uint32, string]
}

// NewTypeRegistry creates an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		factories: xsync.NewMapOf[uint32, MessageFactory](),
		names:     xsync.NewMapOf[uint32, string](),
	}
}

// Register registers a message factory under the tag derived from the
// factory's message type name. It returns the tag.
//
// Registering the same type name twice replaces the previous factory.
// An error is returned if the factory is nil or constructs a nil message.
func (r *TypeRegistry) Register(factory MessageFactory) (uint32, error) {
	if factory == nil {
		return 0, ErrFactoryNil
	}

	probe := factory()
	if probe == nil {
		return 0, ErrFactoryReturnsNil
	}

	name := probe.TypeName()
	tag := TagForName(name)

	if prevName, loaded := r.names.LoadOrStore(tag, name); loaded && prevName != name {
		return 0, fmt.Errorf("type tag collision: %q and %q both hash to %#08x", prevName, name, tag)
	}

	r.factories.Store(tag, factory)

	return tag, nil
}

// RegisterWithTag registers a message factory under an explicit tag,
// bypassing name-based tag derivation. Tag zero is reserved for keepalive
// frames and is rejected.
func (r *TypeRegistry) RegisterWithTag(tag uint32, factory MessageFactory) error {
	if factory == nil {
		return ErrFactoryNil
	}
	if tag == 0 {
		return errors.New("type tag 0 is reserved for keepalive frames")
	}

	probe := factory()
	if probe == nil {
		return ErrFactoryReturnsNil
	}

	r.names.Store(tag, probe.TypeName())
	r.factories.Store(tag, factory)

	return nil
}

// HasType reports whether a factory is registered for the given tag.
func (r *TypeRegistry) HasType(tag uint32) bool {
	_, ok := r.factories.Load(tag)
	return ok
}

// NewOfType constructs an empty message for the given tag.
// It returns false if the tag is unknown.
func (r *TypeRegistry) NewOfType(tag uint32) (Message, bool) {
	factory, ok := r.factories.Load(tag)
	if !ok {
		return nil, false
	}

	return factory(), true
}

// TagOf resolves the wire tag for an outbound message.
// It returns false if the message's type has not been registered.
func (r *TypeRegistry) TagOf(msg Message) (uint32, bool) {
	if msg == nil {
		return 0, false
	}

	tag := TagForName(msg.TypeName())
	if name, ok := r.names.Load(tag); ok && name == msg.TypeName() {
		return tag, true
	}

	// The message may have been registered under an explicit tag.
	var found uint32
	var ok bool
	r.names.Range(func(tag uint32, name string) bool {
		if name == msg.TypeName() {
			found = tag
			ok = true
			return false
		}
		return true
	})

	return found, ok
}

// Size returns the number of registered message types.
func (r *TypeRegistry) Size() int {
	return r.factories.Size()
}
