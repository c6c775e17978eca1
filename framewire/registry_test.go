package framewire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagForName(t *testing.T) {
	require := require.New(t)

	// Tags must be stable across processes; both peers derive them
	// independently from the type name.
	require.Equal(TagForName("test.Text"), TagForName("test.Text"))
	require.NotEqual(TagForName("test.Text"), TagForName("test.Other"))
}

func TestTypeRegistry(t *testing.T) {
	require := require.New(t)

	t.Run("Register And Construct", func(t *testing.T) {
		r := NewTypeRegistry()

		tag, err := r.Register(func() Message { return newTextMessage("") })
		require.NoError(err)
		require.Equal(TagForName("test.Text"), tag)
		require.Equal(1, r.Size())
		require.True(r.HasType(tag))

		msg, ok := r.NewOfType(tag)
		require.True(ok)
		require.IsType(&textMessage{}, msg)
	})

	t.Run("Nil Factory Rejected", func(t *testing.T) {
		r := NewTypeRegistry()

		_, err := r.Register(nil)
		require.ErrorIs(err, ErrFactoryNil)

		_, err = r.Register(func() Message { return nil })
		require.ErrorIs(err, ErrFactoryReturnsNil)
	})

	t.Run("Unknown Tag", func(t *testing.T) {
		r := NewTypeRegistry()

		msg, ok := r.NewOfType(0x1234)
		require.False(ok)
		require.Nil(msg)
		require.False(r.HasType(0x1234))
	})

	t.Run("TagOf Registered Message", func(t *testing.T) {
		r := NewTypeRegistry()

		tag, err := r.Register(func() Message { return newTextMessage("") })
		require.NoError(err)

		got, ok := r.TagOf(newTextMessage("payload"))
		require.True(ok)
		require.Equal(tag, got)
	})

	t.Run("TagOf Unregistered Message", func(t *testing.T) {
		r := NewTypeRegistry()

		_, ok := r.TagOf(newTextMessage(""))
		require.False(ok)

		_, ok = r.TagOf(nil)
		require.False(ok)
	})

	t.Run("Explicit Tag", func(t *testing.T) {
		r := NewTypeRegistry()

		require.NoError(r.RegisterWithTag(42, func() Message { return newTextMessage("") }))
		require.True(r.HasType(42))

		// TagOf resolves explicit tags through the name table.
		tag, ok := r.TagOf(newTextMessage(""))
		require.True(ok)
		require.Equal(uint32(42), tag)
	})

	t.Run("Explicit Tag Zero Reserved", func(t *testing.T) {
		r := NewTypeRegistry()

		err := r.RegisterWithTag(0, func() Message { return newTextMessage("") })
		require.Error(err)
		require.False(r.HasType(0))
	})

	t.Run("Reregister Same Name Replaces", func(t *testing.T) {
		r := NewTypeRegistry()

		_, err := r.Register(func() Message { return newTextMessage("old") })
		require.NoError(err)

		tag, err := r.Register(func() Message { return newTextMessage("new") })
		require.NoError(err)
		require.Equal(1, r.Size())

		msg, ok := r.NewOfType(tag)
		require.True(ok)
		require.Equal("new", msg.(*textMessage).body)
	})
}
