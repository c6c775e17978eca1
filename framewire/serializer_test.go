package framewire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializer(t *testing.T) {
	require := require.New(t)

	t.Run("Marshal And Unmarshal", func(t *testing.T) {
		s := NewSerializer(nil)

		data, err := s.Marshal(newTextMessage("hello"))
		require.NoError(err)
		require.Equal([]byte("hello"), data)

		out := newTextMessage("")
		require.NoError(s.Unmarshal(data, out))
		require.Equal("hello", out.body)
	})

	t.Run("Nil Message", func(t *testing.T) {
		s := NewSerializer(nil)

		_, err := s.Marshal(nil)
		require.ErrorIs(err, ErrMessageNil)

		require.ErrorIs(s.Unmarshal([]byte("x"), nil), ErrMessageNil)
	})

	t.Run("Marshal Failure Wrapped", func(t *testing.T) {
		s := NewSerializer(nil)

		_, err := s.Marshal(&brokenMessage{})
		require.Error(err)
		require.Contains(err.Error(), "test.Broken")
	})

	t.Run("Unmarshal Failure Wrapped", func(t *testing.T) {
		s := NewSerializer(nil)

		err := s.Unmarshal([]byte("x"), &brokenMessage{})
		require.Error(err)
		require.Contains(err.Error(), "test.Broken")
	})

	t.Run("Payload Over Hard Cap Rejected", func(t *testing.T) {
		s := NewSerializer(nil)
		s.maxSize = 8

		_, err := s.Marshal(newTextMessage("way too long for the cap"))
		require.ErrorIs(err, ErrMessageTooBig)

		err = s.Unmarshal(make([]byte, 9), newTextMessage(""))
		require.ErrorIs(err, ErrMessageTooBig)
	})

	t.Run("Payload Over Warn Threshold Accepted", func(t *testing.T) {
		s := NewSerializer(nil)
		s.warnSize = 2

		data, err := s.Marshal(newTextMessage("warned but fine"))
		require.NoError(err)
		require.NotEmpty(data)
	})
}
