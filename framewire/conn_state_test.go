package framewire

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStateTracker(t *testing.T) {
	require := require.New(t)

	t.Run("Initial State", func(t *testing.T) {
		st := NewStateTracker(nil)
		require.Equal(InitialState, st.State())
		require.Equal(InitialState, st.Next())
	})

	t.Run("Request Then Commit", func(t *testing.T) {
		st := NewStateTracker(nil)

		st.Request(ConnectingState)
		// The transition is pending until committed.
		require.Equal(InitialState, st.State())
		require.Equal(ConnectingState, st.Next())

		state, changed := st.Commit()
		require.True(changed)
		require.Equal(ConnectingState, state)
		require.Equal(ConnectingState, st.State())
	})

	t.Run("Commit Without Pending Is NoOp", func(t *testing.T) {
		st := NewStateTracker(nil)

		state, changed := st.Commit()
		require.False(changed)
		require.Equal(InitialState, state)

		st.Request(ConnectedState)
		_, changed = st.Commit()
		require.True(changed)

		// Second commit of the same pending state changes nothing.
		_, changed = st.Commit()
		require.False(changed)
	})

	t.Run("Latest Request Wins", func(t *testing.T) {
		st := NewStateTracker(nil)

		st.Request(ConnectedState)
		st.Request(ClosingState)

		state, changed := st.Commit()
		require.True(changed)
		require.Equal(ClosingState, state)
	})

	t.Run("Set Forces Both States", func(t *testing.T) {
		st := NewStateTracker(nil)

		st.Request(ConnectingState)
		st.Set(ClosedState)

		require.Equal(ClosedState, st.State())
		require.Equal(ClosedState, st.Next())

		_, changed := st.Commit()
		require.False(changed)
	})

	t.Run("WaitState Wakes On Commit", func(t *testing.T) {
		st := NewStateTracker(nil)

		var wg sync.WaitGroup
		wg.Add(1)

		waitErr := make(chan error, 1)
		go func() {
			defer wg.Done()
			waitErr <- st.WaitState(context.Background(), ConnectedState)
		}()

		time.Sleep(20 * time.Millisecond)
		st.Request(ConnectedState)
		st.Commit()

		wg.Wait()
		require.NoError(<-waitErr)
	})

	t.Run("WaitState Returns When Already There", func(t *testing.T) {
		st := NewStateTracker(nil)
		require.NoError(st.WaitState(context.Background(), InitialState))
	})

	t.Run("WaitState Honors Context", func(t *testing.T) {
		st := NewStateTracker(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := st.WaitTerminal(ctx)
		require.ErrorIs(err, context.DeadlineExceeded)
	})

	t.Run("WaitTerminal", func(t *testing.T) {
		st := NewStateTracker(nil)

		done := make(chan error, 1)
		go func() { done <- st.WaitTerminal(context.Background()) }()

		time.Sleep(20 * time.Millisecond)
		st.Request(ErrorState)
		st.Commit()

		require.NoError(<-done)
	})
}

func TestConnStatePredicates(t *testing.T) {
	require := require.New(t)

	require.True(ClosedState.IsTerminal())
	require.True(ErrorState.IsTerminal())
	require.False(ClosingState.IsTerminal())
	require.False(InitialState.IsTerminal())

	require.True(ConnectedState.IsConnected())
	require.False(ListeningState.IsConnected())

	require.Equal("connected", ConnectedState.String())
	require.Equal("unknown", ConnState(99).String())
}
