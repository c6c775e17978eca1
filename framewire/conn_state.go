package framewire

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/framewire/logger"
)

// ConnState represents the lifecycle stage of a framewire connection.
type ConnState uint32

// Connection states. A connection starts in InitialState and ends in one of
// the terminal states ClosedState or ErrorState.
const (
	// InitialState indicates the connection has not been started yet.
	InitialState ConnState = iota
	// ConnectingState indicates the connection is dialing the remote endpoint.
	ConnectingState
	// OpeningState indicates the listening socket is being bound.
	OpeningState
	// ListeningState indicates the socket is waiting for an incoming connection.
	ListeningState
	// ConnectedState indicates messages can be exchanged.
	ConnectedState
	// ClosingState indicates the connection is shutting down.
	ClosingState
	// ClosedState indicates the connection closed normally. Terminal.
	ClosedState
	// ErrorState indicates the connection terminated on a fatal error. Terminal.
	ErrorState
)

var connStateNames = map[ConnState]string{
	InitialState:    "initial",
	ConnectingState: "connecting",
	OpeningState:    "opening",
	ListeningState:  "listening",
	ConnectedState:  "connected",
	ClosingState:    "closing",
	ClosedState:     "closed",
	ErrorState:      "error",
}

// String returns string representation of the current state.
func (cs ConnState) String() string {
	if name, ok := connStateNames[cs]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal returns true if the state is ClosedState or ErrorState.
// The driver loop exits once a terminal state is committed.
func (cs ConnState) IsTerminal() bool {
	return cs == ClosedState || cs == ErrorState
}

// IsConnected returns true if the state is ConnectedState.
func (cs ConnState) IsConnected() bool { return cs == ConnectedState }

// StateTracker tracks the committed and pending connection states of a
// framewire connection.
//
// The driver loop requests transitions by setting the pending state at any
// point during a tick; the transition is only committed at the tick boundary
// via Commit, so a tick observes a single consistent state throughout.
// Application goroutines may also request a transition (shutdown), which the
// driver picks up at its next commit.
//
// State reads, pending updates and waits are safe for concurrent use.
type StateTracker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	state  atomic.Uint32
	next   atomic.Uint32
	logger logger.Logger
}

// NewStateTracker creates a StateTracker initialized to InitialState.
func NewStateTracker(l logger.Logger) *StateTracker {
	st := &StateTracker{logger: l}
	if st.logger == nil {
		st.logger = logger.GetLogger()
	}

	st.cond = sync.NewCond(&st.mu)
	st.state.Store(uint32(InitialState))
	st.next.Store(uint32(InitialState))

	return st
}

// State returns the committed connection state.
func (st *StateTracker) State() ConnState {
	return ConnState(st.state.Load())
}

// Next returns the pending connection state. It equals State() when no
// transition is pending.
func (st *StateTracker) Next() ConnState {
	return ConnState(st.next.Load())
}

// Request sets the pending state. The transition takes effect at the next
// Commit call.
func (st *StateTracker) Request(state ConnState) {
	st.next.Store(uint32(state))
}

// Commit applies the pending state if it differs from the committed state.
// It returns the committed state and whether a transition occurred. Waiters
// blocked in WaitState are woken on every transition.
func (st *StateTracker) Commit() (ConnState, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	cur := st.State()
	next := st.Next()
	if next == cur {
		return cur, false
	}

	st.state.Store(uint32(next))
	st.cond.Broadcast()

	return next, true
}

// Set forces both the committed and pending state without notifying a
// transition. It is intended for reset paths where no driver loop is
// running.
func (st *StateTracker) Set(state ConnState) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.state.Store(uint32(state))
	st.next.Store(uint32(state))
	st.cond.Broadcast()
}

// WaitState waits for the committed state to reach one of the specified
// states or until the context is done. It returns nil if a desired state is
// reached, or the context error otherwise.
func (st *StateTracker) WaitState(ctx context.Context, states ...ConnState) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	matches := func() bool {
		cur := st.State()
		for _, s := range states {
			if cur == s {
				return true
			}
		}
		return false
	}

	if matches() {
		return nil
	}

	stopFunc := context.AfterFunc(ctx, func() {
		st.cond.Broadcast()
	})
	defer stopFunc()

	for !matches() {
		select {
		case <-ctx.Done():
			st.logger.Debug("wait connection state canceled", "cur_state", st.State(), "desired_states", states)
			return ctx.Err()
		default:
			st.cond.Wait()
		}
	}

	return nil
}

// WaitTerminal waits for the committed state to reach ClosedState or
// ErrorState, or until the context is done.
func (st *StateTracker) WaitTerminal(ctx context.Context) error {
	return st.WaitState(ctx, ClosedState, ErrorState)
}
