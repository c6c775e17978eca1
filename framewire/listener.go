package framewire

// Listener receives connection lifecycle notifications.
//
// All notifications are delivered synchronously on the driver goroutine, in
// listener registration order. A listener must not block; a slow listener
// stalls the driver loop and therefore all socket I/O.
type Listener interface {
	// StateChanged is invoked exactly once for every committed state
	// transition, with the new state.
	StateChanged(state ConnState)

	// MessageReceived signals that the inbound queue is non-empty. The
	// message itself is not passed; the application dequeues it with
	// TakeNextMessage.
	MessageReceived()

	// Error is invoked for every reported connection error, fatal or not.
	Error(err *Error)
}

// ListenerFuncs adapts plain functions to the Listener interface.
// Nil members are skipped.
type ListenerFuncs struct {
	OnStateChanged    func(state ConnState)
	OnMessageReceived func()
	OnError           func(err *Error)
}

var _ Listener = (*ListenerFuncs)(nil)

func (l *ListenerFuncs) StateChanged(state ConnState) {
	if l.OnStateChanged != nil {
		l.OnStateChanged(state)
	}
}

func (l *ListenerFuncs) MessageReceived() {
	if l.OnMessageReceived != nil {
		l.OnMessageReceived()
	}
}

func (l *ListenerFuncs) Error(err *Error) {
	if l.OnError != nil {
		l.OnError(err)
	}
}
