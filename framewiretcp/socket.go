package framewiretcp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"

	"github.com/arloliu/framewire/framewire"
	"github.com/arloliu/framewire/internal/pool"
	"github.com/arloliu/framewire/internal/queue"
	"github.com/arloliu/framewire/logger"
)

const driverTaskName = "connDriverLoop"

// Socket is a framewire endpoint over a single TCP connection.
//
// All connection work happens on one driver goroutine started by Connect or
// Listen; the public methods only exchange data with that goroutine through
// the outbound and inbound queues and the state tracker, so they are safe to
// call from any goroutine.
type Socket struct {
	pctx      context.Context
	ctx       context.Context
	ctxCancel context.CancelFunc

	cfg    *ConnectionConfig
	logger logger.Logger

	registry   *framewire.TypeRegistry
	serializer *framewire.Serializer
	tracker    *framewire.StateTracker
	taskMgr    *framewire.TaskManager

	listenerMu sync.Mutex
	listeners  []framewire.Listener

	// lnMu guards tcpListener, which is read by BoundAddr off the driver
	// goroutine.
	lnMu        sync.Mutex
	tcpListener net.Listener

	// conn, src, decoder and lastKeepAlive are owned by the driver goroutine.
	conn          net.Conn
	src           *connSource
	decoder       *framewire.FrameDecoder
	lastKeepAlive time.Time

	sendQueue queue.Queue[framewire.Message]
	recvQueue queue.Queue[framewire.Message]

	errMu   sync.Mutex
	lastErr *framewire.Error

	retryDelay *backoff.Backoff

	running    atomic.Bool
	shutdown   atomic.Bool
	shutdownCh chan struct{}

	metrics ConnectionMetrics
}

// NewSocket creates a socket with the given configuration and message type
// registry. The parent context bounds the socket's whole lifetime: when it is
// canceled the driver goroutine stops.
//
// The socket starts in InitialState and does nothing until Connect or Listen
// is called.
func NewSocket(ctx context.Context, cfg *ConnectionConfig, registry *framewire.TypeRegistry) (*Socket, error) {
	if cfg == nil {
		return nil, framewire.ErrConfigNil
	}
	if registry == nil {
		return nil, framewire.ErrRegistryNil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Socket{
		pctx:       ctx,
		cfg:        cfg,
		logger:     cfg.logger,
		registry:   registry,
		serializer: framewire.NewSerializer(cfg.logger),
		tracker:    framewire.NewStateTracker(cfg.logger),
		decoder:    framewire.NewFrameDecoder(),
		sendQueue:  queue.NewSliceQueue[framewire.Message](cfg.sendQueuePrealloc),
		recvQueue:  queue.NewLockFreeQueue[framewire.Message](),
		retryDelay: &backoff.Backoff{
			Min:    cfg.retryMinDelay,
			Max:    cfg.retryMaxDelay,
			Factor: 2,
			Jitter: true,
		},
		shutdownCh: make(chan struct{}),
	}
	s.ctx, s.ctxCancel = context.WithCancel(ctx)
	s.taskMgr = framewire.NewTaskManager(s.ctx, s.logger)

	return s, nil
}

// AddListener registers a listener for state changes, inbound messages, and
// connection errors. Listeners are invoked synchronously on the driver
// goroutine in registration order and must not block.
func (s *Socket) AddListener(l framewire.Listener) {
	if l == nil {
		return
	}

	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	s.listeners = append(s.listeners, l)
}

// State returns the committed connection state.
func (s *Socket) State() framewire.ConnState {
	return s.tracker.State()
}

// LastError returns the most recent connection error, or nil if none has
// occurred since the socket was created or reset.
func (s *Socket) LastError() *framewire.Error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.lastErr
}

// Metrics returns the socket's traffic counters.
func (s *Socket) Metrics() *ConnectionMetrics {
	return &s.metrics
}

// Connect starts the driver goroutine as the connecting side: the socket
// dials the configured remote endpoint and retries with backoff until it
// succeeds or the socket is closed.
//
// It returns ErrInvalidState if the socket is not in InitialState.
func (s *Socket) Connect() error {
	return s.start(framewire.ConnectingState)
}

// Listen starts the driver goroutine as the listening side: the socket binds
// the configured local address and accepts exactly one incoming connection.
//
// It returns ErrInvalidState if the socket is not in InitialState.
func (s *Socket) Listen() error {
	return s.start(framewire.OpeningState)
}

func (s *Socket) start(first framewire.ConnState) error {
	if !s.running.CompareAndSwap(false, true) {
		return framewire.ErrInvalidState
	}

	if s.tracker.State() != framewire.InitialState {
		s.running.Store(false)
		return framewire.ErrInvalidState
	}

	s.tracker.Request(first)

	if err := s.taskMgr.Start(driverTaskName, s.runTick); err != nil {
		s.tracker.Request(framewire.InitialState)
		s.running.Store(false)

		return err
	}

	return nil
}

// Send enqueues a message for transmission. The driver loop drains the queue
// in FIFO order on its next connected tick; messages enqueued before the
// connection is established are sent once it is.
//
// Send returns ErrMessageNil for a nil message and ErrSocketClosed once the
// socket is shutting down or has reached a terminal state. A nil return means
// the message was queued, not that it was delivered; transmission failures
// are reported asynchronously to listeners.
func (s *Socket) Send(msg framewire.Message) error {
	if msg == nil {
		return framewire.ErrMessageNil
	}

	if s.shutdown.Load() || s.tracker.State().IsTerminal() {
		return framewire.ErrSocketClosed
	}

	s.sendQueue.Enqueue(msg)

	return nil
}

// TakeNextMessage removes and returns the oldest received message. It never
// blocks; ok is false when the inbound queue is empty. Messages are returned
// in arrival order.
func (s *Socket) TakeNextMessage() (framewire.Message, bool) {
	return s.recvQueue.Dequeue()
}

// ReceivedCount returns the number of messages waiting in the inbound queue.
func (s *Socket) ReceivedCount() int {
	return s.recvQueue.Length()
}

// BoundAddr returns the local address of the listening socket, or nil if the
// socket is not listening. It is the way to discover the actual port after
// binding port 0.
func (s *Socket) BoundAddr() net.Addr {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	if s.tcpListener == nil {
		return nil
	}

	return s.tcpListener.Addr()
}

// Close requests an orderly shutdown and waits for the driver goroutine to
// reach a terminal state. Queued outbound messages that have not been sent
// yet are dropped. Close is idempotent; subsequent calls return immediately.
//
// If the driver does not reach a terminal state within the configured close
// timeout, the connection is torn down forcibly and the timeout error is
// returned.
func (s *Socket) Close() error {
	if s.shutdown.Swap(true) {
		return nil
	}

	if !s.running.Load() {
		// Driver not running: either never started or already terminated.
		if !s.tracker.State().IsTerminal() {
			s.tracker.Set(framewire.ClosedState)
		}
		s.ctxCancel()

		return nil
	}

	s.tracker.Request(framewire.ClosingState)
	close(s.shutdownCh)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.closeTimeout)
	defer cancel()

	err := s.tracker.WaitTerminal(ctx)
	if err != nil {
		s.logger.Error("timeout waiting for connection to close", "error", err)
		s.taskMgr.Stop()
		s.tracker.Set(framewire.ClosedState)
	}

	s.taskMgr.Wait()
	s.ctxCancel()

	return err
}

// Reset returns a terminated socket to InitialState so it can be started
// again with Connect or Listen. All queues, the last error, and the retry
// backoff are cleared.
//
// It returns ErrInvalidState unless the socket is in a terminal state.
func (s *Socket) Reset() error {
	if !s.tracker.State().IsTerminal() {
		return framewire.ErrInvalidState
	}

	// Make sure the driver goroutine is fully gone before reusing its state.
	s.taskMgr.Wait()

	// Release the previous run's child context before replacing it.
	s.ctxCancel()
	s.ctx, s.ctxCancel = context.WithCancel(s.pctx)
	s.taskMgr = framewire.NewTaskManager(s.ctx, s.logger)

	s.sendQueue.Reset()
	s.recvQueue.Reset()
	s.decoder.Reset()
	s.retryDelay.Reset()
	s.setLastError(nil)

	s.shutdownCh = make(chan struct{})
	s.shutdown.Store(false)
	s.running.Store(false)

	s.tracker.Set(framewire.InitialState)

	return nil
}

// WaitState blocks until the committed state reaches one of the given states
// or the context is done.
func (s *Socket) WaitState(ctx context.Context, states ...framewire.ConnState) error {
	return s.tracker.WaitState(ctx, states...)
}

func (s *Socket) setLastError(err *framewire.Error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.lastErr = err
}

func (s *Socket) snapshotListeners() []framewire.Listener {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	ls := make([]framewire.Listener, len(s.listeners))
	copy(ls, s.listeners)

	return ls
}

func (s *Socket) notifyStateChanged(state framewire.ConnState) {
	for _, l := range s.snapshotListeners() {
		l.StateChanged(state)
	}
}

func (s *Socket) notifyMessageReceived() {
	for _, l := range s.snapshotListeners() {
		l.MessageReceived()
	}
}

func (s *Socket) notifyError(err *framewire.Error) {
	for _, l := range s.snapshotListeners() {
		l.Error(err)
	}
}

// reportError records and delivers a non-fatal connection error. The
// connection keeps operating unless the caller also requests a transition.
func (s *Socket) reportError(code framewire.ErrorCode, text string) {
	err := framewire.NewError(code, text)
	s.setLastError(err)
	s.logger.Debug("connection error", "code", code.String(), "text", text)
	s.notifyError(err)
}

// reportFatalError records and delivers a fatal connection error, discards
// all in-progress work, and forces the connection into ErrorState.
func (s *Socket) reportFatalError(code framewire.ErrorCode, text string) {
	err := framewire.NewFatalError(code, text)
	s.setLastError(err)
	s.logger.Error("fatal connection error", "code", code.String(), "text", text)

	s.closeTCPListener()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.src = nil
	}

	s.decoder.Reset()
	s.sendQueue.Reset()
	s.recvQueue.Reset()
	s.tracker.Request(framewire.ErrorState)

	s.notifyError(err)
}

func (s *Socket) setTCPListener(ln net.Listener) {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	s.tcpListener = ln
}

// acquireTCPListener returns the listener with its accept deadline armed, or
// nil when there is no usable listener.
func (s *Socket) acquireTCPListener() *net.TCPListener {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	if s.tcpListener == nil {
		return nil
	}

	tl, ok := s.tcpListener.(*net.TCPListener)
	if !ok {
		s.logger.Error("listener is not a TCP listener", "type", s.tcpListener.Addr().Network())
		return nil
	}

	if err := tl.SetDeadline(time.Now().Add(s.cfg.acceptTimeout)); err != nil {
		s.logger.Error("failed to set accept deadline", "error", err)
		return nil
	}

	return tl
}

func (s *Socket) closeTCPListener() {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	if s.tcpListener == nil {
		return
	}

	if err := s.tcpListener.Close(); err != nil {
		s.logger.Debug("failed to close TCP listener", "error", err)
	}
	s.tcpListener = nil
}

// sleepRetry blocks for the next backoff delay, waking early on shutdown or
// context cancellation.
func (s *Socket) sleepRetry() {
	timer := pool.GetTimer(s.retryDelay.Duration())
	defer pool.PutTimer(timer)

	select {
	case <-s.shutdownCh:
	case <-s.ctx.Done():
	case <-timer.C:
	}
}
