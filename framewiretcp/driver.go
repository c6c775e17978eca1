package framewiretcp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/arloliu/framewire/framewire"
)

// runTick is the body of the driver loop. Each invocation performs the
// current state's action and then commits at most one state transition, so
// listeners observe every lifecycle step exactly once. It returns false once
// a terminal state is committed, which stops the task loop.
func (s *Socket) runTick() bool {
	switch s.tracker.State() {
	case framewire.ConnectingState:
		s.tickConnect()
	case framewire.OpeningState:
		s.tickOpen()
	case framewire.ListeningState:
		s.tickAccept()
	case framewire.ConnectedState:
		s.tickConnected()
	case framewire.ClosingState:
		s.tickClose()
	case framewire.InitialState, framewire.ClosedState, framewire.ErrorState:
		// First tick commits the requested start state below.
	}

	state, changed := s.tracker.Commit()
	if changed {
		s.logger.Debug("connection state changed", "state", state.String())
		s.notifyStateChanged(state)
	}

	if state.IsTerminal() {
		s.running.Store(false)
		return false
	}

	return true
}

// tickConnect performs one dial attempt against the configured remote
// endpoint. A failed attempt keeps the socket in ConnectingState and backs
// off before the next tick retries.
func (s *Socket) tickConnect() {
	if s.shutdown.Load() {
		s.tracker.Request(framewire.ClosingState)
		return
	}

	addr := net.JoinHostPort(s.cfg.host, strconv.Itoa(s.cfg.port))
	dialer := net.Dialer{Timeout: s.cfg.connectTimeout, KeepAlive: 30 * time.Second}

	conn, err := dialer.DialContext(s.ctx, "tcp", addr)
	if err != nil {
		s.metrics.incConnRetryGauge()
		s.logger.Debug("failed to connect to remote", "address", addr, "error", err)
		s.sleepRetry()

		return
	}

	s.adoptConn(conn)
	s.tracker.Request(framewire.ConnectedState)
}

// tickOpen binds the listening address. A failed bind is reported to
// listeners and retried after a backoff delay.
func (s *Socket) tickOpen() {
	if s.shutdown.Load() {
		s.tracker.Request(framewire.ClosingState)
		return
	}

	addr := net.JoinHostPort(s.cfg.host, strconv.Itoa(s.cfg.port))

	var lc net.ListenConfig

	ln, err := lc.Listen(s.ctx, "tcp", addr)
	if err != nil {
		s.reportError(framewire.BindFailedError, fmt.Sprintf("failed to bind %s: %v", addr, err))
		s.sleepRetry()

		return
	}

	s.setTCPListener(ln)
	s.retryDelay.Reset()
	s.logger.Debug("listening for incoming connection", "address", ln.Addr().String())
	s.tracker.Request(framewire.ListeningState)
}

// tickAccept waits up to the accept timeout for the single incoming
// connection. An accept timeout keeps the socket listening; any other accept
// failure is fatal.
func (s *Socket) tickAccept() {
	if s.shutdown.Load() {
		s.tracker.Request(framewire.ClosingState)
		return
	}

	tl := s.acquireTCPListener()
	if tl == nil {
		s.tracker.Request(framewire.ClosingState)
		return
	}

	conn, err := tl.Accept()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// No pending connection yet.
			return
		}

		if s.shutdown.Load() || errors.Is(err, net.ErrClosed) {
			s.tracker.Request(framewire.ClosingState)
			return
		}

		s.reportFatalError(framewire.AcceptFailedError, "could not accept the incoming connection: "+err.Error())

		return
	}

	// Single-connection socket: stop listening once the peer is in.
	s.closeTCPListener()
	s.adoptConn(conn)
	s.tracker.Request(framewire.ConnectedState)
}

// adoptConn installs an established connection and resets all per-connection
// receive state.
func (s *Socket) adoptConn(conn net.Conn) {
	s.conn = conn
	s.src = newConnSource(conn, s.cfg.receiveTimeout)
	s.decoder.Reset()
	s.lastKeepAlive = time.Now()
	s.retryDelay.Reset()
	s.metrics.resetConnRetryGauge()

	s.logger.Debug("connection established",
		"local_addr", conn.LocalAddr().String(),
		"remote_addr", conn.RemoteAddr().String(),
	)
}

// tickConnected runs one send/receive/keepalive cycle.
func (s *Socket) tickConnected() {
	if s.shutdown.Load() {
		s.tracker.Request(framewire.ClosingState)
		return
	}

	s.sendBatch(s.sendQueue.Drain())
	s.receiveNext()

	// Keepalive only when the tick did not already schedule a transition.
	if s.tracker.Next() == framewire.ConnectedState {
		s.checkKeepAlive()
	}
}

// sendBatch writes the drained outbound messages in FIFO order. Per-message
// serialization failures are reported and skipped; a write failure means the
// connection is unusable, so the remaining batch is dropped and the socket
// moves to ClosingState.
func (s *Socket) sendBatch(batch []framewire.Message) {
	for _, msg := range batch {
		payload, err := s.serializer.Marshal(msg)
		if err != nil {
			s.metrics.incSendErrCount()

			code := framewire.SendFailedError
			if errors.Is(err, framewire.ErrMessageTooBig) {
				code = framewire.MessageTooBigError
			}
			s.reportError(code, "failed to serialize message: "+err.Error())

			continue
		}

		tag, ok := s.registry.TagOf(msg)
		if !ok {
			s.metrics.incSendErrCount()
			s.reportError(framewire.UnknownMessageTypeError, "message type not registered: "+msg.TypeName())

			continue
		}

		if err := s.writeFrame(tag, payload); err != nil {
			s.metrics.incSendErrCount()
			s.reportError(framewire.SendFailedError, "failed to send message: "+err.Error())
			s.tracker.Request(framewire.ClosingState)

			return
		}

		s.metrics.incMsgSendCount()
	}
}

func (s *Socket) writeFrame(typeTag uint32, payload []byte) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = framewire.AppendFrame(buf.B, typeTag, payload)

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout)); err != nil {
		return err
	}

	_, err := s.conn.Write(buf.B)

	return err
}

// receiveNext advances the inbound frame decoder by one step and dispatches
// a completed frame. Protocol errors are reported without dropping the
// connection; a failed byte source means the peer is gone.
func (s *Socket) receiveNext() {
	frame, err := s.decoder.Step(s.src)
	if err != nil {
		s.metrics.incRecvErrCount()

		switch {
		case errors.Is(err, framewire.ErrHeaderMismatch):
			s.reportError(framewire.ReceiveFailedError, "header mismatch")
		case errors.Is(err, framewire.ErrPayloadTooLarge):
			s.reportError(framewire.ReceiveFailedError, "a message was received with a size larger than the maximum")
		case errors.Is(err, framewire.ErrSourceFailed):
			s.reportError(framewire.ConnectionResetError, "connection reset by peer")
			s.tracker.Request(framewire.ClosingState)
		default:
			s.reportError(framewire.ReceiveFailedError, err.Error())
		}

		return
	}

	if frame == nil {
		// Would-block or keepalive consumed.
		return
	}

	s.dispatchFrame(frame)
}

func (s *Socket) dispatchFrame(frame *framewire.Frame) {
	msg, ok := s.registry.NewOfType(frame.TypeTag)
	if !ok {
		s.metrics.incRecvErrCount()
		s.reportError(framewire.UnknownMessageTypeError,
			fmt.Sprintf("unknown message type %#08x received", frame.TypeTag))

		return
	}

	if err := s.serializer.Unmarshal(frame.Payload, msg); err != nil {
		s.metrics.incRecvErrCount()
		s.reportError(framewire.ParseFailedError, "failed to parse message: "+err.Error())

		return
	}

	s.recvQueue.Enqueue(msg)
	s.metrics.incMsgRecvCount()
	s.notifyMessageReceived()
}

// checkKeepAlive sends a keepalive frame if the connection has been quiet
// for longer than the keepalive interval. A failed keepalive write means the
// peer dropped without a FIN reaching us.
func (s *Socket) checkKeepAlive() {
	if time.Since(s.lastKeepAlive) <= s.cfg.keepAliveInterval {
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = framewire.AppendKeepalive(buf.B)

	var err error
	if err = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout)); err == nil {
		_, err = s.conn.Write(buf.B)
	}

	// The quiet period restarts even on failure so a dead peer is not
	// hammered with probes while the transition is pending.
	s.lastKeepAlive = time.Now()

	if err != nil {
		s.reportError(framewire.ConnectionResetError, "connection reset by peer")
		s.tracker.Request(framewire.ClosingState)

		return
	}

	s.metrics.incKeepaliveSendCount()
}

// tickClose tears down the connection and the listener, then commits the
// normal terminal state.
func (s *Socket) tickClose() {
	s.closeTCPListener()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("failed to close connection", "error", err)
		}
		s.conn = nil
		s.src = nil
	}

	s.decoder.Reset()
	s.tracker.Request(framewire.ClosedState)
}
