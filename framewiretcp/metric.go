package framewiretcp

import "sync/atomic"

// ConnectionMetrics tracks counters for a socket's traffic and failures.
// All fields are updated atomically and safe to read from any goroutine.
type ConnectionMetrics struct {
	// MsgSendCount is the number of messages written to the connection.
	MsgSendCount atomic.Uint64
	// MsgRecvCount is the number of messages decoded and enqueued inbound.
	MsgRecvCount atomic.Uint64
	// SendErrCount is the number of outbound serialization or write failures.
	SendErrCount atomic.Uint64
	// RecvErrCount is the number of inbound decode, parse, or dispatch failures.
	RecvErrCount atomic.Uint64
	// KeepaliveSendCount is the number of keepalive frames written.
	KeepaliveSendCount atomic.Uint64
	// ConnRetryGauge is the number of consecutive failed connect attempts,
	// reset to zero when a connection is established.
	ConnRetryGauge atomic.Uint32
}

func (m *ConnectionMetrics) incMsgSendCount()       { m.MsgSendCount.Add(1) }
func (m *ConnectionMetrics) incMsgRecvCount()       { m.MsgRecvCount.Add(1) }
func (m *ConnectionMetrics) incSendErrCount()       { m.SendErrCount.Add(1) }
func (m *ConnectionMetrics) incRecvErrCount()       { m.RecvErrCount.Add(1) }
func (m *ConnectionMetrics) incKeepaliveSendCount() { m.KeepaliveSendCount.Add(1) }
func (m *ConnectionMetrics) incConnRetryGauge()     { m.ConnRetryGauge.Add(1) }
func (m *ConnectionMetrics) resetConnRetryGauge()   { m.ConnRetryGauge.Store(0) }
