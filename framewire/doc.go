// Package framewire implements the core of the framewire messaging protocol:
// the wire frame codec, the message type registry, payload serialization
// limits, connection state tracking and the goroutine lifecycle management
// used by the transport layer.
//
// The framewire protocol is a point-to-point, length-prefixed binary framing
// for exchanging typed messages between two cooperating processes, such as a
// controller and a worker. One side connects, the other listens; exactly one
// logical message is in flight on the receive side at a time.
//
// Each frame on the wire consists of three big-endian 32-bit words followed
// by the payload:
//
//	word 0: signature (16 bits) | protocol major (8 bits) | protocol minor (8 bits)
//	word 1: payload size in bytes
//	word 2: message type tag
//	payload: exactly "payload size" bytes
//
// A lone all-zero word is a keepalive; it carries no payload and produces no
// message.
//
// This package contains no socket I/O. The TCP transport that drives the
// codec lives in the framewiretcp package.
package framewire
