// Package framewiretcp implements the TCP transport for the framewire
// protocol: a Socket that owns one TCP connection and drives it through the
// connection lifecycle on a dedicated driver goroutine.
//
// A Socket is created with a ConnectionConfig and a message TypeRegistry,
// then started as either the connecting side (Connect) or the listening side
// (Listen). The application exchanges messages only through the outbound and
// inbound queues:
//
//	cfg, _ := framewiretcp.NewConnectionConfig("127.0.0.1", 49674)
//	sock, _ := framewiretcp.NewSocket(ctx, cfg, registry)
//	sock.AddListener(appListener)
//
//	_ = sock.Connect()
//	_ = sock.Send(msg)                  // enqueue, sent by the driver loop
//	msg, ok := sock.TakeNextMessage()   // non-blocking dequeue
//	_ = sock.Close()
//
// The driver loop runs one tick at a time: it performs the current state's
// action (dial, bind, accept, or the connected-state send/receive/keepalive
// cycle) and then commits at most one state transition. Every committed
// transition and every connection error is delivered to registered listeners
// synchronously on the driver goroutine, in registration order.
package framewiretcp
