// Package websocket pushes report change events to browser subscribers.
//
// A Hub owns the set of connected clients and fans out every published
// Message to them. Each Client runs a read pump, which only keeps the
// connection alive and notices disconnects, and a write pump, which drains
// the client's send buffer and pings the peer. Clients that cannot keep up
// are dropped rather than slowing the broadcast.
package websocket
