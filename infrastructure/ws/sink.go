// Package ws carries the WebSocket transport: one Session per socket,
// a buffered Sink the coordinator pushes into, and the JSON envelope
// codec of the wire protocol.
package ws

import (
	"context"

	"chat-hub/domain/event"
)

// Sink buffers outbound events for one connection. Consume is called
// by the coordinator and must never block it: a full buffer drops the
// event, which shows up as backpressure on a slow client, not as a
// stalled chat server.
type Sink struct {
	Events chan event.Outbound
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.Outbound, bufferSize)}
}

func (s *Sink) Consume(ctx context.Context, e event.Outbound) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
