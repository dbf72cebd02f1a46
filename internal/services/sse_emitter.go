package services

import (
	"context"

	"github.com/0unveiled/backend/internal/realtime"
	"github.com/0unveiled/backend/internal/realtime/bus"
)

// SSEEmitter abstracts where realtime messages go: straight to the local hub
// in single-instance mode, or through the Redis bus when fanning out across
// instances.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

type BusEmitter struct{ Bus bus.Bus }

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	_ = e.Bus.Publish(ctx, msg)
}
