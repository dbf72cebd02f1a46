package bus

import (
	"context"

	"github.com/0unveiled/backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// NopBus short-circuits Publish back into the forwarder callback. It stands in
// for Redis when REDIS_ADDR is unset and the process is the only instance.
type NopBus struct {
	onMsg func(m realtime.SSEMessage)
}

func NewNopBus() *NopBus { return &NopBus{} }

func (b *NopBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b.onMsg != nil {
		b.onMsg(msg)
	}
	return nil
}

func (b *NopBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	b.onMsg = onMsg
	return nil
}

func (b *NopBus) Close() error { return nil }
