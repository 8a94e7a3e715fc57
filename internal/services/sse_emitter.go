package services

import (
	"context"

	"github.com/PeeapDev/merchant-backend/internal/realtime"
	"github.com/PeeapDev/merchant-backend/internal/realtime/bus"
	"github.com/PeeapDev/merchant-backend/internal/sse"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *sse.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

type RedisEmitter struct{ Bus bus.Bus }

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	_ = e.Bus.Publish(ctx, msg)
}
