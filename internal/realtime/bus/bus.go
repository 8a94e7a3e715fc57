package bus

import (
	"context"

	"github.com/PeeapDev/merchant-backend/internal/realtime"
)

// Bus fans realtime messages out across processes. Each instance
// publishes locally-produced events and forwards everything it hears
// into its own hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
