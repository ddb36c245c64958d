package events

import (
	"context"
	"encoding/json"
	"time"

	applog "devhub/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Channel = "devhub:events"

// Broadcaster fans a payload out to locally connected subscribers.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Bus carries payloads between service instances.
type Bus interface {
	Available() bool
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, handle func(payload []byte)) error
}

// Broker delivers events to local subscribers and, when a bus is available,
// to every other instance.
type Broker struct {
	local  Broadcaster
	bus    Bus
	origin string
	logger *zap.Logger
	now    func() time.Time
}

func NewBroker(local Broadcaster, bus Bus, logger *zap.Logger) *Broker {
	logger = applog.OrNop(logger)
	return &Broker{
		local:  local,
		bus:    bus,
		origin: uuid.NewString(),
		logger: logger.Named("events"),
		now:    time.Now,
	}
}

var _ Publisher = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now().UTC()
	}
	e.Origin = b.origin

	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.Warn("encode event failed", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}

	if b.local != nil {
		b.local.Broadcast(payload)
	}
	if b.bus != nil && b.bus.Available() {
		if err := b.bus.Publish(ctx, Channel, payload); err != nil {
			b.logger.Warn("publish event failed", zap.String("type", string(e.Type)), zap.Error(err))
		}
	}
}

// Relay forwards events published by other instances to local subscribers
// until ctx is cancelled.
func (b *Broker) Relay(ctx context.Context) error {
	if b == nil || b.bus == nil || !b.bus.Available() || b.local == nil {
		return nil
	}
	return b.bus.Subscribe(ctx, Channel, func(payload []byte) {
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			b.logger.Warn("decode relayed event failed", zap.Error(err))
			return
		}
		if e.Origin == b.origin {
			return
		}
		b.local.Broadcast(payload)
	})
}
