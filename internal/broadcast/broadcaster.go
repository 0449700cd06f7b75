package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"messaging-service/internal/observability"
	"messaging-service/internal/ws"
)

const relayChannel = "realtime.relay"

// Publisher is the fire-and-forget realtime fan-out used by notifiers.
type Publisher interface {
	Publish(ctx context.Context, channel string, event string, payload any) error
}

// Broadcaster delivers events to local websocket subscribers and relays them
// through Redis pub/sub so other service instances can do the same.
type Broadcaster struct {
	hub        *ws.Hub
	relay      *redis.Client
	instanceID string
	logger     *zap.Logger
}

type relayEnvelope struct {
	Instance string          `json:"instance"`
	Channel  string          `json:"channel"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

// New constructs a Broadcaster. The relay client may be nil, in which case
// events only reach subscribers on this instance.
func New(hub *ws.Hub, relay *redis.Client, instanceID string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, relay: relay, instanceID: instanceID, logger: logger}
}

// Publish fans an event out to the local hub and the relay. A relay failure
// degrades to local-only delivery; the error is returned so callers can count
// it but persisted state is never affected.
func (b *Broadcaster) Publish(ctx context.Context, channel string, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.hub.Broadcast(channel, event, data)

	if b.relay == nil {
		return nil
	}
	body, err := json.Marshal(relayEnvelope{Instance: b.instanceID, Channel: channel, Event: event, Data: data})
	if err != nil {
		return err
	}
	if err := b.relay.Publish(ctx, relayChannel, body).Err(); err != nil {
		observability.IncPublishError("relay")
		return err
	}
	return nil
}

// Run consumes relayed events from other instances and forwards them to the
// local hub. Blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	if b.relay == nil {
		return
	}
	sub := b.relay.Subscribe(ctx, relayChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var envelope relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				b.logger.Warn("bad relay payload", zap.Error(err))
				continue
			}
			if envelope.Instance == b.instanceID {
				continue
			}
			b.hub.Broadcast(envelope.Channel, envelope.Event, envelope.Data)
		}
	}
}
