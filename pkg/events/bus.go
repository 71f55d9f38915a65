package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// envelope is the wire form of an Event on the bus.
type envelope struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Bus is an in-process pub/sub for domain events, backed by watermill's
// gochannel transport. Every service in the binary shares one Bus.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.pubSub.Publish(topic, msg)
}

// Subscribe consumes events from a topic in a background goroutine until
// ctx is cancelled. Messages that fail to decode are acked and skipped;
// handler errors nack for redelivery.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler func(ctx context.Context, event Event) error) error {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var env envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				msg.Ack()
				continue
			}
			evt := BaseEvent{Type: env.Type, Data: env.Payload, OccurredAt: env.OccurredAt}
			if err := handler(ctx, evt); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
