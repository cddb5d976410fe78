package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/pcforge-backend/internal/cart"
)

const (
	EventOrderPlaced      = "order.placed"
	eventVersion          = 1
	defaultPublishTimeout = 10 * time.Second
)

// OrderLine is one purchased product in an order event.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderPlaced is the payload of an order.placed event. Card data appears only
// in masked form.
type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	SessionID  string      `json:"session_id"`
	Email      string      `json:"email"`
	Totals     cart.Totals `json:"totals"`
	Lines      []OrderLine `json:"lines"`
	MaskedCard string      `json:"masked_card"`
	PlacedAt   time.Time   `json:"placed_at"`
}

// Envelope wraps every published event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// EventPublisher hands order events to a broker.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubPublisher publishes order events to a Pub/Sub topic.
type PubSubPublisher struct {
	pub     publisher
	timeout time.Duration
}

// NewPubSubPublisher wraps a topic publisher. A nil publisher returns nil.
func NewPubSubPublisher(p *gcppubsub.Publisher) *PubSubPublisher {
	if p == nil {
		return nil
	}
	return &PubSubPublisher{pub: &gcpPublisher{Publisher: p}, timeout: defaultPublishTimeout}
}

func (p *PubSubPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	if p == nil || p.pub == nil {
		return errors.New("publisher not configured")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	envelope := Envelope{
		Version:    eventVersion,
		EventID:    uuid.NewString(),
		EventType:  EventOrderPlaced,
		OccurredAt: event.PlacedAt,
		Data:       data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode event envelope: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id":   envelope.EventID,
			"event_type": EventOrderPlaced,
			"order_id":   event.OrderID,
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
