package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	msgs []*gcppubsub.Message
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.msgs = append(f.msgs, msg)
	return fakeResult{err: f.err}
}

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-1", nil
}

func TestPubSubPublisherEnvelope(t *testing.T) {
	fake := &fakePublisher{}
	pub := &PubSubPublisher{pub: fake, timeout: time.Second}
	placedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := pub.PublishOrderPlaced(context.Background(), OrderPlaced{
		OrderID:    "ORD-1-abcdef",
		SessionID:  "sess-a",
		MaskedCard: "**** **** **** 4242",
		PlacedAt:   placedAt,
	})
	require.NoError(t, err)
	require.Len(t, fake.msgs, 1)

	msg := fake.msgs[0]
	assert.Equal(t, EventOrderPlaced, msg.Attributes["event_type"])
	assert.Equal(t, "ORD-1-abcdef", msg.Attributes["order_id"])
	assert.NotEmpty(t, msg.Attributes["event_id"])

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.Equal(t, EventOrderPlaced, envelope.EventType)
	assert.True(t, envelope.OccurredAt.Equal(placedAt))

	var data OrderPlaced
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "sess-a", data.SessionID)
	assert.Equal(t, "**** **** **** 4242", data.MaskedCard)
}

func TestPubSubPublisherPropagatesErrors(t *testing.T) {
	pub := &PubSubPublisher{pub: &fakePublisher{err: errors.New("unavailable")}, timeout: time.Second}
	err := pub.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: "ORD-1-abcdef"})
	assert.Error(t, err)
}

func TestNilPubSubPublisher(t *testing.T) {
	assert.Nil(t, NewPubSubPublisher(nil))

	var pub *PubSubPublisher
	assert.Error(t, pub.PublishOrderPlaced(context.Background(), OrderPlaced{}))
}
