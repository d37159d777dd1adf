package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intentiq/intentiq/internal/events"
	"github.com/intentiq/intentiq/internal/logger"
)

func TestNewPublisherRequiresClient(t *testing.T) {
	assert.Nil(t, events.NewPublisher(nil, "intentiq:events", logger.NewNop()))
}

func TestPublishNilReceiverIsNoOp(t *testing.T) {
	var pub *events.Publisher

	err := pub.Publish(context.Background(), events.Event{
		EventType: events.EventSearchCompleted,
		UserID:    "user-1",
	})
	assert.NoError(t, err)

	// Async path must not panic either.
	pub.PublishAsync(events.Event{EventType: events.EventLeadSaved})
}
