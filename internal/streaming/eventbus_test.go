package streaming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskforge/pkg/logger"
)

func TestEventBus_PublishToSubscribers(t *testing.T) {
	bus := NewEventBus(nil, logger.NewDevelopment())
	defer bus.Close()

	first, unsubFirst := bus.Subscribe()
	second, unsubSecond := bus.Subscribe()
	defer unsubFirst()
	defer unsubSecond()

	assert.Equal(t, 2, bus.SubscriberCount())

	event := NewRunEvent(EventTypeRunStarted, testRun(), "payments")
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, event, <-first)
	assert.Equal(t, event, <-second)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil, logger.NewDevelopment())
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	require.Equal(t, 1, bus.SubscriberCount())

	unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount())

	// The channel is closed on unsubscribe
	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless
	unsubscribe()
}

func TestEventBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus(nil, logger.NewDevelopment())
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Fill the subscriber buffer past capacity; Publish must not block
	event := NewRunEvent(EventTypeRunStarted, testRun(), "")
	for i := 0; i < 150; i++ {
		require.NoError(t, bus.Publish(context.Background(), event))
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
		default:
			assert.Equal(t, 100, delivered, "buffer size bounds delivery")
			return
		}
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(nil, logger.NewDevelopment())

	ch, _ := bus.Subscribe()
	bus.Close()

	assert.Equal(t, 0, bus.SubscriberCount())
	_, open := <-ch
	assert.False(t, open)
}
