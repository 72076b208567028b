package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kala/internal/domain/chat"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHub_PublishesToSessionClientsOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	mine, other := uuid.New(), uuid.New()
	a := NewClient(hub, nil, mine)
	b := NewClient(hub, nil, other)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount(mine) == 1 && hub.ClientCount(other) == 1 }, time.Second, time.Millisecond)

	msg := chat.NewMessage("hello", false, time.Now())
	hub.Publish(mine, msg)

	select {
	case payload := <-a.send:
		var evt ChatMessageEvent
		require.NoError(t, json.Unmarshal(payload, &evt))
		assert.Equal(t, EventChatMessage, evt.Type)
		assert.Equal(t, mine, evt.SessionID)
		assert.Equal(t, msg.ID, evt.Message.ID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	select {
	case <-b.send:
		t.Fatal("event leaked to another session")
	case <-time.After(20 * time.Millisecond):
	}

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientCount(mine) == 0 }, time.Second, time.Millisecond)
	_, open := <-a.send
	assert.False(t, open)
}

func TestHub_NilIsSafe(t *testing.T) {
	var hub *Hub
	hub.Publish(uuid.New(), chat.Message{})
	hub.Register(nil)
	assert.Zero(t, hub.ClientCount(uuid.New()))
}
