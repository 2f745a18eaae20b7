package websocket

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	client := &Client{
		ID:   "c1",
		send: make(chan []byte, 8),
		hub:  hub,
	}

	hub.registerClient(client)
	assert.Equal(t, 1, hub.GetClientCount())

	// Welcome message is queued on registration.
	select {
	case <-client.send:
	default:
		t.Fatal("expected welcome message")
	}

	hub.unregisterClient(client)
	assert.Equal(t, 0, hub.GetClientCount())

	stats := hub.GetStats()
	assert.Equal(t, int64(1), stats.TotalConnections)
	assert.Equal(t, 0, stats.ConnectedClients)
}

func TestHubNotifyBrightnessChangedUsesTypedMessage(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	hub.Notify(MessageTypeBrightnessChanged, map[string]interface{}{
		"display_id": "d1",
		"level":      72,
		"source":     "slider",
	})

	select {
	case raw := <-hub.broadcast:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageTypeBrightnessChanged, msg.Type)
		assert.Equal(t, "d1", msg.Data["display_id"])
		assert.InDelta(t, 72, msg.Data["level"], 0)
		assert.Equal(t, "slider", msg.Data["source"])
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestHubNotifyStatusUsesTypedMessage(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	hub.Notify(MessageTypeStatus, map[string]int{"brightness": 40})

	select {
	case raw := <-hub.broadcast:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageTypeStatus, msg.Type)
		assert.NotNil(t, msg.Data["status"])
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestHubMessageCountersUnderConcurrency(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.messageReceived()
			hub.broadcastMessage([]byte(`{"type":"status"}`))
		}()
	}
	wg.Wait()

	stats := hub.GetStats()
	assert.Equal(t, int64(50), stats.MessagesReceived)
	assert.Equal(t, int64(50), stats.MessagesSent)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	a := &Client{ID: "a", send: make(chan []byte, 8), hub: hub}
	b := &Client{ID: "b", send: make(chan []byte, 8), hub: hub}
	hub.registerClient(a)
	hub.registerClient(b)
	<-a.send // drain welcome
	<-b.send

	hub.broadcastMessage([]byte(`{"type":"status"}`))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Contains(t, string(msg), "status")
		default:
			t.Fatalf("client %s did not receive broadcast", c.ID)
		}
	}
}
