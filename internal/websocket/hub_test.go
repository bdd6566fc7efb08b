package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pdfchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newTestClient(hub *Hub, userID uuid.UUID, buffer int) *Client {
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.register <- c
	return c
}

func TestHub_SendReachesEveryDeviceOfUser(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	other := uuid.New()

	phone := newTestClient(hub, user, 4)
	laptop := newTestClient(hub, user, 4)
	stranger := newTestClient(hub, other, 4)

	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 2 }, time.Second, 5*time.Millisecond)

	err := hub.Send(context.Background(), user, Message{Type: "DOCUMENT_INGESTED", Data: map[string]string{"file_key": "uploads/1a.pdf"}})
	require.NoError(t, err)

	for _, c := range []*Client{phone, laptop} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "DOCUMENT_INGESTED", msg.Type)
			assert.Equal(t, "uploads/1a.pdf", msg.Data["file_key"])
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Len(t, stranger.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := newTestClient(hub, user, 1)
	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	newTestClient(hub, user, 0)
	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Send(context.Background(), user, Message{Type: "X"}))

	assert.Eventually(t, func() bool { return hub.ConnectedClients(user) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_IgnoresOwnClusterMessages(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	user := uuid.New()
	c := &Client{Hub: hub, UserID: user, Send: make(chan []byte, 2)}
	hub.clients[user] = []*Client{c}

	own, _ := json.Marshal(clusterEnvelope{Origin: hub.instance, TargetUserID: user.String(), Message: json.RawMessage(`{"type":"A"}`)})
	hub.handleClusterMessage(own)
	assert.Len(t, c.Send, 0)

	remote, _ := json.Marshal(clusterEnvelope{Origin: "other", TargetUserID: user.String(), Message: json.RawMessage(`{"type":"B"}`)})
	hub.handleClusterMessage(remote)
	require.Len(t, c.Send, 1)
	assert.JSONEq(t, `{"type":"B"}`, string(<-c.Send))
}
