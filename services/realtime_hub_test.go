package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mealplanner/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeHubBroadcastAlert(t *testing.T) {
	hub := NewRealtimeHub()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&WSClient{UserID: 7, Conn: conn})
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[7]) == 1
	}, time.Second, 10*time.Millisecond, "client should register after the upgrade")

	hub.BroadcastAlert(7, AlertEvent{
		Kind:  "alert.created",
		Alert: &models.Alert{UserID: 7, Type: "depletion", Message: "rice is used up"},
	})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)

	var ev AlertEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "alert.created", ev.Kind)
	require.NotNil(t, ev.Alert)
	assert.Equal(t, "depletion", ev.Alert.Type)
	assert.Equal(t, uint(7), ev.Alert.UserID)
}

func TestRealtimeHubUnregisterDropsClient(t *testing.T) {
	hub := NewRealtimeHub()
	upgrader := websocket.Upgrader{}

	register := make(chan *WSClient, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cl := &WSClient{UserID: 9, Conn: conn}
		hub.Register(cl)
		register <- cl
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	cl := <-register
	hub.Unregister(cl)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.clients[9])
}
