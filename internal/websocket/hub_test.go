package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"aura-support-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, rdb *redis.Client) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(rdb, logger.NewNopLogger())
	go h.Run(ctx)

	select {
	case <-h.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("hub not ready")
	}
	return h
}

func connect(h *Hub, staffID string, buffer int) *Client {
	c := &Client{hub: h, staffID: staffID, send: make(chan []byte, buffer)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case msg := <-c.send:
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &decoded))
		return decoded
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_BroadcastLocal(t *testing.T) {
	h := startHub(t, nil)
	a := connect(h, "staff-a", 4)
	b := connect(h, "staff-b", 4)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Broadcast("ESCALATION_REQUIRED", map[string]string{"session_id": "session_1"})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, "ESCALATION_REQUIRED", msg["type"])
		assert.Equal(t, "session_1", msg["data"].(map[string]interface{})["session_id"])
	}
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	h := startHub(t, nil)
	slow := connect(h, "slow", 0)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast("PING", nil)

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHub_RedisFanOutDeliversOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}

	h1 := startHub(t, newClient())
	h2 := startHub(t, newClient())
	local := connect(h1, "staff-1", 4)
	remote := connect(h2, "staff-2", 4)
	require.Eventually(t, func() bool { return h1.ClientCount() == 1 && h2.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h1.Broadcast("ESCALATION_REQUIRED", map[string]string{"session_id": "s"})

	assert.Equal(t, "ESCALATION_REQUIRED", receive(t, local)["type"])
	assert.Equal(t, "ESCALATION_REQUIRED", receive(t, remote)["type"])
	assertSilent(t, local)
	assertSilent(t, remote)
}
