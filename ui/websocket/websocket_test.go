package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AzielCF/az-settings/core/settings/application"
	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []BroadcastMessage
	closed   bool
	failing  bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	if len(data) == 0 {
		return nil
	}
	var m BroadcastMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.messages = append(c.messages, m)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) codes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.messages))
	for _, m := range c.messages {
		out = append(out, m.Code)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) (*Hub, *application.SettingsStore) {
	t.Helper()
	store := application.NewSettingsStore(context.Background(), nil)
	hub := NewHub(store)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	require.Eventually(t, func() bool { return store.ListenerCount() == 2 }, time.Second, 5*time.Millisecond)
	return hub, store
}

func TestHubBroadcastsStoreChanges(t *testing.T) {
	hub, store := startHub(t)
	a, b := &fakeConn{}, &fakeConn{}
	hub.Attach(a)
	hub.Attach(b)

	require.NoError(t, store.UpdateField(context.Background(), domain.KeyTheme.Set(domain.ThemeLight)))

	for _, c := range []*fakeConn{a, b} {
		assert.Eventually(t, func() bool {
			codes := c.codes()
			return len(codes) == 1 && codes[0] == CodeSettingsChanged
		}, time.Second, 5*time.Millisecond)
	}
}

func TestHubAnnouncesUnlock(t *testing.T) {
	hub, store := startHub(t)
	conn := &fakeConn{}
	hub.Attach(conn)

	for i := 0; i < domain.UnlockThreshold; i++ {
		store.RegisterUnlockClick(context.Background())
	}
	assert.Eventually(t, func() bool {
		codes := conn.codes()
		return len(codes) == domain.UnlockThreshold+1 && codes[len(codes)-1] == CodeDeveloperModeUnlocked
	}, time.Second, 5*time.Millisecond)
}

func TestHandleMessageFetchState(t *testing.T) {
	hub, _ := startHub(t)
	conn := &fakeConn{}
	hub.Attach(conn)

	hub.HandleMessage(context.Background(), conn, []byte(`{"code":"FETCH_STATE","request_id":"r-1"}`))
	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.messages) == 1 && conn.messages[0].Code == CodeState && conn.messages[0].RequestID == "r-1"
	}, time.Second, 5*time.Millisecond)
}

func TestHandleMessageUnlockAndPanel(t *testing.T) {
	hub, store := startHub(t)
	conn := &fakeConn{}
	hub.Attach(conn)

	hub.HandleMessage(context.Background(), conn, []byte(`{"code":"UNLOCK_CLICK"}`))
	assert.Equal(t, 1, store.GetUnlockProgress().Count)

	hub.HandleMessage(context.Background(), conn, []byte(`{"code":"OPEN_PANEL"}`))
	assert.True(t, store.GetState().IsPanelOpen)
	hub.HandleMessage(context.Background(), conn, []byte(`{"code":"CLOSE_PANEL"}`))
	assert.False(t, store.GetState().IsPanelOpen)
}

func TestHandleMessageRejectsUnknown(t *testing.T) {
	hub, _ := startHub(t)
	conn := &fakeConn{}
	hub.Attach(conn)

	hub.HandleMessage(context.Background(), conn, []byte(`{"code":"FETCH_DEVICES"}`))
	hub.HandleMessage(context.Background(), conn, []byte(`garbage`))
	assert.Eventually(t, func() bool {
		codes := conn.codes()
		return len(codes) == 2 && codes[0] == CodeError && codes[1] == CodeError
	}, time.Second, 5*time.Millisecond)
}

func TestHubDropsBrokenConnections(t *testing.T) {
	hub, store := startHub(t)
	broken := &fakeConn{failing: true}
	hub.Attach(broken)

	store.OpenPanel()
	assert.Eventually(t, broken.isClosed, time.Second, 5*time.Millisecond)
}

func TestDetachAfterShutdownDoesNotBlock(t *testing.T) {
	store := application.NewSettingsStore(context.Background(), nil)
	hub := NewHub(store)
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(finished)
	}()
	cancel()
	<-finished

	done := make(chan struct{})
	go func() {
		hub.Detach(&fakeConn{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Detach blocked after shutdown")
	}
	assert.Equal(t, 0, store.ListenerCount())
}
