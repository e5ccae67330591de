package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkailive-dev/xkailive/shared/domain"
)

var testUpgrader = websocket.Upgrader{}

func dialHub(t *testing.T, hub *Hub, initial []byte) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		NewClient(hub, conn, initial)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return msg
}

func TestClientReceivesInitialThenBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	conn := dialHub(t, hub, []byte(`{"type":"snapshot"}`))

	first := readFrame(t, conn)
	assert.JSONEq(t, `{"type":"snapshot"}`, string(first))

	hub.Broadcast([]byte(`{"type":"chat"}`))
	second := readFrame(t, conn)
	assert.JSONEq(t, `{"type":"chat"}`, string(second))
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := dialHub(t, hub, nil)
	c2 := dialHub(t, hub, nil)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte(`{"type":"danmaku"}`))
	assert.JSONEq(t, `{"type":"danmaku"}`, string(readFrame(t, c1)))
	assert.JSONEq(t, `{"type":"danmaku"}`, string(readFrame(t, c2)))
}

func TestClientCountDropsOnDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	conn := dialHub(t, hub, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestCloseDoesNotStrandClientPumps(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialHub(t, hub, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	before := runtime.NumGoroutine()
	hub.Close()
	conn.Close()

	// the read and write pumps of the dropped client must both exit; a
	// stuck unregister send would keep the read pump parked forever
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() < before },
		2*time.Second, 10*time.Millisecond)
}

func TestRegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Close()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		NewClient(hub, conn, nil)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("NewClient hung on a closed hub")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestRoomEventsReachViewer(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	room := NewRoom(testLiveConfig(), hub)
	defer room.Close()

	conn := dialHub(t, hub, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	room.SendChat(domain.User{Name: "guest"}, "hello room")

	var event Event
	require.NoError(t, json.Unmarshal(readFrame(t, conn), &event))
	assert.Equal(t, EventChat, event.Type)
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func TestMonitorReportsFlipsOnly(t *testing.T) {
	pinger := &fakePinger{}
	var mu sync.Mutex
	var changes []string
	m := NewMonitor(pinger, 50*time.Millisecond, func(status string) {
		mu.Lock()
		changes = append(changes, status)
		mu.Unlock()
	})

	m.probe()
	assert.Equal(t, NetworkGood, m.Status())

	pinger.setErr(errors.New("unreachable"))
	m.probe()
	m.probe() // same state again, no second report
	assert.Equal(t, NetworkOffline, m.Status())

	pinger.setErr(nil)
	m.probe()
	assert.Equal(t, NetworkGood, m.Status())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{NetworkOffline, NetworkGood}, changes)
}
