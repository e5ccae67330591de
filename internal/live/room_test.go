package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkailive-dev/xkailive/shared/config"
	"github.com/xkailive-dev/xkailive/shared/domain"
)

func testLiveConfig() config.Live {
	return config.Live{
		DanmakuTTL:        80 * time.Millisecond,
		GiftTTL:           30 * time.Millisecond,
		GiftEnterDuration: 5 * time.Millisecond,
		GiftExitAfter:     25 * time.Millisecond,
		PublicScreenLimit: 5,
	}
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	room := NewRoom(testLiveConfig(), hub)
	t.Cleanup(room.Close)
	return room
}

func TestNewRoomPostsSystemNotice(t *testing.T) {
	room := newTestRoom(t)

	snap := room.Snapshot()
	require.Len(t, snap.PublicScreen, 1)
	assert.True(t, snap.PublicScreen[0].System)
	assert.Empty(t, snap.PublicScreen[0].UserName)
}

func TestSendChatAppendsToScreen(t *testing.T) {
	room := newTestRoom(t)

	msg := room.SendChat(domain.User{Name: "guest"}, "hello")
	assert.NotEmpty(t, msg.Id)
	assert.Equal(t, "guest", msg.UserName)
	assert.False(t, msg.System)

	snap := room.Snapshot()
	require.Len(t, snap.PublicScreen, 2)
	assert.Equal(t, "hello", snap.PublicScreen[1].Text)
}

func TestPublicScreenIsCapped(t *testing.T) {
	room := newTestRoom(t)

	for i := 0; i < 10; i++ {
		room.SendChat(domain.User{Name: "guest"}, "msg")
	}

	snap := room.Snapshot()
	assert.Len(t, snap.PublicScreen, 5)
	// the opening notice scrolled off
	assert.False(t, snap.PublicScreen[0].System)
}

func TestDanmakuOutlivesGift(t *testing.T) {
	room := newTestRoom(t)

	d, ok := room.SendDanmaku(domain.User{Name: "a"}, "fly by")
	require.True(t, ok)
	_, ok = room.SendGift(domain.User{Name: "b"}, "Rose", 3)
	require.True(t, ok)

	snap := room.Snapshot()
	assert.Len(t, snap.Danmaku, 1)
	assert.Len(t, snap.Gifts, 1)
	assert.Equal(t, GiftPhaseEnter, snap.Gifts[0].Payload.Phase)

	time.Sleep(50 * time.Millisecond) // gift TTL 30ms passed, danmaku TTL 80ms not
	snap = room.Snapshot()
	require.Len(t, snap.Danmaku, 1)
	assert.Equal(t, d.Id, snap.Danmaku[0].Id)
	assert.Empty(t, snap.Gifts)

	time.Sleep(50 * time.Millisecond)
	snap = room.Snapshot()
	assert.Empty(t, snap.Danmaku)
}

func TestGiftLandsOnPublicScreen(t *testing.T) {
	room := newTestRoom(t)

	room.SendGift(domain.User{Name: "b"}, "Rocket", 42)

	snap := room.Snapshot()
	require.Len(t, snap.PublicScreen, 2)
	assert.True(t, snap.PublicScreen[1].System)
	assert.Contains(t, snap.PublicScreen[1].Text, "Rocket")
	assert.Contains(t, snap.PublicScreen[1].Text, "42")
}

func TestClosedRoomRejectsOverlayItems(t *testing.T) {
	room := newTestRoom(t)
	room.Close()

	_, ok := room.SendDanmaku(domain.User{Name: "a"}, "late")
	assert.False(t, ok)
	_, ok = room.SendGift(domain.User{Name: "a"}, "Rose", 1)
	assert.False(t, ok)
}

func TestMockFeederFillsRoom(t *testing.T) {
	room := newTestRoom(t)

	feeder := NewMockFeeder(room)
	for i := 0; i < 20; i++ {
		feeder.emit()
	}

	snap := room.Snapshot()
	total := len(snap.Danmaku) + len(snap.Gifts) + len(snap.PublicScreen)
	assert.Greater(t, total, 1, "generated traffic should land somewhere")
	for _, g := range snap.Gifts {
		assert.GreaterOrEqual(t, g.Payload.Count, 1)
		assert.LessOrEqual(t, g.Payload.Count, 99)
	}
}
