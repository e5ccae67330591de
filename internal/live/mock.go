package live

import (
	"math/rand"
	"sync"
	"time"

	"github.com/xkailive-dev/xkailive/shared/domain"
)

var (
	mockNames = []string{
		"StarGazer", "NightOwl", "Wanderer", "PixelFox", "LuckyCat",
		"Echo", "Drifter", "Comet", "Firefly", "Mango",
	}
	mockDanmaku = []string{
		"666", "nice stream!", "hello from the feed", "what song is this?",
		"first time here", "lol", "the host is on fire today", "gg",
	}
	mockChat = []string{
		"hi everyone", "how long is the stream today?", "this is great",
		"greetings from the night shift", "anyone else lagging?",
	}
	mockGifts = []string{"Rocket", "Rose", "Sports Car", "Heart", "Crown"}
)

// MockFeeder drives a room with generated chat, danmaku and gift traffic
// so the overlay has life without real viewers. Intended for development
// and demos.
type MockFeeder struct {
	room *Room
	rng  *rand.Rand

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMockFeeder(room *Room) *MockFeeder {
	return &MockFeeder{
		room: room,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		stop: make(chan struct{}),
	}
}

// Start emits traffic until Stop. Run it in its own goroutine.
func (f *MockFeeder) Start() {
	for {
		select {
		case <-time.After(f.nextDelay()):
			f.emit()
		case <-f.stop:
			return
		}
	}
}

func (f *MockFeeder) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
}

func (f *MockFeeder) nextDelay() time.Duration {
	return time.Duration(500+f.rng.Intn(2000)) * time.Millisecond
}

func (f *MockFeeder) emit() {
	user := domain.User{Name: mockNames[f.rng.Intn(len(mockNames))]}

	switch f.rng.Intn(10) {
	case 0: // gifts are rare
		f.room.SendGift(user, mockGifts[f.rng.Intn(len(mockGifts))], 1+f.rng.Intn(99))
	case 1, 2, 3:
		f.room.SendChat(user, mockChat[f.rng.Intn(len(mockChat))])
	default:
		f.room.SendDanmaku(user, mockDanmaku[f.rng.Intn(len(mockDanmaku))])
	}
}
