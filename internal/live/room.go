package live

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xkailive-dev/xkailive/shared/config"
	"github.com/xkailive-dev/xkailive/shared/domain"
)

// Gift presentation phases. A gift banner slides in, holds, slides out,
// then leaves the overlay when its queue TTL fires.
const (
	GiftPhaseEnter = "enter"
	GiftPhaseShow  = "show"
	GiftPhaseExit  = "exit"
)

// Danmaku is one scrolling overlay message. Lane is a vertical position
// fraction in [0,1) picked at enqueue time so every viewer draws the
// message on the same line.
type Danmaku struct {
	UserName string  `json:"user_name"`
	Text     string  `json:"text"`
	Lane     float64 `json:"lane"`
}

// Gift is one gift banner.
type Gift struct {
	UserName string `json:"user_name"`
	GiftName string `json:"gift_name"`
	Count    int    `json:"count"`
	Phase    string `json:"phase"`
}

// ChatMessage is one public screen line. System notices have an empty
// UserName and System set.
type ChatMessage struct {
	Id       string `json:"id"`
	UserName string `json:"user_name,omitempty"`
	Text     string `json:"text"`
	System   bool   `json:"system,omitempty"`
	SentAt   string `json:"sent_at"`
}

// Event is what the room broadcasts to connected viewers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventChat          = "chat"
	EventDanmaku       = "danmaku"
	EventDanmakuExpire = "danmaku_expire"
	EventGift          = "gift"
	EventGiftPhase     = "gift_phase"
	EventGiftExpire    = "gift_expire"
	EventNetwork       = "network"
)

// Snapshot is the room state a newly connected viewer starts from.
type Snapshot struct {
	Danmaku      []Item[Danmaku] `json:"danmaku"`
	Gifts        []Item[Gift]    `json:"gifts"`
	PublicScreen []ChatMessage   `json:"public_screen"`
	Viewers      int             `json:"viewers"`
}

// Room is the in-memory state of one live session.
type Room struct {
	cfg config.Live
	hub *Hub

	danmaku *TTLQueue[Danmaku]
	gifts   *TTLQueue[Gift]

	mu     sync.Mutex
	screen []ChatMessage
	phases map[string][]*time.Timer // gift id -> pending phase timers
	closed bool
}

// NewRoom creates a room and posts the opening system notice to its public
// screen. Callers own the hub's lifecycle and must have started it.
func NewRoom(cfg config.Live, hub *Hub) *Room {
	r := &Room{
		cfg:    cfg,
		hub:    hub,
		phases: make(map[string][]*time.Timer),
	}
	r.danmaku = NewTTLQueue[Danmaku](func(item Item[Danmaku]) {
		r.broadcast(EventDanmakuExpire, map[string]string{"id": item.Id})
	})
	r.gifts = NewTTLQueue[Gift](func(item Item[Gift]) {
		r.cancelPhases(item.Id)
		r.broadcast(EventGiftExpire, map[string]string{"id": item.Id})
	})

	r.appendScreen(ChatMessage{
		Text:   "Welcome to the live room. Be nice in chat.",
		System: true,
	})
	return r
}

// SendChat posts a message to the public screen and broadcasts it.
func (r *Room) SendChat(user domain.User, text string) ChatMessage {
	msg := r.appendScreen(ChatMessage{UserName: user.Name, Text: text})
	r.broadcast(EventChat, msg)
	return msg
}

// SendDanmaku enqueues a scrolling message with the room's danmaku TTL.
func (r *Room) SendDanmaku(user domain.User, text string) (Item[Danmaku], bool) {
	d := Danmaku{UserName: user.Name, Text: text, Lane: rand.Float64()}
	item, ok := r.danmaku.Enqueue(d, r.cfg.DanmakuTTL)
	if ok {
		r.broadcast(EventDanmaku, item)
	}
	return item, ok
}

// SendGift enqueues a gift banner with the room's gift TTL and schedules
// its phase transitions. The banner also lands on the public screen as a
// system line.
func (r *Room) SendGift(user domain.User, giftName string, count int) (Item[Gift], bool) {
	gift := Gift{UserName: user.Name, GiftName: giftName, Count: count, Phase: GiftPhaseEnter}
	item, ok := r.gifts.Enqueue(gift, r.cfg.GiftTTL)
	if !ok {
		return item, false
	}

	r.broadcast(EventGift, item)
	r.schedulePhase(item.Id, r.cfg.GiftEnterDuration, GiftPhaseShow)
	r.schedulePhase(item.Id, r.cfg.GiftExitAfter, GiftPhaseExit)

	msg := r.appendScreen(ChatMessage{
		Text:   user.Name + " sent " + giftName + " x" + strconv.Itoa(count),
		System: true,
	})
	r.broadcast(EventChat, msg)
	return item, true
}

// Snapshot captures the current room state for a joining viewer.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	screen := make([]ChatMessage, len(r.screen))
	copy(screen, r.screen)
	r.mu.Unlock()

	return Snapshot{
		Danmaku:      r.danmaku.Snapshot(),
		Gifts:        r.gifts.Snapshot(),
		PublicScreen: screen,
		Viewers:      r.hub.ClientCount(),
	}
}

// NotifyNetwork broadcasts a connectivity status change to viewers.
func (r *Room) NotifyNetwork(status string) {
	r.broadcast(EventNetwork, map[string]string{"status": status})
}

// Close drops all timers and queue contents. The room stops broadcasting;
// the hub is closed by its owner.
func (r *Room) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, timers := range r.phases {
		for _, t := range timers {
			t.Stop()
		}
		delete(r.phases, id)
	}
	r.mu.Unlock()

	r.danmaku.Close()
	r.gifts.Close()
}

func (r *Room) appendScreen(msg ChatMessage) ChatMessage {
	msg.Id = uuid.NewString()
	msg.SentAt = domain.FormatWireTime(time.Now())

	r.mu.Lock()
	r.screen = append(r.screen, msg)
	if limit := r.cfg.PublicScreenLimit; limit > 0 && len(r.screen) > limit {
		r.screen = r.screen[len(r.screen)-limit:]
	}
	r.mu.Unlock()
	return msg
}

func (r *Room) schedulePhase(giftId string, after time.Duration, phase string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	timer := time.AfterFunc(after, func() {
		r.broadcast(EventGiftPhase, map[string]string{"id": giftId, "phase": phase})
	})
	r.phases[giftId] = append(r.phases[giftId], timer)
	r.mu.Unlock()
}

func (r *Room) cancelPhases(giftId string) {
	r.mu.Lock()
	for _, t := range r.phases[giftId] {
		t.Stop()
	}
	delete(r.phases, giftId)
	r.mu.Unlock()
}

func (r *Room) broadcast(eventType string, data any) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return
	}
	r.hub.Broadcast(payload)
}
