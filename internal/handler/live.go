package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/xkailive-dev/xkailive/internal/live"
	"github.com/xkailive-dev/xkailive/shared/api"
	"github.com/xkailive-dev/xkailive/shared/logger"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the router; token
	// auth guards the upgrade itself.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveSnapshot returns the current room state: overlay queues, public
// screen and viewer count.
func (h *Handler) LiveSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.room.Snapshot())
}

// LiveSocket upgrades to a websocket and streams room events. The first
// frame is a snapshot event so the viewer renders the room before any
// incremental updates arrive.
func (h *Handler) LiveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Debug("websocket upgrade failed", "error", err)
		return
	}

	initial, err := json.Marshal(live.Event{Type: "snapshot", Data: h.room.Snapshot()})
	if err != nil {
		conn.Close()
		return
	}
	live.NewClient(h.hub, conn, initial)
}

// LiveChat posts a public screen message.
func (h *Handler) LiveChat(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req api.ChatRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.roomText(req.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, h.room.SendChat(user, msg))
}

// LiveDanmaku posts a scrolling overlay message.
func (h *Handler) LiveDanmaku(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req api.DanmakuRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	msg, err := h.roomText(req.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	item, ok := h.room.SendDanmaku(user, msg)
	if !ok {
		http.Error(w, "Live room is closed", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}

// LiveGift sends a gift banner. A missing count means one.
func (h *Handler) LiveGift(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req api.GiftRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	giftName, err := h.roomText(req.GiftName)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	item, ok := h.room.SendGift(user, giftName, req.Count)
	if !ok {
		http.Error(w, "Live room is closed", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}
