package handler

import (
	"net/http"

	"github.com/xkailive-dev/xkailive/internal/live"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

// Health reports process liveness and last known connectivity to the
// remote store. The process answering at all is the liveness part; an
// offline store degrades the report but keeps the status 200, since the
// live room still works without it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	network := live.NetworkGood
	if h.monitor != nil {
		network = h.monitor.Status()
	}
	utils.WriteJSON(w, map[string]any{
		"status":  "ok",
		"network": network,
		"viewers": h.hub.ClientCount(),
	})
}
