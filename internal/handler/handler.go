// Package handler maps HTTP requests onto the services. Handlers decode and
// validate bodies, resolve the authenticated user from context, call one
// service method and encode the result; rules live below in the services.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xkailive-dev/xkailive/internal/live"
	"github.com/xkailive-dev/xkailive/internal/service"
	"github.com/xkailive-dev/xkailive/shared/domain"
	e "github.com/xkailive-dev/xkailive/shared/errors"
	"github.com/xkailive-dev/xkailive/shared/middleware"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

type Handler struct {
	auth     *service.AuthService
	feed     *service.FeedService
	comments *service.CommentService
	likes    *service.LikeService

	room    *live.Room
	hub     *live.Hub
	monitor *live.Monitor

	secureCookies bool
	jwtTTLSeconds int
}

type Config struct {
	SecureCookies bool
	JwtTTLSeconds int
}

func New(
	auth *service.AuthService,
	feed *service.FeedService,
	comments *service.CommentService,
	likes *service.LikeService,
	room *live.Room,
	hub *live.Hub,
	monitor *live.Monitor,
	cfg Config,
) *Handler {
	return &Handler{
		auth:          auth,
		feed:          feed,
		comments:      comments,
		likes:         likes,
		room:          room,
		hub:           hub,
		monitor:       monitor,
		secureCookies: cfg.SecureCookies,
		jwtTTLSeconds: cfg.JwtTTLSeconds,
	}
}

// pathId extracts a numeric path variable.
func pathId(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, &e.ErrorWithStatusCode{Message: "Missing " + name, StatusCode: http.StatusBadRequest}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &e.ErrorWithStatusCode{Message: "Invalid " + name, StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// mustUser returns the authenticated user. Routes behind NeedAuth always
// have one; a nil here is a routing bug, answered as 401 anyway.
func mustUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return domain.User{}, false
	}
	return *user, true
}

// roomText sanitizes user text headed for the live room. Unlike stored
// content, room messages never hit the store, so this is the only cleaning
// they get.
func (h *Handler) roomText(text string) (string, error) {
	cleaned := service.SanitizeText(text)
	if cleaned == "" {
		return "", &e.ErrorWithStatusCode{Message: "Text is empty", StatusCode: 422}
	}
	return cleaned, nil
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	utils.WriteJSON(w, v)
}
