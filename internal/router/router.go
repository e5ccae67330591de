// Package router wires handlers, auth and the middleware chain into the
// HTTP surface of the gateway.
package router

import (
	"net/http"

	gorilla "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xkailive-dev/xkailive/internal/handler"
	"github.com/xkailive-dev/xkailive/shared/middleware"
	"github.com/xkailive-dev/xkailive/shared/middleware/metrics"
	"github.com/xkailive-dev/xkailive/shared/middleware/ratelimiter"
)

type Limits struct {
	Global *ratelimiter.UserRateLimiter
	PerIP  *ratelimiter.UserRateLimiter
	Writes *ratelimiter.UserRateLimiter
}

// DefaultLimits builds the standard limiter set. Callers own Stop.
func DefaultLimits() Limits {
	return Limits{
		Global: ratelimiter.Rps100(),
		PerIP:  ratelimiter.Rps10(),
		Writes: ratelimiter.OnceInSecond(),
	}
}

func (l Limits) Stop() {
	l.Global.Stop()
	l.PerIP.Stop()
	l.Writes.Stop()
}

// New assembles the full route table. Read endpoints take an optional
// session; write endpoints require one and are limited per user.
func New(h *handler.Handler, auth *middleware.Auth, allowedOrigins []string, secureConnection bool, limits Limits) http.Handler {
	r := mux.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeadersWithCSP(secureConnection, "default-src 'none'"))
	r.Use(middleware.GlobalRateLimit(limits.Global))
	r.Use(middleware.RateLimit(limits.PerIP, middleware.GetIP))

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/guest", h.GuestLogin).Methods("POST")

	// reads: session optional
	read := v1.NewRoute().Subrouter()
	read.Use(auth.OptionalAuth())
	read.HandleFunc("/moments", h.Feed).Methods("GET")
	read.HandleFunc("/moments/{momentId:[0-9]+}/comments", h.ListComments).Methods("GET")
	read.HandleFunc("/live/snapshot", h.LiveSnapshot).Methods("GET")
	read.HandleFunc("/live/ws", h.LiveSocket).Methods("GET")

	// writes: session required, limited per user
	write := v1.NewRoute().Subrouter()
	write.Use(auth.NeedAuth())
	write.Use(middleware.RateLimit(limits.Writes, middleware.GetUserIDFromContext))
	write.HandleFunc("/moments", h.PublishMoment).Methods("POST")
	write.HandleFunc("/moments/{momentId:[0-9]+}/comments", h.CreateComment).Methods("POST")
	write.HandleFunc("/comments/{commentId:[0-9]+}", h.DeleteComment).Methods("DELETE")

	// like toggles are the hot path of the feed UI, per-user write limits
	// would fight the double-tap pattern; they ride the per-IP limit only
	like := v1.NewRoute().Subrouter()
	like.Use(auth.NeedAuth())
	like.HandleFunc("/moments/{momentId:[0-9]+}/toggle_like", h.ToggleLike).Methods("POST")
	like.HandleFunc("/moments/{momentId:[0-9]+}/like", h.Like).Methods("POST")
	like.HandleFunc("/moments/{momentId:[0-9]+}/like", h.Unlike).Methods("DELETE")
	like.HandleFunc("/moments/{momentId:[0-9]+}/like", h.LikeState).Methods("GET")

	live := v1.NewRoute().Subrouter()
	live.Use(auth.NeedAuth())
	live.Use(middleware.RateLimit(limits.Writes, middleware.GetUserIDFromContext))
	live.HandleFunc("/live/chat", h.LiveChat).Methods("POST")
	live.HandleFunc("/live/danmaku", h.LiveDanmaku).Methods("POST")
	live.HandleFunc("/live/gift", h.LiveGift).Methods("POST")

	cors := gorilla.CORS(
		gorilla.AllowedOrigins(allowedOrigins),
		gorilla.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorilla.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilla.AllowCredentials(),
	)

	return gorilla.CompressHandler(cors(r))
}
