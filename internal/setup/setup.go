// Package setup builds the dependency graph from a loaded config.
package setup

import (
	"fmt"
	"net/http"

	"github.com/xkailive-dev/xkailive/internal/handler"
	"github.com/xkailive-dev/xkailive/internal/live"
	"github.com/xkailive-dev/xkailive/internal/router"
	"github.com/xkailive-dev/xkailive/internal/service"
	"github.com/xkailive-dev/xkailive/internal/storage/rest"
	"github.com/xkailive-dev/xkailive/internal/supabase"
	"github.com/xkailive-dev/xkailive/shared/config"
	"github.com/xkailive-dev/xkailive/shared/jwt"
	"github.com/xkailive-dev/xkailive/shared/middleware"
)

// Dependencies is everything main needs to run and shut down the gateway.
type Dependencies struct {
	Router  http.Handler
	Hub     *live.Hub
	Room    *live.Room
	Monitor *live.Monitor
	Feeder  *live.MockFeeder
	Limits  router.Limits
}

// Options toggles optional pieces of the graph.
type Options struct {
	// MockTraffic starts generated chat/danmaku/gift traffic in the live
	// room. For development and demos.
	MockTraffic bool
}

// Build wires the full graph. The hub's run loop, the monitor and the mock
// feeder are started here; Close tears them down.
func Build(cfg *config.Config, opts Options) (*Dependencies, error) {
	client, err := supabase.New(supabase.Config{
		URL:     cfg.Public.Supabase.URL,
		APIKey:  cfg.SupabaseKey(),
		Timeout: cfg.Public.Supabase.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}

	storage := rest.New(client, cfg.Public.Supabase)

	likes := service.NewLikeService(storage, storage)
	feed := service.NewFeedService(storage, storage, likes)
	comments := service.NewCommentService(storage, storage)

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	authService := service.NewAuthService(jwtService)
	auth := middleware.NewAuth(jwtService, cfg.Public.SecureCookies)

	hub := live.NewHub()
	go hub.Run()
	room := live.NewRoom(cfg.Public.Live, hub)

	monitor := live.NewMonitor(client, cfg.Public.Live.NetworkProbePeriod, room.NotifyNetwork)
	go monitor.Start()

	var feeder *live.MockFeeder
	if opts.MockTraffic {
		feeder = live.NewMockFeeder(room)
		go feeder.Start()
	}

	h := handler.New(authService, feed, comments, likes, room, hub, monitor, handler.Config{
		SecureCookies: cfg.Public.SecureCookies,
		JwtTTLSeconds: int(cfg.JwtTTL().Seconds()),
	})

	limits := router.DefaultLimits()
	r := router.New(h, auth, cfg.Public.AllowedOrigins, cfg.Public.SecureCookies, limits)

	return &Dependencies{
		Router:  r,
		Hub:     hub,
		Room:    room,
		Monitor: monitor,
		Feeder:  feeder,
		Limits:  limits,
	}, nil
}

// Close stops background work in reverse dependency order.
func (d *Dependencies) Close() {
	if d.Feeder != nil {
		d.Feeder.Stop()
	}
	d.Monitor.Stop()
	d.Room.Close()
	d.Hub.Close()
	d.Limits.Stop()
}
