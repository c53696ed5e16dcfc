package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/adapters/signal"
	"github.com/tdemirci/videocall/internal/app"
	"github.com/tdemirci/videocall/internal/config"
	"github.com/tdemirci/videocall/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware mints the per-client token that doubles as the
// signaling session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.SignalWSController, reg *app.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VideocallSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	// Liveness probe; up means accepting connections.
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// GET /api/rooms — list rooms with member counts
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": reg.Rooms()})
	})

	// GET /api/rooms/:name — room snapshot
	api.GET("/rooms/:name", func(c *gin.Context) {
		name := domain.RoomID(c.Param("name"))
		members := reg.MembersOf(name)
		if len(members) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		users := make([]gin.H, 0, len(members))
		for _, m := range members {
			users = append(users, gin.H{"userId": string(m.SID), "userName": m.User.Username})
		}
		c.JSON(http.StatusOK, gin.H{
			"room":      name,
			"userCount": len(members),
			"users":     users,
		})
	})

	// GET /api/ice-config — RTCPeerConnection config for clients.
	// The server never negotiates media itself; it only hands out the
	// ICE servers clients should use.
	api.GET("/ice-config", func(c *gin.Context) {
		c.JSON(http.StatusOK, webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{
				{URLs: cfg.StunURLs},
			},
		})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
