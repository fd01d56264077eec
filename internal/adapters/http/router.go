package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Gavel/internal/adapters/feed"
	"github.com/dkeye/Gavel/internal/app"
	"github.com/dkeye/Gavel/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an anonymous identity to each browser via a
// long-lived cookie.
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

func SetupRouter(cfg *config.Config, manager *app.Manager, registry *app.Registry, hub *feed.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("GavelSessions", store))
	r.Use(ClientTokenMiddleware())

	h := &handlers{manager: manager, registry: registry}

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", h.createRoom)
	api.GET("/rooms/:id", h.roomSnapshot)
	api.POST("/rooms/:id/join", h.joinRoom)
	api.POST("/rooms/:id/items", h.uploadItem)
	api.POST("/rooms/:id/start", h.startAuction)
	api.POST("/rooms/:id/bids", h.placeBid)
	api.POST("/rooms/:id/end", h.endAuction)
	api.POST("/rooms/:id/microphone", h.applyForMicrophone)
	api.DELETE("/rooms/:id/microphone", h.leaveMicrophone)
	api.POST("/rooms/:id/microphone/accept", h.acceptMicrophone)
	api.POST("/rooms/:id/microphone/kick", h.kickFromMicrophone)
	api.POST("/rooms/:id/messages", h.sendMessage)
	api.POST("/rooms/:id/voice", h.sendVoice)
	api.PUT("/profile", h.updateProfile)

	api.GET("/ws/feed", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("token", c.GetString("client_token")).Msg("feed endpoint hit")
		hub.Handle(c)
	})

	return r
}
