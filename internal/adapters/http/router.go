package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/adapters/signal"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/auth"
	"github.com/dkeye/Duet/internal/config"
)

const sessionName = "DuetSessions"

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, tokens *auth.TokenIssuer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{dir: o.Directory, tokens: tokens, orch: o}
	r.GET("/users", h.listUsers)
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)

	authed := AuthMiddleware(o.Directory, tokens)

	api := r.Group("/api", authed)
	api.GET("/rooms", h.rooms)

	ctrl := signal.NewSignalWSController(o, signal.NewChatRateLimiter(cfg.ChatRateLimit, cfg.ChatRateInterval), signal.Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		WriteTimeout: cfg.WriteTimeout,
		SendBuffer:   cfg.SendBuffer,
	})
	r.GET("/ws", authed, func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
