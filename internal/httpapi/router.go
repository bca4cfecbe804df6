package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"nexus-chat/internal/middleware"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/telemetry"
	"nexus-chat/internal/token"
	"nexus-chat/internal/ws"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Handler *Handler
	Tap     *ws.Tap
	Issuer  *token.Issuer
	Audit   *telemetry.AuditEmitter
	Debug   bool
}

// NewRouter wires the full HTTP surface: auth endpoints, the chat API, the
// websocket tap and the operational endpoints.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("nexus-chat"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/auth/login", opts.Handler.Login)
	router.POST("/auth/register", opts.Handler.Register)

	auth := middleware.Auth(opts.Issuer)
	router.GET("/rooms", auth, opts.Handler.Rooms)
	router.GET("/rooms/:room_id/messages", auth, opts.Handler.Messages)
	router.POST("/rooms/:room_id/messages", auth, opts.Handler.SendMessage)
	router.POST("/rooms/:room_id/read", auth, opts.Handler.MarkRead)
	router.GET("/users", auth, opts.Handler.Users)
	router.PUT("/users/:user_id", auth, opts.Handler.UpdateUser)
	router.GET("/analytics", auth, opts.Handler.Analytics)

	if opts.Tap != nil {
		router.GET("/ws", opts.Tap.Handle)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerDebugRoutes(router, opts.Audit, opts.Debug)

	return router
}
