package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/videotube-server/internal/api/http/handler"
	"github.com/dtroode/videotube-server/internal/api/http/middleware"
	"github.com/dtroode/videotube-server/internal/api/http/response"
	"github.com/dtroode/videotube-server/internal/logger"
	"github.com/dtroode/videotube-server/internal/model"
)

// Options contains transport settings for the router.
type Options struct {
	CORSOrigin     string
	SecureCookies  bool
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

// Router represents the HTTP router for videotube operations.
// It wires handlers, middleware and the route table.
type Router struct {
	accountService handler.AccountService
	channelService handler.ChannelService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	uploads        *handler.Uploads
	registry       *prometheus.Registry
	opts           Options
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	accountService handler.AccountService,
	channelService handler.ChannelService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	uploads *handler.Uploads,
	registry *prometheus.Registry,
	opts Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		accountService: accountService,
		channelService: channelService,
		tokenService:   tokenService,
		contextManager: contextManager,
		uploads:        uploads,
		registry:       registry,
		opts:           opts,
		logger:         logger,
	}
}

// Register builds the gin engine with middleware and all routes.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(r.registry)

	e := gin.New()
	e.Use(
		gin.CustomRecovery(r.recover),
		logging.Handle,
		metrics.Handle,
		cors.New(cors.Config{
			AllowOrigins:     []string{r.opts.CORSOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.LimitBody(r.opts.MaxBodyBytes, r.opts.MaxUploadBytes),
	)
	e.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, "route not found")
	})

	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1")
	api.GET("/healthcheck", handler.Healthcheck)
	r.registerUserRoutes(api.Group("/users"))

	return e
}

func (r *Router) registerUserRoutes(users *gin.RouterGroup) {
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)
	user := handler.NewUser(r.accountService, r.contextManager, handler.NewCookies(r.opts.SecureCookies), r.uploads, r.logger)
	channel := handler.NewChannel(r.channelService, r.contextManager, r.logger)

	users.POST("/register", user.Register)
	users.POST("/login", user.Login)
	users.POST("/refresh-token", user.RefreshToken)

	secured := users.Group("", authenticate.Handle)
	secured.POST("/logout", user.Logout)
	secured.GET("/current-user", user.CurrentUser)
	secured.POST("/change-password", user.ChangePassword)
	secured.PATCH("/update-account", user.UpdateAccount)
	secured.PATCH("/avatar", user.UpdateAvatar)
	secured.PATCH("/cover-image", user.UpdateCoverImage)
	secured.GET("/c/:username", channel.Profile)
	secured.GET("/history", channel.WatchHistory)
}

func (r *Router) recover(c *gin.Context, recovered any) {
	r.logger.Error("HTTP handler panicked",
		"path", c.Request.URL.Path,
		"panic", recovered)
	response.Abort(c, http.StatusInternalServerError, response.MessageInternal)
}
