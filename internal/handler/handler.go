package handler

import (
	"net/http"

	"github.com/BloggingApp/post-store/internal/metrics"
	"github.com/BloggingApp/post-store/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	ClientOrigin   string
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsEnabled bool
}

type Handler struct {
	services *service.Service
	logger   *zap.Logger
	metrics  *metrics.Metrics
	limiter  *clientLimiter
	opts     Options
}

func New(services *service.Service, logger *zap.Logger, metrics *metrics.Metrics, opts Options) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		metrics:  metrics,
		limiter:  newClientLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		opts:     opts,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), h.requestIDMiddleware, h.accessLogMiddleware, h.metricsMiddleware)
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{h.opts.ClientOrigin},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", requestIDHeader},
	}))

	r.GET("/health", h.health)
	if h.opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		posts := v1.Group("/posts")
		{
			posts.GET("", h.postsGetAll)
			posts.POST("", h.rateLimitMiddleware, h.postsCreate)

			post := posts.Group("/:postID")
			{
				post.GET("", h.postsGetByID)
				post.PUT("", h.rateLimitMiddleware, h.postsUpdate)
				post.DELETE("", h.rateLimitMiddleware, h.postsDelete)
			}
		}
	}

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
