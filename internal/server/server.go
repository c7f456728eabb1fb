// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pathway pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/profile"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

const serviceName = "pathway-engine"

// Runner executes one pipeline request.
type Runner interface {
	Run(ctx context.Context, raw map[string]string) (*types.LearningPathway, error)
}

// Options configures the router.
type Options struct {
	Config  types.ServerConfig
	Runner  Runner
	Version string
	Logger  *charmlog.Logger
}

type handler struct {
	runner  Runner
	version string
	env     string
}

// NewRouter builds the gin engine with CORS, tracing and request logging.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(requestLogger(log))

	h := &handler{runner: opts.Runner, version: opts.Version, env: opts.Config.Environment}

	r.GET("/", h.root)
	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.GET("/health", h.apiHealth)
		api.POST("/generate-pathway", h.generateFromPreferences)
		api.POST("/generate-pathway-direct", h.generateDirect)
	}
	return r
}

// requestLogger stores a request-scoped logger in the request context and
// logs each completed request.
func requestLogger(base *charmlog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := base.With("method", c.Request.Method, "path", c.FullPath())
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))

		c.Next()

		log.Info("request",
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"client", c.ClientIP())
	}
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Adaptive Learning Pathway API",
		"version": h.version,
		"health":  "/health",
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "pathway-engine is running",
		"version": h.version,
	})
}

func (h *handler) apiHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"version":     h.version,
		"environment": h.env,
		"endpoints": []string{
			"/api/generate-pathway",
			"/api/generate-pathway-direct",
			"/health",
		},
	})
}

// generateFromPreferences accepts the web front end's payload. Credentials
// always come from server defaults.
func (h *handler) generateFromPreferences(c *gin.Context) {
	var prefs profile.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		abort(c, &types.ValidationError{Reason: fmt.Sprintf("malformed request body: %v", err)})
		return
	}
	h.run(c, prefs.Raw())
}

// generateDirect accepts the raw profile keys. Credentials in the payload
// take precedence over server defaults.
func (h *handler) generateDirect(c *gin.Context) {
	var raw map[string]string
	if err := c.ShouldBindJSON(&raw); err != nil {
		abort(c, &types.ValidationError{Reason: fmt.Sprintf("malformed request body: %v", err)})
		return
	}
	h.run(c, raw)
}

func (h *handler) run(c *gin.Context, raw map[string]string) {
	pathway, err := h.runner.Run(c.Request.Context(), raw)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, pathway)
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(types.StatusCode(err), gin.H{"detail": err.Error()})
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.FromContext(ctx).Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
