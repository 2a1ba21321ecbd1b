package httptransport

import (
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"catgallery-server-go/internal/platform/config"
	"catgallery-server-go/internal/platform/logging"
	"catgallery-server-go/internal/platform/observability"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// Options configures the HTTP router builder.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	// Assets is served under Web.MountPath when Web.StaticDir is empty.
	Assets fs.FS
}

// Router bundles together the gin engine and the API route group.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with recovery, request IDs,
// logging, observability, permissive CORS and the static gallery assets.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	if strings.EqualFold(opts.Config.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(loggingMiddleware(logger))
	engine.Use(observabilityMiddleware())

	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	if web := opts.Config.Web; web.Enabled {
		switch {
		case web.StaticDir != "":
			engine.Use(static.Serve(web.MountPath, static.LocalFile(web.StaticDir, false)))
			logger.InfoTag("HTTP", "serving gallery assets from %s at %s", web.StaticDir, web.MountPath)
		case opts.Assets != nil:
			engine.StaticFS(web.MountPath, http.FS(opts.Assets))
			logger.InfoTag("HTTP", "serving embedded gallery assets at %s", web.MountPath)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			RespondError(c, http.StatusNotFound, "api not found")
			return
		}
		c.String(http.StatusNotFound, "not found")
	})

	return &Router{
		Engine: engine,
		API:    engine.Group("/api"),
	}, nil
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger.InfoTag(
			"HTTP",
			"%s %s -> %d (%s) rid=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			duration,
			c.GetString("request_id"),
		)
	}
}

func observabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		reqCtx, spanEnd := observability.StartSpan(c.Request.Context(), "http.server", path)
		var spanErr error
		c.Request = c.Request.WithContext(reqCtx)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if len(c.Errors) > 0 {
			spanErr = c.Errors.Last().Err
		} else if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			spanErr = fmt.Errorf("status %d", status)
		}
		spanEnd(spanErr)

		observability.RecordMetric(
			reqCtx,
			"http.requests",
			1,
			map[string]string{
				"component": "http.server",
				"method":    c.Request.Method,
				"path":      path,
				"status":    strconv.Itoa(c.Writer.Status()),
			},
		)
		observability.RecordMetric(
			reqCtx,
			"http.request.duration_ms",
			float64(duration.Milliseconds()),
			map[string]string{
				"component": "http.server",
				"method":    c.Request.Method,
				"path":      path,
			},
		)
	}
}
