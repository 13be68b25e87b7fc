package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"chat-relay/internal/domain"
)

const (
	indexPage     = "index.html"
	marketingPage = "marketing.html"
)

// Dispatcher turns a user message into the text to send back. It never fails.
type Dispatcher interface {
	Handle(ctx context.Context, message string) string
}

type Handler struct {
	dispatcher   Dispatcher
	templatesDir string
	metrics      http.Handler
	logger       *slog.Logger
	engine       *gin.Engine
}

type Option func(*Handler)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) {
		hd.metrics = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(hd *Handler) {
		hd.logger = l
	}
}

func NewHandler(d Dispatcher, templatesDir string, opts ...Option) (*Handler, error) {
	if d == nil {
		return nil, errors.New("handler: dispatcher must not be nil")
	}
	templatesDir = strings.TrimSpace(templatesDir)
	if templatesDir == "" {
		return nil, errors.New("handler: templates dir must not be empty")
	}
	h := &Handler{
		dispatcher:   d,
		templatesDir: templatesDir,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.engine = h.routes()
	return h, nil
}

// ServeHTTP makes Handler an http.Handler backed by the gin engine.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

func (h *Handler) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlationID())
	r.Use(requestLogger(h.logger))
	r.Use(corsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/", h.page(indexPage))
	r.GET("/marketing", h.page(marketingPage))
	// gin's static handler serves through http.Dir, which confines paths to the root.
	r.Static("/templates", h.templatesDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}

	api := r.Group("/api")
	api.POST("/chat", h.chat)
	return r
}

func (h *Handler) page(name string) gin.HandlerFunc {
	path := filepath.Join(h.templatesDir, name)
	return func(c *gin.Context) {
		c.File(path)
	}
}

// chat always answers 200. A missing or malformed body counts as an empty
// message so the caller gets the "please enter a message" prompt.
func (h *Handler) chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.DebugContext(c.Request.Context(), "unreadable chat body, treating as empty", "err", err)
		req = domain.ChatRequest{}
	}

	answer := h.dispatcher.Handle(c.Request.Context(), req.Message)
	c.PureJSON(http.StatusOK, domain.ChatResponse{Response: answer})
}

func corsMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", correlationHeader}
	config.ExposeHeaders = []string{correlationHeader}
	return cors.New(config)
}
