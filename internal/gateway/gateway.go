// Package gateway exposes the dashboard over HTTP/JSON for scripts and
// automations. Every route except the index requires the static bearer
// key; mutations are POSTs carrying an "action" field.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/mission-control/internal/logger"
	"github.com/HendryAvila/mission-control/internal/server"
)

// APIName and APIVersion are reported by GET /api.
const (
	APIName    = "Mission Control API"
	APIVersion = "1.0.0"
)

const shutdownTimeout = 10 * time.Second

// Config holds the gateway settings.
type Config struct {
	Addr   string
	APIKey string
}

// Server is the HTTP gateway.
type Server struct {
	Engine *gin.Engine
	cfg    Config
	log    *logger.Logger
}

// New builds the gateway over svcs. An empty APIKey is rejected because it
// would make every request pass authentication.
func New(cfg Config, svcs *server.Services, log *logger.Logger) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gateway: api key must not be empty")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Engine: NewRouter(svcs, cfg.APIKey, log),
		cfg:    cfg,
		log:    log.With("component", "gateway"),
	}, nil
}

// NewRouter wires middleware and routes.
func NewRouter(svcs *server.Services, apiKey string, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(CORS())

	h := &handlers{svcs: svcs}

	r.GET("/api", h.index)

	protected := r.Group("/api")
	protected.Use(RequireAPIKey(apiKey))
	{
		protected.GET("/tasks", h.listTasks)
		protected.POST("/tasks", h.dispatch(h.taskActions()))

		protected.GET("/content", h.listContent)
		protected.POST("/content", h.dispatch(h.contentActions()))

		protected.GET("/calendar", h.listCalendar)
		protected.POST("/calendar", h.dispatch(h.calendarActions(), "scheduledAt", "completed"))

		protected.GET("/memories", h.listMemories)
		protected.POST("/memories", h.dispatch(h.memoryActions()))

		protected.GET("/meals", h.listMeals)
		protected.POST("/meals", h.dispatch(h.mealActions(), "ratings"))

		protected.GET("/summary", h.summary)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("gateway listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway: shutdown: %w", err)
		}
		s.log.Info("gateway stopped")
		return nil
	})
	return g.Wait()
}
