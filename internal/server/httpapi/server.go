// Package httpapi is the HTTP gateway of the status server: POST /post for
// the publisher and GET / for viewers, plus health and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	"github.com/dmitrijs2005/nowstatus/internal/server/services"
	"github.com/gin-gonic/gin"
)

// StatusService is what the handlers need from services.StatusService.
type StatusService interface {
	Publish(ctx context.Context, req services.PublishRequest) error
	View(ctx context.Context, role, session string) ([]byte, models.Segment)
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	statuses        StatusService
	metrics         *Metrics
	logger          logging.Logger
	engine          *gin.Engine
}

func NewServer(address string, shutdownTimeout time.Duration, svc StatusService, m *Metrics, l logging.Logger) *Server {
	s := &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		statuses:        svc,
		metrics:         m,
		logger:          l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger), s.metrics.middleware())

	r.POST("/post", s.handlePublish)
	r.GET("/", s.handleView)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.metrics.handler())

	return r
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
