package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/chat"
	"github.com/agribrazil/leadchat/internal/lead"
)

// Options holds the dependencies and settings for the HTTP server.
type Options struct {
	Chat   *chat.Service
	Leads  *lead.Service
	Logger *zap.Logger
	Port   int
}

// NewRouter builds the Gin router with all API routes registered.
// Split out from Start so tests can drive it with httptest.
func NewRouter(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts)
	return router
}

// Start launches the HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts Options) error {
	if opts.Chat == nil || opts.Leads == nil {
		return errors.New("server: chat and lead services are required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router := NewRouter(opts)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	opts.Logger.Info("HTTP server listening", zap.Int("port", opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server")
	}
	return nil
}
