package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/tripseats/api"
	"github.com/Domenick1991/tripseats/config"
	"github.com/Domenick1991/tripseats/internal/middleware"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
)

type Handlers struct {
	Maps        *api.MapHandler
	Assignments *api.AssignmentHandler
	Transports  *api.TransportHandler
	Guides      *api.GuideHandler
	Health      *api.HealthHandler
}

func NewRouter(cfg *config.Config, h Handlers, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	router.GET("/healthz", h.Health.Healthz)

	v1 := router.Group("/api/v1")
	if cfg.HTTP.RateLimit > 0 {
		v1.Use(middleware.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst, logger))
	}
	h.Maps.Register(v1.Group("/maps"))
	h.Assignments.Register(v1.Group("/assignments"))
	h.Transports.Register(v1.Group("/transports"))
	h.Guides.Register(v1.Group("/guides"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
		)))
	}
	return router
}

// Run serves router until ctx is cancelled or the server fails, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, router http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
