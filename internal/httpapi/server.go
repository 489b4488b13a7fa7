package httpapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jobscope/jobscope"
)

// New builds the echo server with all replay routes registered.
func New(registry *jobscope.Registry, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	NewHandler(registry, logger).RegisterRoutes(e)
	return e
}

// Serve runs the server until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, listen string, logger *zap.Logger) error {
	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	logger.Info("listening", zap.String("addr", listen))
	err := e.Start(listen)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
