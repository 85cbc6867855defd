// Package router contains routing for the HTTP API.
package router

import (
	"crypto/subtle"

	"attribution/config"
	"attribution/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ResponseHandler *handler.ResponseHandler
	OpsHandler      *handler.OpsHandler
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	responseHandler *handler.ResponseHandler
	opsHandler      *handler.OpsHandler
	opsAPIKey       string
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		responseHandler: params.ResponseHandler,
		opsHandler:      params.OpsHandler,
		opsAPIKey:       params.Config.HTTP.OpsAPIKey,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Professional response links, authenticated by their signed token
	e.GET("/responses", r.responseHandler.Respond)
	e.POST("/responses", r.responseHandler.Respond)

	if r.opsAPIKey == "" {
		return
	}

	opsGroup := e.Group("/ops")
	opsGroup.Use(echomiddleware.KeyAuth(func(key string, _ echo.Context) (bool, error) {
		return subtle.ConstantTimeCompare([]byte(key), []byte(r.opsAPIKey)) == 1, nil
	}))
	{
		opsGroup.POST("/notifications/:id/resend", r.opsHandler.ResendNotification)
		opsGroup.GET("/bookings/:id/notifications", r.opsHandler.BookingNotifications)
		opsGroup.GET("/attributions/:id/notifications", r.opsHandler.AttributionNotifications)
		opsGroup.POST("/attributions/:id/cancel", r.opsHandler.CancelAttribution)
		opsGroup.POST("/attributions/expire", r.opsHandler.ExpireAttributions)
	}
}
