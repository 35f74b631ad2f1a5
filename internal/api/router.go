package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/medifixhq/medifix/internal/auth"
	"github.com/medifixhq/medifix/internal/handlers"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/notifications"
	"github.com/medifixhq/medifix/internal/services"
)

// Dependencies carries the wired services the router needs.
type Dependencies struct {
	DB            *gorm.DB
	JWT           *iauth.JWTService
	Auth          *iauth.Service
	Permissions   *services.PermissionService
	WorkOrders    *services.WorkOrderService
	Notifications *services.NotificationService
	Hub           *notifications.Hub
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("router: database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("router: jwt service must be provided")
	}
	if deps.Auth == nil || deps.Permissions == nil || deps.WorkOrders == nil || deps.Notifications == nil {
		return nil, fmt.Errorf("router: all services must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	registerHealthRoutes(r, deps.DB)

	authHandler, err := handlers.NewAuthHandler(deps.Auth, deps.Permissions)
	if err != nil {
		return nil, err
	}
	permHandler, err := handlers.NewPermissionHandler(deps.Permissions)
	if err != nil {
		return nil, err
	}
	workOrderHandler, err := handlers.NewWorkOrderHandler(deps.WorkOrders)
	if err != nil {
		return nil, err
	}
	notificationHandler, err := handlers.NewNotificationHandler(deps.Notifications, deps.Hub, deps.JWT)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	r.POST("/api/auth/login", authHandler.Login)

	// WebSocket upgrade authenticates via query token inside the handler.
	r.GET("/api/notifications/stream", notificationHandler.Stream)

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	api.GET("/auth/me", authHandler.Me)

	resolver := deps.Permissions.Resolver()
	registerWorkOrderRoutes(api, workOrderHandler, resolver)
	registerNotificationRoutes(api, notificationHandler, resolver)
	registerPermissionRoutes(api, permHandler, resolver)

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
