package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/health", handlers.Health())
	r.GET("/health/live", handlers.Health())
	r.GET("/health/ready", handlers.Ready(db))
}
