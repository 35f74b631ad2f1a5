package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/api"
	"github.com/medifixhq/medifix/internal/app"
	"github.com/medifixhq/medifix/internal/app/maintenance"
	iauth "github.com/medifixhq/medifix/internal/auth"
	"github.com/medifixhq/medifix/internal/database"
	"github.com/medifixhq/medifix/internal/notifications"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Hub     *notifications.Hub
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, services, background jobs, and
// the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	authSvc, err := iauth.NewService(stack.DB, jwtSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise auth service: %w", err)
	}

	auditSvc, err := services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	permissionSvc, err := services.NewPermissionService(stack.DB, auditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise permission service: %w", err)
	}

	stack.Hub = notifications.NewHub()

	var notificationSvc *services.NotificationService
	if cfg.Features.Notifications.Enabled {
		notificationSvc, err = services.NewNotificationService(stack.DB, stack.Hub)
	} else {
		notificationSvc, err = services.NewNotificationService(stack.DB, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	workOrderSvc, err := services.NewWorkOrderService(stack.DB, permissionSvc.Resolver(), auditSvc, notificationSvc,
		services.WithActionCooldown(cfg.Workflow.ActionCooldown))
	if err != nil {
		return nil, fmt.Errorf("initialise work order service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.DB, auditSvc,
		maintenance.WithAutoCloseAfter(cfg.Workflow.AutoCloseAfter),
		maintenance.WithAutoCloseSchedule(cfg.Workflow.AutoCloseSchedule),
		maintenance.WithAuditRetentionDays(cfg.Workflow.AuditRetentionDays),
		maintenance.WithAuditSchedule(cfg.Workflow.AuditSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:            stack.DB,
		JWT:           jwtSvc,
		Auth:          authSvc,
		Permissions:   permissionSvc,
		WorkOrders:    workOrderSvc,
		Notifications: notificationSvc,
		Hub:           stack.Hub,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
