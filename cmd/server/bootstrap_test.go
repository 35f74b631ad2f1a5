package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medifixhq/medifix/internal/app"
)

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Server.Port = 0
	cfg.Server.LogLevel = "error"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	cfg.Auth.JWT.Secret = "bootstrap-test-secret"
	cfg.Auth.JWT.Issuer = "medifix-test"
	cfg.Auth.JWT.TTL = 15 * time.Minute
	cfg.Workflow.ActionCooldown = 2 * time.Second
	cfg.Workflow.AutoCloseAfter = 72 * time.Hour
	cfg.Workflow.AutoCloseSchedule = "@hourly"
	cfg.Workflow.AuditRetentionDays = 90
	cfg.Workflow.AuditSchedule = "@daily"
	cfg.Features.Notifications.Enabled = true
	return cfg
}

func TestBootstrapRuntime(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, app.ConfigureLogging(cfg.Server.LogLevel))

	stack, err := bootstrapRuntime(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(zap.NewNop()) })

	require.NotNil(t, stack.DB)
	require.NotNil(t, stack.Hub)
	require.NotNil(t, stack.Router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Seeded admin can authenticate through the public login route.
	w = httptest.NewRecorder()
	body := `{"identifier":"admin","password":"admin"}`
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "postgresql"
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.Database = "medifix"
	cfg.Database.Postgres.Username = "svc"
	cfg.Database.Postgres.Password = "secret"

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "medifix", dbCfg.Name)

	cfg = &app.Config{}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
}
