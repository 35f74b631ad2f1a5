package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/medifixhq/medifix/internal/auth"
	"github.com/medifixhq/medifix/internal/database/testutil"
	"github.com/medifixhq/medifix/internal/notifications"
	"github.com/medifixhq/medifix/internal/services"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}
	authSvc, err := iauth.NewService(db, jwtSvc)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	audit, err := services.NewAuditService(db)
	if err != nil {
		t.Fatalf("audit service: %v", err)
	}
	permSvc, err := services.NewPermissionService(db, audit)
	if err != nil {
		t.Fatalf("permission service: %v", err)
	}
	hub := notifications.NewHub()
	notifySvc, err := services.NewNotificationService(db, hub)
	if err != nil {
		t.Fatalf("notification service: %v", err)
	}
	workOrderSvc, err := services.NewWorkOrderService(db, permSvc.Resolver(), audit, notifySvc)
	if err != nil {
		t.Fatalf("work order service: %v", err)
	}

	router, err := NewRouter(Dependencies{
		DB:            db,
		JWT:           jwtSvc,
		Auth:          authSvc,
		Permissions:   permSvc,
		WorkOrders:    workOrderSvc,
		Notifications: notifySvc,
		Hub:           hub,
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	router := newTestRouter(t, db)

	// Health should be public
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/health/ready", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health/ready, got %d", w.Code)
	}

	// Protected endpoints without auth should be 401
	for _, path := range []string{"/api/auth/me", "/api/work-orders", "/api/permissions/roles", "/api/notifications"} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, w.Code)
		}
	}

	// Unknown routes get the JSON 404 handler
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	router := newTestRouter(t, db)

	// Trigger a request to generate metrics
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", rec.Code)
	}

	metricsRec := httptest.NewRecorder()
	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	if metricsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", metricsRec.Code)
	}

	body := metricsRec.Body.String()
	if !strings.Contains(body, `medifix_api_latency_seconds_count{method="GET",path="/health",status="200"}`) {
		t.Fatalf("metrics output missing latency series: %s", body)
	}
}
