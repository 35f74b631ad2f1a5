package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/medifixhq/medifix/internal/database/testutil"
	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/permissions"
)

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	require.NoError(t, permissions.Sync(context.Background(), db))

	resolver, err := permissions.NewResolver(db)
	require.NoError(t, err)

	user := models.User{
		ID:       uuid.NewString(),
		Username: "perm-mw-user",
		Email:    "perm-mw-user@example.com",
		Password: "x",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	role := models.Role{Code: "viewer", Name: "Viewer"}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Create(&models.UserRoleAssignment{UserID: user.ID, RoleID: role.ID}).Error)
	require.NoError(t, db.Create(&models.RolePermissionEntry{
		RoleID:       role.ID,
		PermissionID: "work_orders.view",
		Allowed:      true,
	}).Error)

	handler := func(userID string, permissionID string) *gin.Engine {
		r := gin.New()
		r.GET("/resource", func(c *gin.Context) {
			if userID != "" {
				c.Set(CtxUserIDKey, userID)
			}
			c.Next()
		}, RequirePermission(resolver, permissionID), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	t.Run("no authenticated user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler("", "work_orders.view").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(user.ID, "work_orders.view").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(user.ID, "work_orders.reassign").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHospitalScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	extract := func(target string, header string) *string {
		var got *string
		r := gin.New()
		r.GET("/h/:hospitalID", func(c *gin.Context) { got = HospitalScope(c); c.Status(http.StatusOK) })
		r.GET("/plain", func(c *gin.Context) { got = HospitalScope(c); c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if header != "" {
			req.Header.Set("X-Hospital-ID", header)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	require.Nil(t, extract("/plain", ""))

	got := extract("/h/hosp-1", "")
	require.NotNil(t, got)
	require.Equal(t, "hosp-1", *got)

	got = extract("/plain?hospital_id=hosp-2", "")
	require.NotNil(t, got)
	require.Equal(t, "hosp-2", *got)

	got = extract("/plain", "hosp-3")
	require.NotNil(t, got)
	require.Equal(t, "hosp-3", *got)
}
