package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/medifixhq/medifix/internal/database/testutil"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/notifications"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/pkg/response"
)

func TestNotificationHandlerListAndMarkRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	hub := notifications.NewHub()
	service, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)
	handler, err := NewNotificationHandler(service, hub, nil)
	require.NoError(t, err)

	user := models.User{
		ID:       uuid.NewString(),
		Username: "dana",
		Email:    "dana@example.com",
		Password: "secret",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	_, err = service.Create(t.Context(), services.CreateNotificationInput{
		UserID:  user.ID,
		Type:    "work_order.assigned",
		Title:   "Work order assigned",
		Message: "A pump repair was assigned to you",
	})
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	c.Set(middleware.CtxUserIDKey, user.ID)
	handler.List(c)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	dataBytes, err := json.Marshal(payload.Data)
	require.NoError(t, err)

	var items []services.NotificationDTO
	require.NoError(t, json.Unmarshal(dataBytes, &items))
	require.Len(t, items, 1)
	require.False(t, items[0].IsRead)

	readRecorder := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(readRecorder)
	c2.Request = httptest.NewRequest(http.MethodPost, "/api/notifications/"+items[0].ID+"/read", nil)
	c2.Params = gin.Params{gin.Param{Key: "id", Value: items[0].ID}}
	c2.Set(middleware.CtxUserIDKey, user.ID)
	handler.MarkRead(c2)

	require.Equal(t, http.StatusOK, readRecorder.Code)

	var readPayload response.Response
	require.NoError(t, json.Unmarshal(readRecorder.Body.Bytes(), &readPayload))
	require.True(t, readPayload.Success)

	readData, err := json.Marshal(readPayload.Data)
	require.NoError(t, err)

	var dto services.NotificationDTO
	require.NoError(t, json.Unmarshal(readData, &dto))
	require.True(t, dto.IsRead)
}

func TestNotificationHandlerRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	hub := notifications.NewHub()
	service, err := services.NewNotificationService(db, hub)
	require.NoError(t, err)
	handler, err := NewNotificationHandler(service, hub, nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	handler.List(c)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
