package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/pkg/crypto"
)

func TestAuditServiceLogListAndExport(t *testing.T) {
	db := openAuditServiceTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	hashed, err := crypto.HashPassword("secret123!")
	require.NoError(t, err)

	user := models.User{
		Username: "auditor",
		Email:    "auditor@example.com",
		Password: hashed,
	}
	require.NoError(t, db.Create(&user).Error)

	hospital := models.Hospital{Name: "St. Anne General", Code: "ANNE"}
	require.NoError(t, db.Create(&hospital).Error)

	ctx := context.Background()
	err = svc.Log(ctx, AuditEntry{
		UserID:     &user.ID,
		HospitalID: &hospital.ID,
		Username:   "auditor",
		Action:     "work_order.start_work",
		Resource:   "work_orders",
		Result:     "success",
		Metadata:   map[string]any{"from": "assigned", "to": "in_progress"},
	})
	require.NoError(t, err)

	logs, total, err := svc.List(ctx, AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	require.Equal(t, "work_order.start_work", logs[0].Action)
	require.NotNil(t, logs[0].User)
	require.Equal(t, user.ID, logs[0].User.ID)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal([]byte(logs[0].Metadata), &metadata))
	require.Equal(t, "in_progress", metadata["to"])

	exported, err := svc.Export(ctx, AuditFilters{HospitalID: hospital.ID, Result: "success"})
	require.NoError(t, err)
	require.Len(t, exported, 1)

	exported, err = svc.Export(ctx, AuditFilters{HospitalID: uuid.NewString()})
	require.NoError(t, err)
	require.Empty(t, exported)
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := openAuditServiceTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	oldLog := models.AuditLog{
		Action:    "work_order.auto_close",
		Result:    "success",
		Metadata:  "{}",
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, db.Create(&oldLog).Error)

	freshLog := models.AuditLog{
		Action:   "work_order.start_work",
		Result:   "success",
		Metadata: "{}",
	}
	require.NoError(t, db.Create(&freshLog).Error)

	ctx := context.Background()
	rows, err := svc.CleanupOlderThan(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}

func openAuditServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Hospital{},
		&models.AuditLog{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
