package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medifixhq/medifix/internal/database/testutil"
	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/pkg/crypto"
	apperrors "github.com/medifixhq/medifix/pkg/errors"
)

func newAuthFixture(t *testing.T) (*Service, *models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtService, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "medifix"})
	require.NoError(t, err)

	svc, err := NewService(db, jwtService)
	require.NoError(t, err)

	hash, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)

	user := models.User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: hash,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	return svc, &user
}

func TestLoginSuccess(t *testing.T) {
	svc, user := newAuthFixture(t)
	ctx := context.Background()

	got, token, err := svc.Login(ctx, "jdoe", "Password123!")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)

	// Email works as the identifier too.
	_, _, err = svc.Login(ctx, "jdoe@example.com", "Password123!")
	require.NoError(t, err)

	claims, err := svc.jwt.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestLoginFailures(t *testing.T) {
	svc, user := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "jdoe", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "Password123!")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.db.Model(user).Update("is_active", false).Error)
	_, _, err = svc.Login(ctx, "jdoe", "Password123!")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	svc, user := newAuthFixture(t)
	ctx := context.Background()

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Username, got.Username)

	_, err = svc.GetUser(ctx, "missing-id")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, svc.db.Model(user).Update("is_active", false).Error)
	_, err = svc.GetUser(ctx, user.ID)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
