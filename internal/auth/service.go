package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/pkg/crypto"
	apperrors "github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/logger"
	"github.com/medifixhq/medifix/pkg/metrics"
)

// Service performs credential checks and token issuance. Local bcrypt
// passwords are the only credential type.
type Service struct {
	db  *gorm.DB
	jwt *JWTService
	log *zap.Logger
}

// NewService constructs an auth Service.
func NewService(db *gorm.DB, jwtService *JWTService) (*Service, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwtService == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	return &Service{db: db, jwt: jwtService, log: logger.WithModule("auth")}, nil
}

// Login verifies the username (or email) and password and returns the user
// with a fresh access token. Invalid credentials and disabled accounts share
// one error so the response does not leak which part failed.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, username).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrInvalidCredentials
	case err != nil:
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("auth service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("auth service: issue token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		s.log.Warn("failed to record login time",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, token, nil
}

// GetUser loads an active user by id for authenticated requests.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrUnauthorized
	case err != nil:
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}
	return &user, nil
}
