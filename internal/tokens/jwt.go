// Package tokens issues and verifies the HS256 access tokens and creates the
// opaque refresh tokens stored alongside them.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/config"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
	Expiry time.Time
}

type Manager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret, issuer string, ttl, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func NewManagerFromConfig(cfg config.AuthConfig) *Manager {
	return NewManager(cfg.JWTSecret, cfg.Issuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// Generate signs an access token for the user and returns it with its expiry.
func (m *Manager) Generate(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
		"iss":     m.issuer,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, algorithm, issuer and expiry.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	rawID, _ := mc["user_id"].(string)
	userID, err := uuid.FromString(rawID)
	if err != nil || userID == uuid.Nil {
		return nil, apperrors.ErrTokenInvalid
	}
	role := models.Role(fmt.Sprint(mc["role"]))
	if !role.IsValid() {
		return nil, apperrors.ErrTokenInvalid
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	email, _ := mc["email"].(string)

	return &Claims{UserID: userID, Email: email, Role: role, Expiry: exp.Time}, nil
}

// NewRefreshToken builds an unsaved refresh token row for the user.
func (m *Manager) NewRefreshToken(userID uuid.UUID) (*models.Token, error) {
	value, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token id: %w", err)
	}
	now := m.now()
	return &models.Token{
		ID:           id,
		UserID:       userID,
		RefreshToken: value.String(),
		ExpiresAt:    now.Add(m.refreshTTL),
		CreatedAt:    now,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration {
	return m.ttl
}
