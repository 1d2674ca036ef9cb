package tokens

import (
	"testing"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.Must(uuid.NewV4()), Email: "ana@test.com", Role: models.RoleAdmin}
}

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", "test-issuer", time.Hour, 24*time.Hour)
	user := testUser()

	signed, expiresAt, err := m.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ana@test.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, expiresAt.Unix(), claims.Expiry.Unix())
}

func TestParseRejects(t *testing.T) {
	m := NewManager("secret", "test-issuer", time.Hour, time.Hour)
	user := testUser()
	valid, _, err := m.Generate(user)
	require.NoError(t, err)

	expired := NewManager("secret", "test-issuer", time.Hour, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Generate(user)
	require.NoError(t, err)

	otherSecret, _, err := NewManager("other", "test-issuer", time.Hour, time.Hour).Generate(user)
	require.NoError(t, err)
	otherIssuer, _, err := NewManager("secret", "someone-else", time.Hour, time.Hour).Generate(user)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": user.ID.String(), "role": "admin", "iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(), "role": "root", "iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(), "role": "user", "iss": "test-issuer",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{"expired", expiredToken, apperrors.ErrTokenExpired},
		{"wrong secret", otherSecret, apperrors.ErrTokenInvalid},
		{"wrong issuer", otherIssuer, apperrors.ErrTokenInvalid},
		{"none algorithm", noneAlg, apperrors.ErrTokenInvalid},
		{"unknown role", badRole, apperrors.ErrTokenInvalid},
		{"missing expiry", noExp, apperrors.ErrTokenInvalid},
		{"garbage", "not-a-jwt", apperrors.ErrTokenInvalid},
		{"tampered", valid + "x", apperrors.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewRefreshToken(t *testing.T) {
	m := NewManager("secret", "iss", time.Hour, 48*time.Hour)
	userID := uuid.Must(uuid.NewV4())

	a, err := m.NewRefreshToken(userID)
	require.NoError(t, err)
	b, err := m.NewRefreshToken(userID)
	require.NoError(t, err)

	assert.Equal(t, userID, a.UserID)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
	assert.Equal(t, 48*time.Hour, a.ExpiresAt.Sub(a.CreatedAt))
	assert.False(t, a.Expired(time.Now()))
}
