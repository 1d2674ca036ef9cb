package services

import (
	"testing"
	"time"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/tokens"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrincipal_CanAccess(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		principal Principal
		wantErr   error
	}{
		{"owner", Principal{UserID: owner, Role: models.RoleUser}, nil},
		{"admin on foreign resource", Principal{UserID: other, Role: models.RoleAdmin}, nil},
		{"user on foreign resource", Principal{UserID: other, Role: models.RoleUser}, apperrors.ErrForbidden},
		{"anonymous", Principal{}, apperrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.principal.CanAccess(owner)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, Principal{}.CanAccess(uuid.Nil), apperrors.ErrForbidden)
}

func TestPrincipalFromClaims(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	p := PrincipalFromClaims(&tokens.Claims{UserID: id, Email: "a@test.com", Role: models.RoleAdmin, Expiry: time.Now()})

	assert.Equal(t, Principal{UserID: id, Email: "a@test.com", Role: models.RoleAdmin}, p)
	assert.True(t, p.IsAdmin())
}
