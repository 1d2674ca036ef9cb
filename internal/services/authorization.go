package services

import (
	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/tokens"

	"github.com/gofrs/uuid"
)

// Principal is the authenticated caller as described by the access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

func PrincipalFromClaims(c *tokens.Claims) Principal {
	return Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanAccess allows admins everywhere and everyone else on what they own.
func (p Principal) CanAccess(ownerID uuid.UUID) error {
	if p.IsAdmin() || (p.UserID != uuid.Nil && p.UserID == ownerID) {
		return nil
	}
	return apperrors.ErrForbidden
}
