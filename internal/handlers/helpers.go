package handlers

import (
	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/middleware"
	"task-manager/api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

func principal(c *gin.Context) (services.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
	}
	return p, ok
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil || id == uuid.Nil {
		_ = c.Error(apperrors.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes the JSON body into req, recording the failure on c.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}
