package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Token is a persisted refresh token.
type Token struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RefreshToken string    `json:"refreshToken" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
