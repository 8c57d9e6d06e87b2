package auth

import (
	"time"
)

// Token is one row of the refresh-token ledger. Its primary key is the
// token id (jti) embedded in both tokens of an issued pair; the row's
// presence is the single source of truth for whether that pair may still be
// rotated. Deleting the row revokes the session.
type Token struct {
	ID        string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
