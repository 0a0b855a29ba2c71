package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSession is one device's refresh-token session. Only a bcrypt hash
// of the refresh token is stored; the raw token never touches the
// database.
type UserSession struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	RefreshTokenHash string     `json:"-" db:"refresh_token_hash"`
	DeviceType       NullString `json:"device_type,omitempty" db:"device_type"`
	DeviceOS         NullString `json:"device_os,omitempty" db:"device_os"`
	IPAddress        NullString `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt        NullTime   `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// IsActive reports whether the session can still be used to refresh
func (s *UserSession) IsActive(now time.Time) bool {
	return !s.RevokedAt.Valid && now.Before(s.ExpiresAt)
}
