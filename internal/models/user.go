package models

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// NullFloat wraps sql.NullFloat64 to provide proper JSON marshaling
type NullFloat struct {
	sql.NullFloat64
}

// MarshalJSON implements json.Marshaler
func (nf NullFloat) MarshalJSON() ([]byte, error) {
	if nf.Valid {
		return json.Marshal(nf.Float64)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nf *NullFloat) UnmarshalJSON(data []byte) error {
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f != nil {
		nf.Valid = true
		nf.Float64 = *f
	} else {
		nf.Valid = false
	}
	return nil
}

// Role identifies which side of the marketplace a user acts on
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

// Gender is the customer's gender, used to match boys/girls listings
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// User represents an authenticated account, keyed by phone and role
type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Phone     string     `json:"phone" db:"phone"`
	Role      Role       `json:"role" db:"role"`
	Name      NullString `json:"name,omitempty" db:"name"`
	Gender    NullString `json:"gender,omitempty" db:"gender"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Owner is the owner-side profile attached to a user with RoleOwner.
// UpiID is where customers send manual payments; it is snapshotted onto
// bookings at creation so later profile edits do not rewrite history.
type Owner struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Phone     string     `json:"phone" db:"phone"`
	UpiID     NullString `json:"upi_id,omitempty" db:"upi_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// LoginRequest upserts a user by phone and role
type LoginRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Role   Role   `json:"role" binding:"required"`
	Name   string `json:"name,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Validate checks role and gender values before hitting the database
func (r *LoginRequest) Validate() error {
	switch r.Role {
	case RoleCustomer, RoleOwner:
	default:
		return NewInvalid("role must be customer or owner")
	}

	if r.Gender != "" {
		switch Gender(strings.ToLower(r.Gender)) {
		case GenderBoy, GenderGirl:
		default:
			return NewInvalid("gender must be boy or girl")
		}
	}

	return nil
}

// RefreshRequest rotates an access/refresh token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned by login and refresh
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UpdateUpiRequest updates the owner's payout UPI handle
type UpdateUpiRequest struct {
	UpiID string `json:"upi_id" binding:"required"`
}
