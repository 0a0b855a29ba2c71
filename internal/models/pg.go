package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PGType restricts a listing to one gender of tenants
type PGType string

const (
	PGTypeBoys  PGType = "boys"
	PGTypeGirls PGType = "girls"
)

// PGStatus is the moderation state of a listing. Only approved listings
// are visible to customers and bookable.
type PGStatus string

const (
	PGStatusPending  PGStatus = "pending"
	PGStatusApproved PGStatus = "approved"
	PGStatusRejected PGStatus = "rejected"
)

// Listing photo constraints enforced at creation
const (
	MinPGPhotos    = 10
	MaxPGPhotos    = 20
	MaxPGsPerOwner = 3
)

// PG represents a paying-guest shared-housing listing
type PG struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	OwnerID   uuid.UUID      `json:"owner_id" db:"owner_id"`
	Name      string         `json:"name" db:"name"`
	Area      string         `json:"area" db:"area"`
	Address   string         `json:"address" db:"address"`
	PGType    PGType         `json:"pg_type" db:"pg_type"`
	Status    PGStatus       `json:"status" db:"status"`
	Photos    pq.StringArray `json:"photos" db:"photos"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// CreatePGRequest creates a listing; photo references come from the
// upload endpoint and must already be stored.
type CreatePGRequest struct {
	Name    string   `json:"name" binding:"required"`
	Area    string   `json:"area" binding:"required"`
	Address string   `json:"address" binding:"required"`
	PGType  string   `json:"pg_type" binding:"required"`
	Photos  []string `json:"photos" binding:"required"`
}

// Validate enforces pg_type and the photo count window
func (r *CreatePGRequest) Validate() error {
	switch PGType(r.PGType) {
	case PGTypeBoys, PGTypeGirls:
	default:
		return NewInvalid("pg_type must be boys or girls")
	}

	if len(r.Photos) < MinPGPhotos || len(r.Photos) > MaxPGPhotos {
		return NewInvalid("listing requires between %d and %d photos", MinPGPhotos, MaxPGPhotos)
	}

	return nil
}

// PGSearchFilter narrows the public listing search
type PGSearchFilter struct {
	Area   string
	Gender Gender
}

// PGSummary is the public search projection: listing metadata plus
// aggregate room availability.
type PGSummary struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Area          string         `json:"area" db:"area"`
	Address       string         `json:"address" db:"address"`
	PGType        PGType         `json:"pg_type" db:"pg_type"`
	Photos        pq.StringArray `json:"photos" db:"photos"`
	MinRent       NullFloat      `json:"min_rent" db:"min_rent"`
	AvailableBeds int            `json:"available_beds" db:"available_beds"`
}
