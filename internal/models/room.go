package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is the unit of bookable capacity inside a PG. TotalBeds is fixed
// at creation; AvailableBeds moves only through booking transitions and
// always satisfies 0 <= available_beds <= total_beds.
type Room struct {
	ID            uuid.UUID `json:"id" db:"id"`
	PGID          uuid.UUID `json:"pg_id" db:"pg_id"`
	RoomType      string    `json:"room_type" db:"room_type"`
	RentMonthly   float64   `json:"rent_monthly" db:"rent_monthly"`
	TotalBeds     int       `json:"total_beds" db:"total_beds"`
	AvailableBeds int       `json:"available_beds" db:"available_beds"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CreateRoomRequest adds a room to a listing
type CreateRoomRequest struct {
	RoomType    string  `json:"room_type" binding:"required"`
	RentMonthly float64 `json:"rent_monthly" binding:"required,gt=0"`
	TotalBeds   int     `json:"total_beds" binding:"required,min=1"`
}

// Validate checks rent and capacity bounds
func (r *CreateRoomRequest) Validate() error {
	if r.RentMonthly <= 0 {
		return NewInvalid("rent_monthly must be positive")
	}
	if r.TotalBeds < 1 {
		return NewInvalid("total_beds must be at least 1")
	}
	return nil
}
