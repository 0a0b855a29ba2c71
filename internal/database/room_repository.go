package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// RoomRepository handles room database operations, including the bed
// inventory ledger. available_beds is mutated only through ReserveBedsTx
// and ReleaseBedsTx, always inside a caller-owned transaction holding a
// FOR UPDATE lock on the room row.
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom adds a room to a PG. available_beds starts at capacity.
func (r *RoomRepository) CreateRoom(room *models.Room) error {
	room.ID = uuid.New()
	room.AvailableBeds = room.TotalBeds
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt

	query := `
		INSERT INTO rooms (id, pg_id, room_type, rent_monthly, total_beds, available_beds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		room.ID, room.PGID, room.RoomType, room.RentMonthly,
		room.TotalBeds, room.AvailableBeds, room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetRoomsByPG lists rooms of a listing
func (r *RoomRepository) GetRoomsByPG(pgID uuid.UUID) ([]*models.Room, error) {
	query := `
		SELECT id, pg_id, room_type, rent_monthly, total_beds, available_beds, created_at, updated_at
		FROM rooms
		WHERE pg_id = $1
		ORDER BY created_at ASC`

	var rooms []*models.Room
	if err := r.db.Select(&rooms, query, pgID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// GetRoom retrieves a room scoped to its PG
func (r *RoomRepository) GetRoom(roomID, pgID uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `
		SELECT id, pg_id, room_type, rent_monthly, total_beds, available_beds, created_at, updated_at
		FROM rooms
		WHERE id = $1 AND pg_id = $2`

	err := r.db.Get(&room, query, roomID, pgID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// LockRoomTx loads a room row under FOR UPDATE inside tx, serializing
// concurrent reserves and releases on the same room.
func (r *RoomRepository) LockRoomTx(tx *sqlx.Tx, roomID, pgID uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `
		SELECT id, pg_id, room_type, rent_monthly, total_beds, available_beds, created_at, updated_at
		FROM rooms
		WHERE id = $1 AND pg_id = $2
		FOR UPDATE`

	err := tx.QueryRow(query, roomID, pgID).Scan(
		&room.ID, &room.PGID, &room.RoomType, &room.RentMonthly,
		&room.TotalBeds, &room.AvailableBeds, &room.CreatedAt, &room.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	return &room, nil
}

// ReserveBedsTx debits n beds from the room. The guarded WHERE clause
// refuses the debit when fewer than n beds remain, so a negative balance
// is never observable even if the caller's availability check raced.
func (r *RoomRepository) ReserveBedsTx(tx *sqlx.Tx, roomID uuid.UUID, n int) error {
	result, err := tx.Exec(`
		UPDATE rooms
		SET available_beds = available_beds - $2, updated_at = NOW()
		WHERE id = $1 AND available_beds >= $2
	`, roomID, n)
	if err != nil {
		return fmt.Errorf("failed to reserve beds: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reserve result: %w", err)
	}
	if rows == 0 {
		return models.NewConflict("room does not have %d beds available", n)
	}
	return nil
}

// ReleaseBedsTx credits n beds back, capped at total_beds so a
// double-release bug can never inflate capacity.
func (r *RoomRepository) ReleaseBedsTx(tx *sqlx.Tx, roomID uuid.UUID, n int) error {
	result, err := tx.Exec(`
		UPDATE rooms
		SET available_beds = LEAST(available_beds + $2, total_beds), updated_at = NOW()
		WHERE id = $1
	`, roomID, n)
	if err != nil {
		return fmt.Errorf("failed to release beds: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check release result: %w", err)
	}
	if rows == 0 {
		return models.NewNotFound("room not found")
	}
	return nil
}
