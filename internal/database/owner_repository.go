package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// OwnerRepository handles owner profile database operations
type OwnerRepository struct {
	db DB
}

// NewOwnerRepository creates a new OwnerRepository
func NewOwnerRepository(db DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// EnsureForUser creates the owner profile row for a user if it does not
// exist yet. Called at first owner login.
func (r *OwnerRepository) EnsureForUser(userID uuid.UUID, phone string) (*models.Owner, error) {
	var owner models.Owner
	query := `
		INSERT INTO owners (id, user_id, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, phone, upi_id, created_at, updated_at`

	err := r.db.QueryRow(query, uuid.New(), userID, phone, time.Now()).Scan(
		&owner.ID, &owner.UserID, &owner.Phone, &owner.UpiID, &owner.CreatedAt, &owner.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure owner profile: %w", err)
	}
	return &owner, nil
}

// GetByUserID retrieves the owner profile behind a user account
func (r *OwnerRepository) GetByUserID(userID uuid.UUID) (*models.Owner, error) {
	var owner models.Owner
	query := `
		SELECT id, user_id, phone, upi_id, created_at, updated_at
		FROM owners
		WHERE user_id = $1`

	err := r.db.Get(&owner, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &owner, nil
}

// UpdateUpi sets the owner's payout UPI handle. Existing bookings keep
// the UPI that was snapshotted at their creation.
func (r *OwnerRepository) UpdateUpi(userID uuid.UUID, upiID string) error {
	result, err := r.db.Exec(`
		UPDATE owners SET upi_id = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, upiID)
	if err != nil {
		return fmt.Errorf("failed to update upi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check upi update: %w", err)
	}
	if rows == 0 {
		return models.NewNotFound("owner profile not found")
	}
	return nil
}
