package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertByPhone finds or creates the user for a (phone, role) pair.
// Name and gender are filled in when provided and not already set.
func (r *UserRepository) UpsertByPhone(phone string, role models.Role, name, gender string) (*models.User, error) {
	var user models.User
	query := `
		INSERT INTO users (id, phone, role, name, gender, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $6)
		ON CONFLICT (phone, role) DO UPDATE
		SET name = COALESCE(users.name, EXCLUDED.name),
		    gender = COALESCE(users.gender, EXCLUDED.gender),
		    updated_at = EXCLUDED.updated_at
		RETURNING id, phone, role, name, gender, created_at, updated_at`

	err := r.db.QueryRow(query, uuid.New(), phone, role, name, gender, time.Now()).Scan(
		&user.ID, &user.Phone, &user.Role, &user.Name, &user.Gender, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, phone, role, name, gender, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.Get(&user, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
