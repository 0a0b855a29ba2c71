package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// SessionRepository stores per-device refresh-token sessions. Only a
// bcrypt hash of the refresh token ever reaches the database.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session
func (r *SessionRepository) Create(session *models.UserSession) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()

	query := `
		INSERT INTO user_sessions (id, user_id, refresh_token_hash, device_type, device_os, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		session.ID, session.UserID, session.RefreshTokenHash,
		session.DeviceType, session.DeviceOS, session.IPAddress,
		session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveByUser lists a user's unrevoked, unexpired sessions
func (r *SessionRepository) GetActiveByUser(userID uuid.UUID) ([]*models.UserSession, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, device_type, device_os, ip_address, expires_at, revoked_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC`

	var sessions []*models.UserSession
	if err := r.db.Select(&sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Revoke marks one session as revoked
func (r *SessionRepository) Revoke(sessionID uuid.UUID) error {
	result, err := r.db.Exec(`
		UPDATE user_sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revoke result: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RevokeAllForUser revokes every active session of a user
func (r *SessionRepository) RevokeAllForUser(userID uuid.UUID) error {
	_, err := r.db.Exec(`
		UPDATE user_sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
