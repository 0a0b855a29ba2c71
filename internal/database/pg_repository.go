package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// PGRepository handles listing database operations
type PGRepository struct {
	db DB
}

// NewPGRepository creates a new PGRepository
func NewPGRepository(db DB) *PGRepository {
	return &PGRepository{db: db}
}

// CountByOwner returns how many listings an owner already has
func (r *PGRepository) CountByOwner(ownerID uuid.UUID) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM pgs WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pgs: %w", err)
	}
	return count, nil
}

// CreatePG inserts a listing in pending moderation state
func (r *PGRepository) CreatePG(pg *models.PG) error {
	pg.ID = uuid.New()
	pg.Status = models.PGStatusPending
	pg.CreatedAt = time.Now()
	pg.UpdatedAt = pg.CreatedAt

	query := `
		INSERT INTO pgs (id, owner_id, name, area, address, pg_type, status, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		pg.ID, pg.OwnerID, pg.Name, pg.Area, pg.Address, pg.PGType, pg.Status,
		pq.Array(pg.Photos), pg.CreatedAt, pg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pg: %w", err)
	}
	return nil
}

// GetByID retrieves a listing by id
func (r *PGRepository) GetByID(pgID uuid.UUID) (*models.PG, error) {
	var pg models.PG
	query := `
		SELECT id, owner_id, name, area, address, pg_type, status, photos, created_at, updated_at
		FROM pgs
		WHERE id = $1`

	err := r.db.Get(&pg, query, pgID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pg: %w", err)
	}
	return &pg, nil
}

// GetByOwner lists an owner's own listings, any moderation state
func (r *PGRepository) GetByOwner(ownerID uuid.UUID) ([]*models.PG, error) {
	query := `
		SELECT id, owner_id, name, area, address, pg_type, status, photos, created_at, updated_at
		FROM pgs
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	var pgs []*models.PG
	if err := r.db.Select(&pgs, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list owner pgs: %w", err)
	}
	return pgs, nil
}

// SearchApproved runs the public listing search: approved PGs only,
// optional case-insensitive area substring and gender filters, with
// aggregate room availability per listing.
func (r *PGRepository) SearchApproved(filter models.PGSearchFilter) ([]*models.PGSummary, error) {
	query := `
		SELECT p.id, p.name, p.area, p.address, p.pg_type, p.photos,
		       MIN(rm.rent_monthly) AS min_rent,
		       COALESCE(SUM(rm.available_beds), 0) AS available_beds
		FROM pgs p
		LEFT JOIN rooms rm ON rm.pg_id = p.id
		WHERE p.status = 'approved'`

	args := []interface{}{}
	if filter.Area != "" {
		args = append(args, "%"+filter.Area+"%")
		query += fmt.Sprintf(" AND p.area ILIKE $%d", len(args))
	}
	if filter.Gender != "" {
		pgType := models.PGTypeBoys
		if filter.Gender == models.GenderGirl {
			pgType = models.PGTypeGirls
		}
		args = append(args, pgType)
		query += fmt.Sprintf(" AND p.pg_type = $%d", len(args))
	}
	query += `
		GROUP BY p.id, p.name, p.area, p.address, p.pg_type, p.photos
		ORDER BY p.created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search pgs: %w", err)
	}
	defer rows.Close()

	summaries := []*models.PGSummary{}
	for rows.Next() {
		var s models.PGSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Area, &s.Address, &s.PGType, &s.Photos, &s.MinRent, &s.AvailableBeds)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pg summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}
