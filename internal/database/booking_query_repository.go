package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// BookingQueryRepository serves the read-side projections: a customer's
// own bookings and the owner's queue buckets. No method here mutates
// anything.
type BookingQueryRepository struct {
	db DB
}

// NewBookingQueryRepository creates a new BookingQueryRepository
func NewBookingQueryRepository(db DB) *BookingQueryRepository {
	return &BookingQueryRepository{db: db}
}

const bookingViewColumns = `
	b.id, b.booking_reference, b.customer_id, b.pg_id, b.room_id, b.booking_type,
	b.start_date, b.end_date, b.beds_booked,
	b.rent_amount, b.deposit_amount, b.platform_fee, b.total_amount,
	b.status, b.payment_status, b.customer_upi, b.owner_upi,
	b.payment_reference, b.payment_evidence, b.refund_evidence, b.owner_reason,
	b.created_at, b.decision_at, b.expires_at,
	p.name, p.area, rm.room_type, u.name, u.phone`

func scanBookingView(row rowScanner) (*models.BookingView, error) {
	var v models.BookingView
	err := row.Scan(
		&v.ID, &v.BookingReference, &v.CustomerID, &v.PGID, &v.RoomID, &v.BookingType,
		&v.StartDate, &v.EndDate, &v.BedsBooked,
		&v.RentAmount, &v.DepositAmount, &v.PlatformFee, &v.TotalAmount,
		&v.Status, &v.PaymentStatus, &v.CustomerUpi, &v.OwnerUpi,
		&v.PaymentReference, &v.PaymentEvidence, &v.RefundEvidence, &v.OwnerReason,
		&v.CreatedAt, &v.DecisionAt, &v.ExpiresAt,
		&v.PGName, &v.PGArea, &v.RoomType, &v.CustomerName, &v.CustomerPhone,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByCustomer returns the customer's bookings, most recent first,
// optionally narrowed to one status.
func (r *BookingQueryRepository) ListByCustomer(customerID uuid.UUID, status *models.BookingStatus) ([]*models.BookingView, error) {
	query := `
		SELECT ` + bookingViewColumns + `
		FROM bookings b
		JOIN pgs p ON p.id = b.pg_id
		JOIN rooms rm ON rm.id = b.room_id
		JOIN users u ON u.id = b.customer_id
		WHERE b.customer_id = $1`

	args := []interface{}{customerID}
	if status != nil {
		query += ` AND b.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer bookings: %w", err)
	}
	defer rows.Close()

	views := []*models.BookingView{}
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ListByOwner returns one bucket of the owner's queue, most recent
// first. The pending bucket surfaces only bookings awaiting an owner
// action (payment submitted or refund pending); bookings the customer
// has not paid for yet are excluded. The rejected bucket is the owner's
// closed history: rejected, cancelled and expired.
func (r *BookingQueryRepository) ListByOwner(ownerUserID uuid.UUID, bucket models.OwnerQueueBucket) ([]*models.BookingView, error) {
	query := `
		SELECT ` + bookingViewColumns + `
		FROM bookings b
		JOIN pgs p ON p.id = b.pg_id
		JOIN owners o ON o.id = p.owner_id
		JOIN rooms rm ON rm.id = b.room_id
		JOIN users u ON u.id = b.customer_id
		WHERE o.user_id = $1`

	switch bucket {
	case models.BucketPending:
		query += ` AND b.status = 'pending' AND b.payment_status IN ('payment_submitted', 'refund_pending')`
	case models.BucketAccepted:
		query += ` AND b.status = 'accepted'`
	case models.BucketRejected:
		query += ` AND b.status IN ('rejected', 'cancelled', 'expired')`
	default:
		return nil, models.NewInvalid("unknown booking bucket: %s", bucket)
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	defer rows.Close()

	views := []*models.BookingView{}
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
