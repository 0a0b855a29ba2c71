package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/models"
)

// PaymentRepository handles the payments ledger. These rows track
// money-in-flight alongside the booking's own payment_status and are
// written best-effort: a ledger failure never blocks a booking
// transition.
type PaymentRepository struct {
	db     DB
	logger *logrus.Logger
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB, logger *logrus.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

// CreateForBooking writes the initial ledger row at booking creation
func (r *PaymentRepository) CreateForBooking(bookingID uuid.UUID, amount float64) (*models.Payment, error) {
	payment := &models.Payment{
		ID:        uuid.New(),
		BookingID: bookingID,
		Amount:    amount,
		Status:    models.PaymentRecordCreated,
		CreatedAt: time.Now(),
	}
	payment.UpdatedAt = payment.CreatedAt

	query := `
		INSERT INTO payments (id, booking_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		payment.ID, payment.BookingID, payment.Amount, payment.Status,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}
	return payment, nil
}

// RefundPaidByBookingTx marks any paid ledger row for the booking as
// refunded, inside the caller's transaction so the flip commits or rolls
// back together with the booking transition. Returns the number of rows
// flipped; zero is normal for a booking that was never paid through an
// external channel.
func (r *PaymentRepository) RefundPaidByBookingTx(tx *sqlx.Tx, bookingID uuid.UUID) (int, error) {
	result, err := tx.Exec(`
		UPDATE payments
		SET status = 'refunded', updated_at = NOW()
		WHERE booking_id = $1 AND status = 'paid'
	`, bookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to refund payment records: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check refund result: %w", err)
	}
	if rows > 0 {
		r.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"records":    rows,
		}).Info("Marked paid payment records as refunded")
	}
	return int(rows), nil
}

// GetByBooking lists the ledger rows for a booking, newest first
func (r *PaymentRepository) GetByBooking(bookingID uuid.UUID) ([]*models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, status, order_ref, payment_ref, created_at, updated_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC`

	var payments []*models.Payment
	if err := r.db.Select(&payments, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
