package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/models"
)

// BookingRepository implements the booking state machine against
// Postgres. Every transition runs as one all-or-nothing transaction:
// lock the booking row (and the room row whenever beds move), check the
// guard, apply the field changes and inventory delta together, commit.
// Losers of a concurrent race observe InvalidState from the guarded
// UPDATE, never a partial mutation.
type BookingRepository struct {
	db       *sqlx.DB
	rooms    *RoomRepository
	payments *PaymentRepository
	logger   *logrus.Logger
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB, rooms *RoomRepository, payments *PaymentRepository, logger *logrus.Logger) *BookingRepository {
	return &BookingRepository{db: db, rooms: rooms, payments: payments, logger: logger}
}

const bookingColumns = `
	id, booking_reference, customer_id, pg_id, room_id, booking_type,
	start_date, end_date, beds_booked,
	rent_amount, deposit_amount, platform_fee, total_amount,
	status, payment_status, customer_upi, owner_upi,
	payment_reference, payment_evidence, refund_evidence, owner_reason,
	created_at, decision_at, expires_at`

// rowScanner abstracts *sql.Row and *sql.Rows for scanBooking
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.BookingReference, &b.CustomerID, &b.PGID, &b.RoomID, &b.BookingType,
		&b.StartDate, &b.EndDate, &b.BedsBooked,
		&b.RentAmount, &b.DepositAmount, &b.PlatformFee, &b.TotalAmount,
		&b.Status, &b.PaymentStatus, &b.CustomerUpi, &b.OwnerUpi,
		&b.PaymentReference, &b.PaymentEvidence, &b.RefundEvidence, &b.OwnerReason,
		&b.CreatedAt, &b.DecisionAt, &b.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GenerateBookingReference creates a unique human-readable reference
// in the format PG-YYYYMMDD-XXXXXX
func (r *BookingRepository) GenerateBookingReference() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for attempt := 0; attempt < 10; attempt++ {
		suffix := make([]byte, 6)
		for i := range suffix {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate booking reference: %w", err)
			}
			suffix[i] = charset[idx.Int64()]
		}

		ref := fmt.Sprintf("PG-%s-%s", time.Now().Format("20060102"), string(suffix))

		var exists bool
		err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_reference = $1)`, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check booking reference: %w", err)
		}
		if !exists {
			return ref, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// CreateBookingParams carries validated input for Create
type CreateBookingParams struct {
	CustomerID   uuid.UUID
	PGID         uuid.UUID
	RoomID       uuid.UUID
	BookingType  models.BookingType
	StartDate    *time.Time
	EndDate      *time.Time
	BedsBooked   int
	CustomerUpi  string
	ExpiryWindow time.Duration
}

// Create reserves beds and inserts the booking in one transaction.
// Pricing is fixed at creation: rent is the room's full monthly rent for
// both booking types, deposit and platform fee are constants, and the
// owner's UPI handle is snapshotted so later profile edits do not affect
// this booking.
func (r *BookingRepository) Create(params CreateBookingParams) (*models.Booking, error) {
	ref, err := r.GenerateBookingReference()
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Resolve the listing; only approved PGs are bookable
	var listing struct {
		OwnerID  uuid.UUID `db:"owner_id"`
		OwnerUpi string    `db:"owner_upi"`
	}
	err = tx.QueryRow(`
		SELECT p.owner_id, COALESCE(o.upi_id, '') AS owner_upi
		FROM pgs p
		JOIN owners o ON o.id = p.owner_id
		WHERE p.id = $1 AND p.status = 'approved'
	`, params.PGID).Scan(&listing.OwnerID, &listing.OwnerUpi)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFound("pg not found or not approved")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pg: %w", err)
	}

	// 2. Lock the room row, serializing concurrent reserves
	room, err := r.rooms.LockRoomTx(tx, params.RoomID, params.PGID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, models.NewNotFound("room not found")
	}
	if room.AvailableBeds < params.BedsBooked {
		return nil, models.NewConflict("only %d beds available, %d requested", room.AvailableBeds, params.BedsBooked)
	}

	now := time.Now()
	booking := &models.Booking{
		ID:               uuid.New(),
		BookingReference: ref,
		CustomerID:       params.CustomerID,
		PGID:             params.PGID,
		RoomID:           params.RoomID,
		BookingType:      params.BookingType,
		BedsBooked:       params.BedsBooked,
		RentAmount:       room.RentMonthly,
		DepositAmount:    models.DepositAmount,
		PlatformFee:      models.PlatformFee,
		TotalAmount:      room.RentMonthly + models.DepositAmount + models.PlatformFee,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		CustomerUpi:      params.CustomerUpi,
		OwnerUpi:         listing.OwnerUpi,
		CreatedAt:        now,
		ExpiresAt:        now.Add(params.ExpiryWindow),
	}
	if params.StartDate != nil {
		booking.StartDate = models.NullTime{NullTime: sql.NullTime{Time: *params.StartDate, Valid: true}}
	}
	if params.EndDate != nil {
		booking.EndDate = models.NullTime{NullTime: sql.NullTime{Time: *params.EndDate, Valid: true}}
	}

	// 3. Insert the booking
	_, err = tx.Exec(`
		INSERT INTO bookings (
			id, booking_reference, customer_id, pg_id, room_id, booking_type,
			start_date, end_date, beds_booked,
			rent_amount, deposit_amount, platform_fee, total_amount,
			status, payment_status, customer_upi, owner_upi,
			created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		booking.ID, booking.BookingReference, booking.CustomerID, booking.PGID, booking.RoomID, booking.BookingType,
		booking.StartDate, booking.EndDate, booking.BedsBooked,
		booking.RentAmount, booking.DepositAmount, booking.PlatformFee, booking.TotalAmount,
		booking.Status, booking.PaymentStatus, booking.CustomerUpi, booking.OwnerUpi,
		booking.CreatedAt, booking.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	// 4. Debit the beds; this is the only place beds are ever reserved
	if err := r.rooms.ReserveBedsTx(tx, params.RoomID, params.BedsBooked); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return booking, nil
}

// lockBookingTx loads a booking row under FOR UPDATE, serializing
// concurrent transitions on the same booking.
func (r *BookingRepository) lockBookingTx(tx *sqlx.Tx, bookingID uuid.UUID) (*models.Booking, error) {
	row := tx.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFound("booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return booking, nil
}

// verifyPGOwnerTx checks that userID is the user account behind the
// owner of pgID.
func (r *BookingRepository) verifyPGOwnerTx(tx *sqlx.Tx, pgID, userID uuid.UUID) error {
	var ownerUserID uuid.UUID
	err := tx.QueryRow(`
		SELECT o.user_id
		FROM pgs p
		JOIN owners o ON o.id = p.owner_id
		WHERE p.id = $1
	`, pgID).Scan(&ownerUserID)
	if err == sql.ErrNoRows {
		return models.NewNotFound("pg not found")
	}
	if err != nil {
		return fmt.Errorf("failed to resolve pg owner: %w", err)
	}
	if ownerUserID != userID {
		return models.NewForbidden("you do not own this pg")
	}
	return nil
}

// SubmitPayment attaches payment evidence, moving the booking from
// payment_pending to payment_submitted.
func (r *BookingRepository) SubmitPayment(bookingID, customerID uuid.UUID, paymentRef, evidenceRef string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, models.NewForbidden("booking belongs to another customer")
	}
	if !booking.CanSubmitPayment() {
		return nil, models.NewInvalidState("payment can only be submitted while the booking is awaiting payment")
	}

	result, err := tx.Exec(`
		UPDATE bookings
		SET payment_status = 'payment_submitted', payment_reference = $2, payment_evidence = $3
		WHERE id = $1 AND status = 'pending' AND payment_status = 'payment_pending'
	`, bookingID, paymentRef, evidenceRef)
	if err != nil {
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewInvalidState("booking already left the payment_pending state")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment submission: %w", err)
	}

	booking.PaymentStatus = models.PaymentStatusSubmitted
	booking.PaymentReference = models.NullString{NullString: sql.NullString{String: paymentRef, Valid: true}}
	booking.PaymentEvidence = models.NullString{NullString: sql.NullString{String: evidenceRef, Valid: true}}
	return booking, nil
}

// Accept finalizes a paid booking. The room row is locked as well even
// though the bed count does not change: the lock serializes accept
// against a concurrent release on the same room, and the guarded UPDATE
// fails loudly if another owner action already decided this booking.
func (r *BookingRepository) Accept(bookingID, ownerUserID uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := r.verifyPGOwnerTx(tx, booking.PGID, ownerUserID); err != nil {
		return nil, err
	}

	room, err := r.rooms.LockRoomTx(tx, booking.RoomID, booking.PGID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, models.NewNotFound("room not found")
	}

	if !booking.CanAccept() {
		return nil, models.NewInvalidState("booking is not awaiting an owner decision")
	}

	now := time.Now()
	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'accepted', payment_status = 'verified', decision_at = $2
		WHERE id = $1 AND status = 'pending' AND payment_status = 'payment_submitted'
	`, bookingID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to accept booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewInvalidState("booking already left the payment_submitted state")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}

	booking.Status = models.BookingStatusAccepted
	booking.PaymentStatus = models.PaymentStatusVerified
	booking.DecisionAt = models.NullTime{NullTime: sql.NullTime{Time: now, Valid: true}}
	return booking, nil
}

// Reject records the owner's reason and parks the booking in
// refund_pending. Inventory is untouched here; beds are released only
// when the refund is confirmed with evidence.
func (r *BookingRepository) Reject(bookingID, ownerUserID uuid.UUID, reason string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := r.verifyPGOwnerTx(tx, booking.PGID, ownerUserID); err != nil {
		return nil, err
	}
	if !booking.CanReject() {
		return nil, models.NewInvalidState("booking is not awaiting an owner decision")
	}

	result, err := tx.Exec(`
		UPDATE bookings
		SET payment_status = 'refund_pending', owner_reason = $2
		WHERE id = $1 AND status = 'pending' AND payment_status = 'payment_submitted'
	`, bookingID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewInvalidState("booking already left the payment_submitted state")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	booking.PaymentStatus = models.PaymentRefundPending
	booking.OwnerReason = models.NullString{NullString: sql.NullString{String: reason, Valid: true}}
	return booking, nil
}

// ConfirmRefund closes a rejection: refund evidence is attached, the
// booking becomes terminal rejected/refunded, and the held beds are
// released back to the room in the same transaction.
func (r *BookingRepository) ConfirmRefund(bookingID, ownerUserID uuid.UUID, evidenceRef string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := r.verifyPGOwnerTx(tx, booking.PGID, ownerUserID); err != nil {
		return nil, err
	}
	if !booking.CanConfirmRefund() {
		return nil, models.NewInvalidState("booking is not awaiting refund confirmation")
	}

	now := time.Now()
	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'rejected', payment_status = 'refunded', refund_evidence = $2, decision_at = $3
		WHERE id = $1 AND status = 'pending' AND payment_status = 'refund_pending'
	`, bookingID, evidenceRef, now)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm refund: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewInvalidState("booking already left the refund_pending state")
	}

	if err := r.rooms.ReleaseBedsTx(tx, booking.RoomID, booking.BedsBooked); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit refund confirmation: %w", err)
	}

	booking.Status = models.BookingStatusRejected
	booking.PaymentStatus = models.PaymentStatusRefunded
	booking.RefundEvidence = models.NullString{NullString: sql.NullString{String: evidenceRef, Valid: true}}
	booking.DecisionAt = models.NullTime{NullTime: sql.NullTime{Time: now, Valid: true}}
	return booking, nil
}

// Cancel lets the customer back out before submitting payment evidence,
// releasing the held beds.
func (r *BookingRepository) Cancel(bookingID, customerID uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, models.NewForbidden("booking belongs to another customer")
	}
	if !booking.CanCancel() {
		return nil, models.NewInvalidState("only bookings still awaiting payment can be cancelled")
	}

	now := time.Now()
	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'cancelled', decision_at = $2
		WHERE id = $1 AND status = 'pending' AND payment_status = 'payment_pending'
	`, bookingID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, models.NewInvalidState("booking already left the payment_pending state")
	}

	if err := r.rooms.ReleaseBedsTx(tx, booking.RoomID, booking.BedsBooked); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.DecisionAt = models.NullTime{NullTime: sql.NullTime{Time: now, Valid: true}}
	return booking, nil
}

// Expire finalizes one overdue booking and releases its beds. Run by the
// sweep; a booking that already transitioned is reported as InvalidState
// so the sweep can treat it as a no-op.
func (r *BookingRepository) Expire(bookingID uuid.UUID, now time.Time) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := r.lockBookingTx(tx, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanExpire(now) {
		return models.NewInvalidState("booking is not eligible for expiry")
	}

	result, err := tx.Exec(`
		UPDATE bookings
		SET status = 'expired', owner_reason = COALESCE(owner_reason, 'Auto-expired'), decision_at = $2
		WHERE id = $1 AND status = 'pending' AND payment_status IN ('payment_pending', 'payment_submitted')
	`, bookingID, now)
	if err != nil {
		return fmt.Errorf("failed to expire booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.NewInvalidState("booking already left an expirable state")
	}

	// Any externally recorded paid amount is flipped to refunded in the
	// same transaction, after the guard: it must never commit for a
	// booking that raced into accepted.
	refunded, err := r.payments.RefundPaidByBookingTx(tx, bookingID)
	if err != nil {
		return err
	}

	if err := r.rooms.ReleaseBedsTx(tx, booking.RoomID, booking.BedsBooked); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expiry: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"booking_id":       bookingID,
		"room_id":          booking.RoomID,
		"beds":             booking.BedsBooked,
		"refunded_records": refunded,
	}).Info("Booking expired and beds released")

	return nil
}

// GetExpiredPendingIDs lists bookings past their deadline that are still
// in an expirable state, oldest first.
func (r *BookingRepository) GetExpiredPendingIDs(now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Select(&ids, `
		SELECT id FROM bookings
		WHERE status = 'pending'
		  AND payment_status IN ('payment_pending', 'payment_submitted')
		  AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	return ids, nil
}

// GetByID retrieves a booking by id
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	row := r.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}
