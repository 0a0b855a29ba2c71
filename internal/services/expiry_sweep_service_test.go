package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

func newTestSweep(db *sqlx.DB) *ExpirySweepService {
	logger := quietLogger()
	rooms := database.NewRoomRepository(db)
	payments := database.NewPaymentRepository(db, logger)
	bookings := database.NewBookingRepository(db, rooms, payments, logger)
	return NewExpirySweepService(bookings, time.Minute, 50, logger)
}

var sweepBookingCols = []string{
	"id", "booking_reference", "customer_id", "pg_id", "room_id", "booking_type",
	"start_date", "end_date", "beds_booked",
	"rent_amount", "deposit_amount", "platform_fee", "total_amount",
	"status", "payment_status", "customer_upi", "owner_upi",
	"payment_reference", "payment_evidence", "refund_evidence", "owner_reason",
	"created_at", "decision_at", "expires_at",
}

func sweepBookingRow(id, roomID uuid.UUID, status models.BookingStatus, ps models.PaymentStatus, expiresAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(sweepBookingCols).AddRow(
		id, "PG-20260829-SWEEP1", uuid.New(), uuid.New(), roomID, models.BookingTypeUnlimited,
		nil, nil, 2,
		8000.0, 1000.0, 299.0, 9299.0,
		status, ps, "customer@upi", "owner@upi",
		nil, nil, nil, nil,
		now.Add(-48*time.Hour), nil, expiresAt,
	)
}

func TestSweepExpiresOverdueBookings(t *testing.T) {
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	now := time.Now()
	bookingID := uuid.New()
	roomID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID))

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(bookingID).
		WillReturnRows(sweepBookingRow(bookingID, roomID, models.BookingStatusPending, models.PaymentStatusPending, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments`).
		WithArgs(bookingID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expired := sweep.RunOnce(now)
	assert.Equal(t, 1, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepSkipsAlreadyDecidedBooking(t *testing.T) {
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	now := time.Now()
	decidedID := uuid.New()
	overdueID := uuid.New()
	roomID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(decidedID).AddRow(overdueID))

	// First booking was accepted between listing and locking; the guard
	// fails under lock and nothing is written, ledger included.
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(decidedID).
		WillReturnRows(sweepBookingRow(decidedID, roomID, models.BookingStatusAccepted, models.PaymentStatusVerified, now.Add(-time.Hour)))
	mock.ExpectRollback()

	// Second booking expires normally
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(overdueID).
		WillReturnRows(sweepBookingRow(overdueID, roomID, models.BookingStatusPending, models.PaymentStatusSubmitted, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments`).
		WithArgs(overdueID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expired := sweep.RunOnce(now)
	assert.Equal(t, 1, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepNeverRefundsAcceptedBooking(t *testing.T) {
	// A booking that raced into accepted after the overdue scan keeps its
	// paid ledger row: the refund runs inside the expiry transaction,
	// after the guard, so nothing commits when the expiry no-ops.
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	now := time.Now()
	bookingID := uuid.New()
	roomID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID))

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(bookingID).
		WillReturnRows(sweepBookingRow(bookingID, roomID, models.BookingStatusAccepted, models.PaymentStatusVerified, now.Add(-time.Hour)))
	mock.ExpectRollback()

	expired := sweep.RunOnce(now)
	assert.Equal(t, 0, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepRefundsPaidLedgerRowOnExpiry(t *testing.T) {
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	now := time.Now()
	bookingID := uuid.New()
	roomID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID))

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(bookingID).
		WillReturnRows(sweepBookingRow(bookingID, roomID, models.BookingStatusPending, models.PaymentStatusSubmitted, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// A paid ledger row exists and gets flipped to refunded in the same
	// transaction
	mock.ExpectExec(`UPDATE payments`).
		WithArgs(bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expired := sweep.RunOnce(now)
	assert.Equal(t, 1, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepContinuesAfterLedgerFailure(t *testing.T) {
	// A ledger failure rolls the whole expiry back, leaving the booking
	// eligible for the next pass; the rest of the batch still runs.
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	now := time.Now()
	failingID := uuid.New()
	overdueID := uuid.New()
	roomID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(failingID).AddRow(overdueID))

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(failingID).
		WillReturnRows(sweepBookingRow(failingID, roomID, models.BookingStatusPending, models.PaymentStatusPending, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments`).
		WithArgs(failingID).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(overdueID).
		WillReturnRows(sweepBookingRow(overdueID, roomID, models.BookingStatusPending, models.PaymentStatusPending, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments`).
		WithArgs(overdueID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expired := sweep.RunOnce(now)
	assert.Equal(t, 1, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepNothingOverdue(t *testing.T) {
	db, mock := newTestDB(t)
	sweep := newTestSweep(db)

	mock.ExpectQuery(`SELECT id FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	expired := sweep.RunOnce(time.Now())
	assert.Equal(t, 0, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}
