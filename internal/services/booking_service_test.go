package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstays/pg-booking-backend/internal/config"
	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

func newTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestBookingService(db *sqlx.DB) *BookingService {
	logger := quietLogger()
	rooms := database.NewRoomRepository(db)
	payments := database.NewPaymentRepository(db, logger)
	bookings := database.NewBookingRepository(db, rooms, payments, logger)
	queries := database.NewBookingQueryRepository(db)

	cfg := &config.Config{}
	cfg.Booking.ExpiryWindow = 24 * time.Hour
	return NewBookingService(bookings, queries, payments, cfg, logger)
}

func TestCreateBookingValidation(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)
	customerID := uuid.New()

	tests := []struct {
		name string
		req  models.CreateBookingRequest
	}{
		{
			name: "Unknown Booking Type",
			req: models.CreateBookingRequest{
				PGID:        uuid.New().String(),
				RoomID:      uuid.New().String(),
				BookingType: "weekly",
				BedsBooked:  1,
				CustomerUpi: "customer@upi",
			},
		},
		{
			name: "Fixed Booking Without Dates",
			req: models.CreateBookingRequest{
				PGID:        uuid.New().String(),
				RoomID:      uuid.New().String(),
				BookingType: string(models.BookingTypeFixed),
				BedsBooked:  1,
				CustomerUpi: "customer@upi",
			},
		},
		{
			name: "Malformed PG ID",
			req: models.CreateBookingRequest{
				PGID:        "not-a-uuid",
				RoomID:      uuid.New().String(),
				BookingType: string(models.BookingTypeUnlimited),
				BedsBooked:  1,
				CustomerUpi: "customer@upi",
			},
		},
		{
			name: "Malformed Room ID",
			req: models.CreateBookingRequest{
				PGID:        uuid.New().String(),
				RoomID:      "not-a-uuid",
				BookingType: string(models.BookingTypeUnlimited),
				BedsBooked:  1,
				CustomerUpi: "customer@upi",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, err := svc.CreateBooking(customerID, &tt.req)
			assert.Nil(t, booking)
			assert.True(t, models.IsKind(err, models.ErrInvalid), "expected invalid, got: %v", err)
		})
	}

	// Validation failures never touch the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingWritesPaymentLedger(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	customerID := uuid.New()
	pgID := uuid.New()
	roomID := uuid.New()

	req := &models.CreateBookingRequest{
		PGID:        pgID.String(),
		RoomID:      roomID.String(),
		BookingType: string(models.BookingTypeUnlimited),
		BedsBooked:  1,
		CustomerUpi: "customer@upi",
	}

	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.owner_id`).
		WithArgs(pgID).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "owner_upi"}).AddRow(uuid.New(), "owner@upi"))
	mock.ExpectQuery(`FROM rooms`).
		WithArgs(roomID, pgID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "pg_id", "room_type", "rent_monthly", "total_beds", "available_beds", "created_at", "updated_at",
		}).AddRow(roomID, pgID, "2-sharing", 8000.0, 4, 3, now, now))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Ledger row, written after the booking commits
	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := svc.CreateBooking(customerID, req)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, 9299.0, booking.TotalAmount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingSurvivesLedgerFailure(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	customerID := uuid.New()
	pgID := uuid.New()
	roomID := uuid.New()

	req := &models.CreateBookingRequest{
		PGID:        pgID.String(),
		RoomID:      roomID.String(),
		BookingType: string(models.BookingTypeUnlimited),
		BedsBooked:  1,
		CustomerUpi: "customer@upi",
	}

	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.owner_id`).
		WithArgs(pgID).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "owner_upi"}).AddRow(uuid.New(), "owner@upi"))
	mock.ExpectQuery(`FROM rooms`).
		WithArgs(roomID, pgID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "pg_id", "room_type", "rent_monthly", "total_beds", "available_beds", "created_at", "updated_at",
		}).AddRow(roomID, pgID, "2-sharing", 8000.0, 4, 3, now, now))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms`).
		WithArgs(roomID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(assert.AnError)

	// The reservation already committed; the ledger failure is only logged
	booking, err := svc.CreateBooking(customerID, req)
	require.NoError(t, err)
	require.NotNil(t, booking)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRequiresReason(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	booking, err := svc.Reject(uuid.New(), uuid.New(), &models.RejectBookingRequest{})
	assert.Nil(t, booking)
	assert.True(t, models.IsKind(err, models.ErrInvalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRefundRequiresEvidence(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	booking, err := svc.ConfirmRefund(uuid.New(), uuid.New(), &models.ConfirmRefundRequest{})
	assert.Nil(t, booking)
	assert.True(t, models.IsKind(err, models.ErrInvalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerBookingsRejectsUnknownFilter(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	views, err := svc.GetCustomerBookings(uuid.New(), "archived")
	assert.Nil(t, views)
	assert.True(t, models.IsKind(err, models.ErrInvalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOwnerQueueRejectsUnknownBucket(t *testing.T) {
	db, mock := newTestDB(t)
	svc := newTestBookingService(db)

	views, err := svc.GetOwnerQueue(uuid.New(), "archived")
	assert.Nil(t, views)
	assert.True(t, models.IsKind(err, models.ErrInvalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerBookingAuthorization(t *testing.T) {
	bookingID := uuid.New()
	customerID := uuid.New()

	bookingCols := []string{
		"id", "booking_reference", "customer_id", "pg_id", "room_id", "booking_type",
		"start_date", "end_date", "beds_booked",
		"rent_amount", "deposit_amount", "platform_fee", "total_amount",
		"status", "payment_status", "customer_upi", "owner_upi",
		"payment_reference", "payment_evidence", "refund_evidence", "owner_reason",
		"created_at", "decision_at", "expires_at",
	}

	row := func(owner uuid.UUID) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows(bookingCols).AddRow(
			bookingID, "PG-20260829-ABC123", owner, uuid.New(), uuid.New(), models.BookingTypeUnlimited,
			nil, nil, 1,
			8000.0, 1000.0, 299.0, 9299.0,
			models.BookingStatusPending, models.PaymentStatusPending, "customer@upi", "owner@upi",
			nil, nil, nil, nil,
			now, nil, now.Add(24*time.Hour),
		)
	}

	t.Run("Own Booking", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc := newTestBookingService(db)

		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(bookingID).
			WillReturnRows(row(customerID))

		booking, err := svc.GetCustomerBooking(bookingID, customerID)
		require.NoError(t, err)
		assert.Equal(t, bookingID, booking.ID)
	})

	t.Run("Someone Else's Booking", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc := newTestBookingService(db)

		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(bookingID).
			WillReturnRows(row(uuid.New()))

		booking, err := svc.GetCustomerBooking(bookingID, customerID)
		assert.Nil(t, booking)
		assert.True(t, models.IsKind(err, models.ErrForbidden))
	})

	t.Run("Missing Booking", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc := newTestBookingService(db)

		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingCols))

		booking, err := svc.GetCustomerBooking(bookingID, customerID)
		assert.Nil(t, booking)
		assert.True(t, models.IsKind(err, models.ErrNotFound))
	})
}
