package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstays/pg-booking-backend/internal/models"
)

var bookingViewCols = append(append([]string{}, bookingCols...),
	"pg_name", "pg_area", "room_type", "customer_name", "customer_phone")

func bookingViewRow(b *models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows(bookingViewCols).AddRow(
		b.ID, b.BookingReference, b.CustomerID, b.PGID, b.RoomID, b.BookingType,
		nil, nil, b.BedsBooked,
		b.RentAmount, b.DepositAmount, b.PlatformFee, b.TotalAmount,
		b.Status, b.PaymentStatus, b.CustomerUpi, b.OwnerUpi,
		nil, nil, nil, nil,
		b.CreatedAt, nil, b.ExpiresAt,
		"Sunrise PG", "Koramangala", "2-sharing", "Asha", "9876543210",
	)
}

func TestListByCustomer(t *testing.T) {
	customerID := uuid.New()

	t.Run("All Statuses", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		b := testBooking(models.BookingStatusPending, models.PaymentStatusSubmitted)
		b.CustomerID = customerID

		mock.ExpectQuery(`FROM bookings b`).
			WithArgs(customerID).
			WillReturnRows(bookingViewRow(b))

		views, err := repo.ListByCustomer(customerID, nil)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Sunrise PG", views[0].PGName)
		assert.Equal(t, "Koramangala", views[0].PGArea)
		assert.Equal(t, models.PaymentStatusSubmitted, views[0].PaymentStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("With Status Filter", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		status := models.BookingStatusAccepted
		mock.ExpectQuery(`AND b\.status = \$2`).
			WithArgs(customerID, status).
			WillReturnRows(sqlmock.NewRows(bookingViewCols))

		views, err := repo.ListByCustomer(customerID, &status)
		require.NoError(t, err)
		assert.Empty(t, views)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByOwner(t *testing.T) {
	ownerUserID := uuid.New()

	t.Run("Pending Bucket Targets Actionable States", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		b := testBooking(models.BookingStatusPending, models.PaymentRefundPending)

		mock.ExpectQuery(`payment_status IN \('payment_submitted', 'refund_pending'\)`).
			WithArgs(ownerUserID).
			WillReturnRows(bookingViewRow(b))

		views, err := repo.ListByOwner(ownerUserID, models.BucketPending)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, models.PaymentRefundPending, views[0].PaymentStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Accepted Bucket", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		mock.ExpectQuery(`b\.status = 'accepted'`).
			WithArgs(ownerUserID).
			WillReturnRows(sqlmock.NewRows(bookingViewCols))

		views, err := repo.ListByOwner(ownerUserID, models.BucketAccepted)
		require.NoError(t, err)
		assert.Empty(t, views)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected Bucket Includes Closed History", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		mock.ExpectQuery(`b\.status IN \('rejected', 'cancelled', 'expired'\)`).
			WithArgs(ownerUserID).
			WillReturnRows(sqlmock.NewRows(bookingViewCols))

		_, err := repo.ListByOwner(ownerUserID, models.BucketRejected)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Bucket", func(t *testing.T) {
		db, _ := newTestDB(t)
		repo := NewBookingQueryRepository(db)

		_, err := repo.ListByOwner(ownerUserID, models.OwnerQueueBucket("archived"))
		require.Error(t, err)
		assert.Equal(t, models.ErrInvalid, models.KindOf(err))
	})
}

func TestListByCustomerOrdering(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingQueryRepository(db)

	customerID := uuid.New()
	older := testBooking(models.BookingStatusCancelled, models.PaymentStatusPending)
	older.CreatedAt = time.Now().Add(-48 * time.Hour)
	newer := testBooking(models.BookingStatusPending, models.PaymentStatusPending)

	rows := bookingViewRow(newer)
	rows.AddRow(
		older.ID, older.BookingReference, older.CustomerID, older.PGID, older.RoomID, older.BookingType,
		nil, nil, older.BedsBooked,
		older.RentAmount, older.DepositAmount, older.PlatformFee, older.TotalAmount,
		older.Status, older.PaymentStatus, older.CustomerUpi, older.OwnerUpi,
		nil, nil, nil, nil,
		older.CreatedAt, nil, older.ExpiresAt,
		"Sunrise PG", "Koramangala", "2-sharing", "Asha", "9876543210",
	)

	mock.ExpectQuery(`ORDER BY b\.created_at DESC`).
		WithArgs(customerID).
		WillReturnRows(rows)

	views, err := repo.ListByCustomer(customerID, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].CreatedAt.After(views[1].CreatedAt))
}
