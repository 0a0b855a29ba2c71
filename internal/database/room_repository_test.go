package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstays/pg-booking-backend/internal/models"
)

func TestReserveBedsTx(t *testing.T) {
	roomID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoomRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE rooms`).
			WithArgs(roomID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Beginx()
		require.NoError(t, err)

		err = repo.ReserveBedsTx(tx, roomID, 2)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient Beds", func(t *testing.T) {
		// The guarded WHERE clause touched no rows, so the debit is
		// refused instead of driving available_beds negative.
		db, mock := newTestDB(t)
		repo := NewRoomRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE rooms`).
			WithArgs(roomID, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.Beginx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.ReserveBedsTx(tx, roomID, 5)
		require.Error(t, err)
		assert.Equal(t, models.ErrConflict, models.KindOf(err))
	})
}

func TestReleaseBedsTx(t *testing.T) {
	roomID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoomRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`LEAST\(available_beds \+ \$2, total_beds\)`).
			WithArgs(roomID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Beginx()
		require.NoError(t, err)

		err = repo.ReleaseBedsTx(tx, roomID, 2)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room Missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoomRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE rooms`).
			WithArgs(roomID, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.Beginx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.ReleaseBedsTx(tx, roomID, 2)
		require.Error(t, err)
		assert.Equal(t, models.ErrNotFound, models.KindOf(err))
	})
}

func TestCreateRoom(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRoomRepository(db)

	t.Run("Starts At Full Capacity", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO rooms`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		room := &models.Room{
			PGID:        uuid.New(),
			RoomType:    "2-sharing",
			RentMonthly: 8000,
			TotalBeds:   4,
		}
		err := repo.CreateRoom(room)
		require.NoError(t, err)
		assert.Equal(t, 4, room.AvailableBeds)
		assert.NotEqual(t, uuid.Nil, room.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
