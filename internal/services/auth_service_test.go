package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/utils"
	"github.com/pgstays/pg-booking-backend/pkg/jwt"
	"github.com/pgstays/pg-booking-backend/pkg/validator"
)

func newTestAuthService(db *sqlx.DB) (*AuthService, *jwt.Service) {
	jwtService := jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)

	svc := NewAuthService(
		database.NewUserRepository(db),
		database.NewOwnerRepository(db),
		database.NewSessionRepository(db),
		jwtService,
		validator.NewPhoneValidator(),
		bcrypt.MinCost,
		quietLogger(),
	)
	return svc, jwtService
}

func userRow(id uuid.UUID, phone string, role models.Role) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "phone", "role", "name", "gender", "created_at", "updated_at"}).
		AddRow(id, phone, string(role), nil, nil, now, now)
}

func TestLogin(t *testing.T) {
	device := utils.DeviceInfo{DeviceType: "mobile", OS: "Android 14"}

	t.Run("Customer Login Creates Session", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, _ := newTestAuthService(db)

		userID := uuid.New()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(userRow(userID, "9876543210", models.RoleCustomer))
		mock.ExpectExec(`INSERT INTO user_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.Login(&models.LoginRequest{
			Phone: "98765 43210",
			Role:  models.RoleCustomer,
		}, device, "203.0.113.9")
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, userID, resp.User.ID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Owner Login Ensures Owner Profile", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, _ := newTestAuthService(db)

		userID := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(userRow(userID, "9876543210", models.RoleOwner))
		mock.ExpectQuery(`INSERT INTO owners`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "phone", "upi_id", "created_at", "updated_at"}).
				AddRow(uuid.New(), userID, "9876543210", nil, now, now))
		mock.ExpectExec(`INSERT INTO user_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.Login(&models.LoginRequest{
			Phone: "+91 9876543210",
			Role:  models.RoleOwner,
		}, device, "203.0.113.9")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.RefreshToken)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Phone", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, _ := newTestAuthService(db)

		resp, err := svc.Login(&models.LoginRequest{
			Phone: "12345",
			Role:  models.RoleCustomer,
		}, device, "203.0.113.9")
		assert.Nil(t, resp)
		assert.True(t, models.IsKind(err, models.ErrInvalid))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Role", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, _ := newTestAuthService(db)

		resp, err := svc.Login(&models.LoginRequest{
			Phone: "9876543210",
			Role:  "admin",
		}, device, "203.0.113.9")
		assert.Nil(t, resp)
		assert.True(t, models.IsKind(err, models.ErrInvalid))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRefresh(t *testing.T) {
	device := utils.DeviceInfo{DeviceType: "mobile", OS: "Android 14"}

	sessionRow := func(sessionID, userID uuid.UUID, hash string) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows([]string{
			"id", "user_id", "refresh_token_hash", "device_type", "device_os", "ip_address",
			"expires_at", "revoked_at", "created_at",
		}).AddRow(sessionID, userID, hash, "mobile", "Android 14", "203.0.113.9", now.Add(24*time.Hour), nil, now)
	}

	t.Run("Rotates Matching Session", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, jwtService := newTestAuthService(db)

		userID := uuid.New()
		sessionID := uuid.New()

		refreshToken, err := jwtService.GenerateRefreshToken(userID, "9876543210", "customer")
		require.NoError(t, err)
		hash, err := bcrypt.GenerateFromPassword(tokenDigest(refreshToken), bcrypt.MinCost)
		require.NoError(t, err)

		mock.ExpectQuery(`FROM users`).
			WithArgs(userID).
			WillReturnRows(userRow(userID, "9876543210", models.RoleCustomer))
		mock.ExpectQuery(`FROM user_sessions`).
			WithArgs(userID).
			WillReturnRows(sessionRow(sessionID, userID, string(hash)))
		mock.ExpectExec(`UPDATE user_sessions SET revoked_at`).
			WithArgs(sessionID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO user_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.Refresh(refreshToken, device, "203.0.113.9")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEqual(t, refreshToken, resp.RefreshToken)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Token Without Session Is Rejected", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, jwtService := newTestAuthService(db)

		userID := uuid.New()

		refreshToken, err := jwtService.GenerateRefreshToken(userID, "9876543210", "customer")
		require.NoError(t, err)

		// An unrelated session whose hash does not match
		otherHash, err := bcrypt.GenerateFromPassword(tokenDigest("some other token"), bcrypt.MinCost)
		require.NoError(t, err)

		mock.ExpectQuery(`FROM users`).
			WithArgs(userID).
			WillReturnRows(userRow(userID, "9876543210", models.RoleCustomer))
		mock.ExpectQuery(`FROM user_sessions`).
			WithArgs(userID).
			WillReturnRows(sessionRow(uuid.New(), userID, string(otherHash)))

		resp, err := svc.Refresh(refreshToken, device, "203.0.113.9")
		assert.Nil(t, resp)
		assert.True(t, models.IsKind(err, models.ErrForbidden))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Garbage Token Is Rejected", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, _ := newTestAuthService(db)

		resp, err := svc.Refresh("not-a-jwt", device, "203.0.113.9")
		assert.Nil(t, resp)
		assert.True(t, models.IsKind(err, models.ErrForbidden))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Access Token Cannot Refresh", func(t *testing.T) {
		db, mock := newTestDB(t)
		svc, jwtService := newTestAuthService(db)

		accessToken, err := jwtService.GenerateAccessToken(uuid.New(), "9876543210", "customer")
		require.NoError(t, err)

		resp, err := svc.Refresh(accessToken, device, "203.0.113.9")
		assert.Nil(t, resp)
		assert.True(t, models.IsKind(err, models.ErrForbidden))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLogout(t *testing.T) {
	db, mock := newTestDB(t)
	svc, _ := newTestAuthService(db)

	userID := uuid.New()
	mock.ExpectExec(`UPDATE user_sessions SET revoked_at`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, svc.Logout(userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
