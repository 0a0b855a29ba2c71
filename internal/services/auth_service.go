package services

import (
	"crypto/sha256"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/utils"
	"github.com/pgstays/pg-booking-backend/pkg/jwt"
	"github.com/pgstays/pg-booking-backend/pkg/validator"
)

// AuthService implements phone-based login. A login upserts the user
// for its (phone, role) pair, ensures the owner profile row for owners,
// and issues an access/refresh token pair. Refresh tokens are stored
// bcrypt-hashed per device session.
type AuthService struct {
	users      *database.UserRepository
	owners     *database.OwnerRepository
	sessions   *database.SessionRepository
	jwtService *jwt.Service
	phones     *validator.PhoneValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users *database.UserRepository,
	owners *database.OwnerRepository,
	sessions *database.SessionRepository,
	jwtService *jwt.Service,
	phones *validator.PhoneValidator,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		owners:     owners,
		sessions:   sessions,
		jwtService: jwtService,
		phones:     phones,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login finds or creates the account for the phone/role pair and issues
// a token pair tied to a new device session.
func (s *AuthService) Login(req *models.LoginRequest, device utils.DeviceInfo, ipAddress string) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	phone, err := s.phones.Validate(req.Phone)
	if err != nil {
		return nil, models.NewInvalid("invalid phone number: %v", err)
	}

	user, err := s.users.UpsertByPhone(phone, req.Role, req.Name, strings.ToLower(req.Gender))
	if err != nil {
		return nil, err
	}

	// Owners get a profile row on first login; the UPI handle is filled
	// in later from the profile screen.
	if user.Role == models.RoleOwner {
		if _, err := s.owners.EnsureForUser(user.ID, phone); err != nil {
			return nil, err
		}
	}

	resp, err := s.issueTokens(user, device, ipAddress)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"role":        user.Role,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"ip":          ipAddress,
	}).Info("User logged in")

	return resp, nil
}

// Refresh rotates the token pair. The presented refresh token must
// match the bcrypt hash of an active session; the matched session is
// revoked and replaced.
func (s *AuthService) Refresh(refreshToken string, device utils.DeviceInfo, ipAddress string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, models.NewForbidden("invalid refresh token")
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFound("user not found")
	}

	sessions, err := s.sessions.GetActiveByUser(user.ID)
	if err != nil {
		return nil, err
	}

	digest := tokenDigest(refreshToken)
	var matched *models.UserSession
	for _, session := range sessions {
		if bcrypt.CompareHashAndPassword([]byte(session.RefreshTokenHash), digest) == nil {
			matched = session
			break
		}
	}
	if matched == nil {
		return nil, models.NewForbidden("refresh token does not match an active session")
	}

	if err := s.sessions.Revoke(matched.ID); err != nil {
		return nil, err
	}

	return s.issueTokens(user, device, ipAddress)
}

// Logout revokes all of the user's active sessions
func (s *AuthService) Logout(userID uuid.UUID) error {
	if err := s.sessions.RevokeAllForUser(userID); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("User logged out")
	return nil
}

// tokenDigest pre-hashes the token so it fits bcrypt's 72-byte input limit.
func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func (s *AuthService) issueTokens(user *models.User, device utils.DeviceInfo, ipAddress string) (*models.AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Phone, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Phone, string(user.Role))
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(tokenDigest(refreshToken), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	session := &models.UserSession{
		UserID:           user.ID,
		RefreshTokenHash: string(hash),
		DeviceType:       models.NullString{NullString: sql.NullString{String: device.DeviceType, Valid: device.DeviceType != ""}},
		DeviceOS:         models.NullString{NullString: sql.NullString{String: device.OS, Valid: device.OS != ""}},
		IPAddress:        models.NullString{NullString: sql.NullString{String: ipAddress, Valid: ipAddress != ""}},
		ExpiresAt:        time.Now().Add(s.jwtService.RefreshTokenExpiry()),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
	}, nil
}
