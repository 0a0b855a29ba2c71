package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/config"
	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// BookingService orchestrates the booking lifecycle. Input validation
// and view normalization happen here; the state transitions themselves
// run as single transactions inside the booking repository, so a failure
// at any step leaves no observable change.
type BookingService struct {
	bookings *database.BookingRepository
	queries  *database.BookingQueryRepository
	payments *database.PaymentRepository
	config   *config.Config
	logger   *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings *database.BookingRepository,
	queries *database.BookingQueryRepository,
	payments *database.PaymentRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		queries:  queries,
		payments: payments,
		config:   cfg,
		logger:   logger,
	}
}

// CreateBooking validates the request, reserves beds and creates the
// booking in payment_pending. A payments ledger row is written
// best-effort after the booking commits; a ledger failure is logged and
// does not undo the reservation.
func (s *BookingService) CreateBooking(customerID uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	// 1. Validate input before touching the database
	start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}

	pgID, err := uuid.Parse(req.PGID)
	if err != nil {
		return nil, models.NewInvalid("pg_id is not a valid id")
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, models.NewInvalid("room_id is not a valid id")
	}

	// 2. Reserve beds and insert the booking atomically
	booking, err := s.bookings.Create(database.CreateBookingParams{
		CustomerID:   customerID,
		PGID:         pgID,
		RoomID:       roomID,
		BookingType:  models.BookingType(req.BookingType),
		StartDate:    start,
		EndDate:      end,
		BedsBooked:   req.BedsBooked,
		CustomerUpi:  req.CustomerUpi,
		ExpiryWindow: s.config.Booking.ExpiryWindow,
	})
	if err != nil {
		return nil, err
	}

	// 3. Write the payments ledger row, best-effort
	if _, err := s.payments.CreateForBooking(booking.ID, booking.TotalAmount); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Failed to write payment record for new booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"booking_ref":  booking.BookingReference,
		"customer_id":  customerID,
		"room_id":      roomID,
		"beds_booked":  booking.BedsBooked,
		"total_amount": booking.TotalAmount,
	}).Info("Booking created")

	return booking, nil
}

// SubmitPayment attaches the customer's payment evidence
func (s *BookingService) SubmitPayment(bookingID, customerID uuid.UUID, req *models.SubmitPaymentRequest) (*models.Booking, error) {
	booking, err := s.bookings.SubmitPayment(bookingID, customerID, req.PaymentReference, req.EvidenceRef)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"customer_id": customerID,
	}).Info("Payment evidence submitted")

	return booking, nil
}

// Accept finalizes a paid booking on behalf of the PG owner
func (s *BookingService) Accept(bookingID, ownerUserID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.Accept(bookingID, ownerUserID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"owner_id":   ownerUserID,
	}).Info("Booking accepted")

	return booking, nil
}

// Reject parks the booking in refund_pending with the owner's reason
func (s *BookingService) Reject(bookingID, ownerUserID uuid.UUID, req *models.RejectBookingRequest) (*models.Booking, error) {
	if req.Reason == "" {
		return nil, models.NewInvalid("a rejection reason is required")
	}

	booking, err := s.bookings.Reject(bookingID, ownerUserID, req.Reason)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"owner_id":   ownerUserID,
	}).Info("Booking rejected, awaiting refund evidence")

	return booking, nil
}

// ConfirmRefund closes a rejection with evidence and releases the beds
func (s *BookingService) ConfirmRefund(bookingID, ownerUserID uuid.UUID, req *models.ConfirmRefundRequest) (*models.Booking, error) {
	if req.EvidenceRef == "" {
		return nil, models.NewInvalid("refund evidence is required")
	}

	booking, err := s.bookings.ConfirmRefund(bookingID, ownerUserID, req.EvidenceRef)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"owner_id":   ownerUserID,
	}).Info("Refund confirmed, booking closed as rejected")

	return booking, nil
}

// Cancel lets the customer withdraw a booking still awaiting payment
func (s *BookingService) Cancel(bookingID, customerID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.Cancel(bookingID, customerID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"customer_id": customerID,
	}).Info("Booking cancelled by customer")

	return booking, nil
}

// GetCustomerBookings lists the customer's bookings, newest first. The
// raw filter is normalized once here; an unknown value is rejected
// rather than silently ignored.
func (s *BookingService) GetCustomerBookings(customerID uuid.UUID, rawStatus string) ([]*models.BookingView, error) {
	var status *models.BookingStatus
	if rawStatus != "" {
		normalized, err := models.NormalizeStatusFilter(rawStatus)
		if err != nil {
			return nil, err
		}
		status = &normalized
	}

	return s.queries.ListByCustomer(customerID, status)
}

// GetOwnerQueue lists one bucket of the owner's booking queue
func (s *BookingService) GetOwnerQueue(ownerUserID uuid.UUID, rawBucket string) ([]*models.BookingView, error) {
	bucket, err := models.NormalizeOwnerBucket(rawBucket)
	if err != nil {
		return nil, err
	}

	return s.queries.ListByOwner(ownerUserID, bucket)
}

// GetCustomerBooking returns one booking, guarded to its customer
func (s *BookingService) GetCustomerBooking(bookingID, customerID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, models.NewNotFound("booking not found")
	}
	if booking.CustomerID != customerID {
		return nil, models.NewForbidden("booking belongs to another customer")
	}
	return booking, nil
}
