package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// ExpirySweepService finalizes bookings whose decision deadline has
// passed. Each booking is expired in its own transaction, so one bad
// record never blocks the rest of the batch, and a booking that already
// transitioned is a no-op rather than an error. Bookings left unresolved
// by a failed attempt stay eligible for the next pass.
type ExpirySweepService struct {
	bookings  *database.BookingRepository
	logger    *logrus.Logger
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

// NewExpirySweepService creates a new expiry sweep service
func NewExpirySweepService(
	bookings *database.BookingRepository,
	interval time.Duration,
	batchSize int,
	logger *logrus.Logger,
) *ExpirySweepService {
	return &ExpirySweepService{
		bookings:  bookings,
		logger:    logger,
		stopCh:    make(chan struct{}),
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins the background sweep loop
func (s *ExpirySweepService) Start() {
	s.logger.WithField("interval", s.interval.String()).Info("Starting booking expiry sweep")
	go s.run()
}

// Stop stops the background sweep loop
func (s *ExpirySweepService) Stop() {
	s.logger.Info("Stopping booking expiry sweep")
	close(s.stopCh)
}

func (s *ExpirySweepService) run() {
	// Run immediately on start
	s.sweep(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopCh:
			s.logger.Info("Booking expiry sweep stopped")
			return
		}
	}
}

// RunOnce executes a single sweep pass and returns how many bookings
// were expired.
func (s *ExpirySweepService) RunOnce(now time.Time) int {
	return s.sweep(now)
}

func (s *ExpirySweepService) sweep(now time.Time) int {
	ids, err := s.bookings.GetExpiredPendingIDs(now, s.batchSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list overdue bookings")
		return 0
	}

	if len(ids) == 0 {
		return 0
	}

	s.logger.WithField("count", len(ids)).Info("Processing overdue bookings")

	expired := 0
	for _, id := range ids {
		// Expire handles the paid-row refund inside its own transaction,
		// so a booking that raced into accepted keeps its ledger intact.
		if err := s.bookings.Expire(id, now); err != nil {
			if models.IsKind(err, models.ErrInvalidState) {
				// Another actor got there first; nothing to do
				s.logger.WithField("booking_id", id).Debug("Booking no longer expirable, skipping")
				continue
			}
			s.logger.WithError(err).WithField("booking_id", id).Error("Failed to expire booking")
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired": expired,
			"scanned": len(ids),
		}).Info("Expiry sweep pass complete")
	}
	return expired
}
