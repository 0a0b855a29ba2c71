package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron   *cron.Cron
	sweep  *ExpirySweepService
	logger *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(sweep *ExpirySweepService, logger *logrus.Logger) *CronService {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:   c,
		sweep:  sweep,
		logger: logger,
	}
}

// Start registers and starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service")

	// Safety-net sweep at the top of every hour. The expiry sweep's own
	// ticker handles the steady state; this catches a stalled loop.
	// Cron format: second minute hour day month weekday
	_, err := s.cron.AddFunc("0 0 * * * *", s.expirySweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep job: %w", err)
	}
	s.logger.Info("Scheduled: booking expiry sweep (hourly)")

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) expirySweepJob() {
	startTime := time.Now()
	expired := s.sweep.RunOnce(startTime)

	if expired > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired":  expired,
			"duration": time.Since(startTime).String(),
		}).Info("Cron expiry sweep finished")
	}
}
