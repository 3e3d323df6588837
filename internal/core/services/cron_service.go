package services

import (
	"context"
	"log"

	"plp-rushdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Purge expired refresh tokens nightly at 03:30
	if _, err := s.cron.AddFunc("30 3 * * *", s.purgeExpiredTokens); err != nil {
		log.Printf("❌ Failed to schedule expired token purge: %v", err)
	}

	s.cron.Start()
	log.Println("✅ Cron service started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) purgeExpiredTokens() {
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Expired token purge failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
