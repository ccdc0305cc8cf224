package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/courseloft/api/services"
	"github.com/courseloft/api/utils/cache"
)

// CronManager manages all scheduled background jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	email *services.EmailService
	cache *cache.RedisCache
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, email *services.EmailService, redisCache *cache.RedisCache) *CronManager {
	return &CronManager{
		cron:  cron.New(),
		db:    db,
		email: email,
		cache: redisCache,
	}
}

// Start registers and starts all jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	// Hourly: abandon pending payments the buyer walked away from
	if _, err := m.cron.AddFunc("17 * * * *", m.SweepStalePayments); err != nil {
		return err
	}

	// Hourly: drop expired token blacklist entries
	if _, err := m.cron.AddFunc("43 * * * *", m.CleanupBlacklist); err != nil {
		return err
	}

	// Daily at 09:00: remind users whose course access lapses within a week
	if _, err := m.cron.AddFunc("0 9 * * *", m.SendExpiryReminders); err != nil {
		return err
	}

	m.cron.Start()
	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}
