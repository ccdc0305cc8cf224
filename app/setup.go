package app

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/courseloft/api/api"
	"github.com/courseloft/api/config"
	"github.com/courseloft/api/database"
	"github.com/courseloft/api/router"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/services/cron"
	"github.com/courseloft/api/utils/cache"
)

// SetupAndRunServer loads config, opens the stores, starts cron jobs and
// serves the API until the process exits.
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run database migrations")
		return err
	}

	reporting, err := database.StartReporting()
	if err != nil {
		return err
	}

	// Cron jobs share the GORM connection but carry their own email and cache
	// clients, so the scheduler keeps working if the router's Redis drops.
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			log.Println("Warning: failed to get database connection for cron jobs")
		} else {
			emailService := services.NewEmailService(services.EmailConfig{
				Host:     getEnv.SMTP_HOST,
				Port:     getEnv.SMTP_PORT,
				Username: getEnv.SMTP_USERNAME,
				Password: getEnv.SMTP_PASSWORD,
				From:     getEnv.SMTP_FROM,
				AppURL:   getEnv.APP_URL,
			})

			redisURL := getEnv.REDIS_URL
			if redisURL == "" {
				redisURL = "redis://localhost:6379/0"
			}
			redisCache, err := cache.NewRedisCache(redisURL)
			if err != nil {
				log.Printf("Warning: cron cache unavailable: %v", err)
			}

			cronManager = cron.NewCronManager(db, emailService, redisCache)
			if err := cronManager.Start(); err != nil {
				log.Printf("Warning: failed to start cron jobs: %v", err)
			}
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		reporting.Close()
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store, reporting)

	return server.Run()
}
