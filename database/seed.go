package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/courseloft/api/model"
	"github.com/courseloft/api/utils/auth"
)

// RunSeeds populates the database with an admin user and starter catalog data.
// Seeding is idempotent: existing rows are left alone.
func RunSeeds(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedCourses(db); err != nil {
		return err
	}
	if err := seedContent(db); err != nil {
		return err
	}
	return nil
}

// seedAdmin creates the admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
// Skipped when either variable is missing.
func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Admin user %s already exists", email)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         "admin",
		Verified:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", email)
	return nil
}

func seedCourses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	courses := []model.Course{
		{
			Title:       "Data Structures and Algorithms Masterclass",
			Slug:        "dsa-masterclass",
			Description: "From arrays to dynamic programming, with interview problems throughout.",
			AccessType:  model.AccessLifetime,
			Price:       499900, // 4999.00 in minor units
			Currency:    model.CurrencyRupee,
			Published:   true,
			Lessons: []model.Lesson{
				{Title: "Course Introduction", Position: 1, DurationSec: 420, Preview: true},
				{Title: "Arrays and Complexity Analysis", Position: 2, DurationSec: 1860},
				{Title: "Linked Lists", Position: 3, DurationSec: 2100},
			},
		},
		{
			Title:       "System Design Monthly Cohort",
			Slug:        "system-design-cohort",
			Description: "A rolling monthly program covering large-scale system design.",
			AccessType:  model.AccessMonthly,
			Price:       149900,
			Currency:    model.CurrencyRupee,
			Published:   true,
			Lessons: []model.Lesson{
				{Title: "How to Approach Design Interviews", Position: 1, DurationSec: 900, Preview: true},
				{Title: "Load Balancing and Caching", Position: 2, DurationSec: 2400},
			},
		},
		{
			Title:       "Intro to Programming",
			Slug:        "intro-to-programming",
			Description: "A free starter course for absolute beginners.",
			AccessType:  model.AccessFree,
			Price:       0,
			Currency:    model.CurrencyRupee,
			Published:   true,
			Lessons: []model.Lesson{
				{Title: "What is a Program?", Position: 1, DurationSec: 600, Preview: true},
			},
		},
	}

	if err := db.Create(&courses).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d courses", len(courses))
	return nil
}

func seedContent(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Testimonial{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		testimonials := []model.Testimonial{
			{Author: "Priya S.", Role: "MCA Student", Quote: "The DSA course got me through three interview rounds.", Published: true},
			{Author: "Arjun K.", Role: "Working Professional", Quote: "Clear explanations and the monthly cohort keeps me accountable.", Published: true},
		}
		if err := db.Create(&testimonials).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d testimonials", len(testimonials))
	}

	if err := db.Model(&model.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		events := []model.Event{
			{
				Title:       "Live Mock Interview Workshop",
				Description: "Watch live mock interviews with detailed feedback.",
				StartsAt:    time.Now().AddDate(0, 0, 14),
				Location:    "Online",
				Published:   true,
			},
		}
		if err := db.Create(&events).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d events", len(events))
	}

	return nil
}
