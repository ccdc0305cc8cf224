package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/courseloft/api/config"
	"github.com/courseloft/api/database"
	"github.com/courseloft/api/handlers"
	admin_handlers "github.com/courseloft/api/handlers/admin"
	auth_handlers "github.com/courseloft/api/handlers/auth"
	content_handlers "github.com/courseloft/api/handlers/content"
	course_handlers "github.com/courseloft/api/handlers/course"
	payment_handlers "github.com/courseloft/api/handlers/payment"
	progress_handlers "github.com/courseloft/api/handlers/progress"
	"github.com/courseloft/api/services"
	"github.com/courseloft/api/services/razorpay"
	"github.com/courseloft/api/services/storage"
	"github.com/courseloft/api/utils/auth"
	"github.com/courseloft/api/utils/cache"
	"github.com/courseloft/api/utils/middleware"
)

// SetupRoutes wires services, middleware and handlers onto the Fiber app
func SetupRoutes(app *fiber.App, store database.Storage, reporting *database.ReportingStore) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "courseloft-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. OTP delivery and brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	var otpStore *cache.OTPStore
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		otpStore = cache.NewOTPStore(redisCache)
	}

	emailService := services.NewEmailService(services.EmailConfig{
		Host:     getEnv.SMTP_HOST,
		Port:     getEnv.SMTP_PORT,
		Username: getEnv.SMTP_USERNAME,
		Password: getEnv.SMTP_PASSWORD,
		From:     getEnv.SMTP_FROM,
		AppURL:   getEnv.APP_URL,
	})

	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:         getEnv.RAZORPAY_KEY_ID,
		KeySecret:     getEnv.RAZORPAY_KEY_SECRET,
		WebhookSecret: getEnv.RAZORPAY_WEBHOOK_SECRET,
	})

	var spaces *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Receipts and videos will be unavailable.", err)
		}
	}

	checkoutService := services.NewCheckoutService(db, gateway, emailService)
	paymentService := services.NewPaymentService(db, gateway, emailService, spaces, jwtManager)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	healthHandler := handlers.NewHealthHandler(db, redisCache)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, otpStore, emailService, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, spaces)
	paymentHandler := payment_handlers.NewPaymentHandler(checkoutService, paymentService, jwtManager)
	progressHandler := progress_handlers.NewProgressHandler(db)
	contentHandler := content_handlers.NewContentHandler(db)
	adminHandler := admin_handlers.NewAdminHandler(db, reporting, spaces)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    getEnv.APP_URL,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	app.Get("/ping", healthHandler.Check)

	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/verify-email", authHandler.VerifyEmail)
	authGroup.Post("/resend-otp", authHandler.ResendOTP)

	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile with purchased library (protected)
	api.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Public catalog; access and playback take an optional session so guests
	// can preview
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.List)
	courses.Get("/:id", courseHandler.Get)
	courses.Get("/:id/access", authMiddleware.Optional(), courseHandler.Access)
	courses.Get("/:id/lessons/:lessonID/play", authMiddleware.Optional(), courseHandler.Play)
	courses.Get("/:id/progress", authMiddleware.Required(), progressHandler.ForCourse)

	// Checkout works for guests and logged-in users alike
	api.Post("/checkout", authMiddleware.Optional(), paymentHandler.Checkout)
	api.Post("/payment/verify", paymentHandler.Verify)
	api.Post("/payment/webhook", paymentHandler.Webhook)

	// Progress tracking (protected)
	api.Post("/progress", authMiddleware.Required(), progressHandler.Update)

	// Public marketing content
	api.Get("/testimonials", contentHandler.Testimonials)
	api.Get("/events", contentHandler.Events)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	adminGroup.Get("/dashboard", adminHandler.Dashboard)

	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Get("/users/:id", adminHandler.GetUser)
	adminGroup.Post("/users/:id/block", adminHandler.BlockUser)
	adminGroup.Post("/users/:id/unblock", adminHandler.UnblockUser)

	adminGroup.Get("/courses", adminHandler.ListCourses)
	adminGroup.Post("/courses", adminHandler.CreateCourse)
	adminGroup.Put("/courses/:id", adminHandler.UpdateCourse)
	adminGroup.Delete("/courses/:id", adminHandler.DeleteCourse)
	adminGroup.Post("/courses/:id/lessons", adminHandler.CreateLesson)
	adminGroup.Put("/lessons/:lessonID", adminHandler.UpdateLesson)
	adminGroup.Delete("/lessons/:lessonID", adminHandler.DeleteLesson)
	adminGroup.Post("/lessons/:lessonID/video", adminHandler.UploadLessonVideo)

	adminGroup.Get("/payments", adminHandler.ListPayments)
	adminGroup.Get("/revenue/courses", adminHandler.CourseRevenue)
	adminGroup.Get("/revenue/monthly", adminHandler.MonthlyRevenue)

	adminGroup.Post("/testimonials", adminHandler.CreateTestimonial)
	adminGroup.Put("/testimonials/:id", adminHandler.UpdateTestimonial)
	adminGroup.Delete("/testimonials/:id", adminHandler.DeleteTestimonial)

	adminGroup.Post("/events", adminHandler.CreateEvent)
	adminGroup.Put("/events/:id", adminHandler.UpdateEvent)
	adminGroup.Delete("/events/:id", adminHandler.DeleteEvent)
}
