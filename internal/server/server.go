// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "travelbuddy/docs" // swagger docs
	"travelbuddy/internal/cache"
	"travelbuddy/internal/config"
	"travelbuddy/internal/database"
	"travelbuddy/internal/featureflags"
	"travelbuddy/internal/middleware"
	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	store          repository.Store

	authService             *service.AuthService
	accountService          *service.AccountService
	travelerService         *service.TravelerService
	travelPlanService       *service.TravelPlanService
	buddyRequestService     *service.BuddyRequestService
	tripService             *service.TripService
	reviewService           *service.ReviewService
	subscriptionPlanService *service.SubscriptionPlanService
	subscriptionService     *service.SubscriptionService
	dashboardService        *service.DashboardService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	flags := featureflags.NewManager(cfg.FeatureFlags)
	store := repository.NewStore(db, repository.StoreOptions{
		CacheTravelers: redisClient != nil && flags.EnabledGlobally(featureflags.CachedProfiles),
	})

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("travelbuddy-api"),
		featureFlags:   flags,
		store:          store,
	}
	server.wireServices()
	return server, nil
}

func (s *Server) wireServices() {
	tokenTTL := time.Duration(s.config.JWTExpiryHours) * time.Hour
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	checkout := service.RedirectCheckout{
		CheckoutURL: s.config.PaymentCheckoutURL,
		SuccessURL:  s.config.PaymentSuccessURL,
		CancelURL:   s.config.PaymentCancelURL,
		Currency:    s.config.PaymentCurrency,
	}

	s.authService = service.NewAuthService(s.store, s.redis, s.config.JWTSecret, tokenTTL)
	s.accountService = service.NewAccountService(s.store)
	s.travelerService = service.NewTravelerService(s.store)
	s.travelPlanService = service.NewTravelPlanService(s.store)
	s.buddyRequestService = service.NewBuddyRequestService(s.store)
	s.tripService = service.NewTripService(s.store)
	s.reviewService = service.NewReviewService(s.store)
	s.subscriptionPlanService = service.NewSubscriptionPlanService(s.store.SubscriptionPlans())
	s.subscriptionService = service.NewSubscriptionService(s.store, checkout)
	s.dashboardService = service.NewDashboardService(s.store, s.featureFlags)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "TravelBuddy Backend Metrics Dashboard",
	}))

	if !s.config.IsProduction() || s.featureFlags.EnabledGlobally(featureflags.SwaggerUI) {
		api.Get("/swagger/*", swagger.HandlerDefault)
	}

	authRequired := middleware.AuthRequired(s.config.JWTSecret, s.authService)
	adminOnly := middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin)
	superAdminOnly := middleware.RoleRequired(models.RoleSuperAdmin)
	travelerOnly := middleware.RoleRequired(models.RoleTraveler)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authRequired, s.Logout)
	auth.Get("/me", authRequired, s.Me)
	auth.Post("/change-password", authRequired, s.ChangePassword)

	// Payment gateway callbacks are unauthenticated; metadata is checked against stored rows.
	api.Post("/payments/webhook", s.PaymentWebhook)

	// Public browse. Numeric constraints keep these from shadowing /me and /mine.
	api.Get("/subscription-plans", s.GetSubscriptionPlans)
	api.Get("/subscription-plans/:id<int>", s.GetSubscriptionPlan)
	api.Get("/travel-plans", s.GetTravelPlans)
	api.Get("/travel-plans/:id<int>", s.GetTravelPlan)
	api.Get("/travelers", s.GetTravelers)
	api.Get("/travelers/:id<int>/reviews", s.GetTravelerReviews)
	api.Get("/travelers/:id<int>", s.GetTraveler)

	// Everything registered below requires a valid token.
	protected := api.Group("", authRequired)

	// Travelers
	me := protected.Group("/travelers/me", travelerOnly)
	me.Get("/", s.GetMyProfile)
	me.Patch("/", s.UpdateMyProfile)
	me.Get("/dashboard", s.GetTravelerDashboard)
	me.Get("/subscription", s.GetMySubscription)
	me.Get("/reviews/received", s.GetMyReceivedReviews)
	me.Get("/reviews/given", s.GetMyGivenReviews)
	me.Get("/reviews/pending", s.GetPendingReviews)
	me.Get("/trips", s.GetJoinedTrips)

	// Travel plans. Specific routes are registered before /:id.
	plans := protected.Group("/travel-plans", travelerOnly)
	plans.Post("/", s.CreateTravelPlan)
	plans.Get("/mine", s.GetMyTravelPlans)
	plans.Post("/:id/complete", s.CompleteTravelPlan)
	plans.Get("/:id/buddies", s.GetPlanBuddies)
	plans.Get("/:id/requests", s.GetPlanRequests)
	plans.Post("/:id/requests", middleware.RateLimit(s.redis, 10, time.Hour, "buddy_request"), s.SendBuddyRequest)
	plans.Patch("/:id", s.UpdateTravelPlan)
	plans.Delete("/:id", s.DeleteTravelPlan)

	// Buddy requests
	requests := protected.Group("/buddy-requests", travelerOnly)
	requests.Get("/sent", s.GetSentBuddyRequests)
	requests.Get("/received", s.GetReceivedBuddyRequests)
	requests.Patch("/:id/status", s.RespondBuddyRequest)
	requests.Get("/:id", s.GetBuddyRequest)

	// Reviews
	protected.Post("/travel-buddies/:id/reviews", travelerOnly, s.CreateReview)

	// Subscriptions
	protected.Post("/subscriptions", travelerOnly, s.Subscribe)

	// Admin routes
	admin := protected.Group("/admin", adminOnly)
	admin.Get("/dashboard", s.GetAdminDashboard)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Delete("/travelers/:id", s.DeleteTraveler)
	admin.Patch("/users/:id/status", s.SetUserStatus)
	admin.Get("/subscriptions", s.GetActiveSubscriptions)
	admin.Get("/subscriptions/:id", s.GetSubscription)
	admin.Post("/subscriptions/expire", s.ExpireSubscriptions)
	admin.Post("/subscription-plans", s.CreateSubscriptionPlan)
	admin.Patch("/subscription-plans/:id", s.UpdateSubscriptionPlan)
	admin.Delete("/subscription-plans/:id", s.DeleteSubscriptionPlan)
	admin.Get("/admins", superAdminOnly, s.GetAdmins)
	admin.Patch("/users/role", superAdminOnly, s.SetUserRole)
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis backs revocation and rate limits but the API degrades without it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "TravelBuddy",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "TravelBuddy API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
