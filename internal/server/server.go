// Package server contains the HTTP handlers and routing for the bootcamp
// directory API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "campdir/docs" // swagger docs
	"campdir/internal/cache"
	"campdir/internal/config"
	"campdir/internal/database"
	"campdir/internal/geo"
	"campdir/internal/mailer"
	"campdir/internal/middleware"
	"campdir/internal/models"
	"campdir/internal/repository"
	"campdir/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
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
	userRepo       repository.UserRepository
	bootcampRepo   repository.BootcampRepository
	courseRepo     repository.CourseRepository
	reviewRepo     repository.ReviewRepository
	geocoder       geo.Geocoder
	mailer         mailer.Mailer
	photoStore     *service.PhotoStore

	bootcampService *service.BootcampService
	courseService   *service.CourseService
	reviewService   *service.ReviewService
	userService     *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	geocoder := geo.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey)

	return NewServerWithDeps(cfg, db, redisClient, geocoder, mailer.FromConfig(cfg))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, geocoder geo.Geocoder, m mailer.Mailer) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	bootcampRepo := repository.NewBootcampRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	prom := middleware.InitMetrics("campdir-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		bootcampRepo:   bootcampRepo,
		courseRepo:     courseRepo,
		reviewRepo:     reviewRepo,
		geocoder:       geocoder,
		mailer:         m,
		photoStore:     service.NewPhotoStore(cfg.FileUploadDir, cfg.MaxFileUploadMB),
	}
	server.bootcampService = service.NewBootcampService(bootcampRepo, geocoder)
	server.courseService = service.NewCourseService(courseRepo, bootcampRepo)
	server.reviewService = service.NewReviewService(reviewRepo, bootcampRepo)
	server.userService = service.NewUserService(userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Success: false,
				Error:   "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CampDir Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/logout", s.Logout)
	auth.Post("/forgotpassword", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	auth.Put("/resetpassword/:resettoken", s.ResetPassword)
	auth.Get("/me", s.AuthRequired(), s.GetMe)
	auth.Put("/updatedetails", s.AuthRequired(), s.UpdateDetails)
	auth.Put("/updatepassword", s.AuthRequired(), s.UpdatePassword)

	// Public bootcamp routes
	bootcamps := api.Group("/bootcamps")
	bootcamps.Get("/", s.GetBootcamps)
	bootcamps.Get("/radius/:zipcode/:distance", s.GetBootcampsInRadius)
	// Nested collection reads before the generic /:id route
	bootcamps.Get("/:bootcampId/courses", s.GetCourses)
	bootcamps.Get("/:bootcampId/reviews", s.GetReviews)
	bootcamps.Get("/:id", s.GetBootcamp)

	// Bootcamp write routes
	bootcamps.Post("/", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.CreateBootcamp)
	bootcamps.Put("/:id/photo", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.UploadBootcampPhoto)
	bootcamps.Put("/:id", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.UpdateBootcamp)
	bootcamps.Delete("/:id", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.DeleteBootcamp)
	bootcamps.Post("/:bootcampId/courses", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.CreateCourse)
	bootcamps.Post("/:bootcampId/reviews", s.AuthRequired(), s.RoleRequired(models.RoleUser, models.RoleAdmin), s.CreateReview)

	// Course routes
	courses := api.Group("/courses")
	courses.Get("/", s.GetCourses)
	courses.Get("/:id", s.GetCourse)
	courses.Put("/:id", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.UpdateCourse)
	courses.Delete("/:id", s.AuthRequired(), s.RoleRequired(models.RolePublisher, models.RoleAdmin), s.DeleteCourse)

	// Review routes
	reviews := api.Group("/reviews")
	reviews.Get("/", s.GetReviews)
	reviews.Get("/:id", s.GetReview)
	reviews.Put("/:id", s.AuthRequired(), s.UpdateReview)
	reviews.Delete("/:id", s.AuthRequired(), s.DeleteReview)

	// Admin user management
	users := api.Group("/users", s.AuthRequired(), s.RoleRequired(models.RoleAdmin))
	users.Get("/", s.GetUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. The token comes from
// the Authorization header or, failing that, the auth cookie.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Cookies("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "campdir-api" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "campdir-client" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		// Check JTI for revocation (logout)
		if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
			isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && isBlacklisted > 0 {
				return models.RespondWithError(c,
					models.NewUnauthorizedError("Not authorized to access this route"))
			}
		}

		// Tokens survive user deletion; resolve the principal fresh.
		user, err := s.userRepo.GetByID(c.Context(), uint(userID))
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RoleRequired returns middleware that rejects principals outside the given
// roles with 403. Must be placed after AuthRequired.
func (s *Server) RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return models.RespondWithError(c, models.NewForbiddenError(
			fmt.Sprintf("User role '%s' is not authorized to access this route", user.Role)))
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "CampDir API",
		BodyLimit: (s.config.MaxFileUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.NewInternalError(err))
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
