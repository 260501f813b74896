package routes

import (
	"time"

	"bloodbank-api/internal/adapters/http/handlers"
	"bloodbank-api/internal/adapters/http/middleware"
	"bloodbank-api/internal/config"
	"bloodbank-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Services bundles what the handlers are built from
type Services struct {
	Auth      *services.AuthService
	User      *services.UserService
	Inventory *services.InventoryService
	Donor     *services.DonorService
	Request   *services.HospitalRequestService
	Dashboard *services.DashboardService

	// Store and Cache are reported by /health; Cache may be nil
	Store handlers.Pinger
	Cache handlers.Pinger
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc *Services) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, svc.Store, svc.Cache)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.User)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	donorHandler := handlers.NewDonorHandler(svc.Donor)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory)
	requestHandler := handlers.NewRequestHandler(svc.Request)
	referenceHandler := handlers.NewReferenceHandler()

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// API Info
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Everything below requires a signed-in user
	auth := middleware.AuthMiddleware(cfg)

	// Reference data (all roles)
	apiV1.Get("/reference", auth, middleware.ReferenceDataCache(), referenceHandler.GetReference)

	// Dashboard (all roles)
	apiV1.Get("/dashboard", auth, middleware.PrivateCacheHeaders(15*time.Second), dashboardHandler.GetDashboard)

	// Profile routes (all roles)
	profileRoutes := apiV1.Group("/profile", auth)
	setupProfileRoutes(profileRoutes, userHandler)

	// Donor routes (admin + hospital)
	donorRoutes := apiV1.Group("/donors", auth, middleware.StaffOnly())
	setupDonorRoutes(donorRoutes, donorHandler)

	// Inventory routes (admin + hospital)
	inventoryRoutes := apiV1.Group("/inventory", auth, middleware.StaffOnly())
	setupInventoryRoutes(inventoryRoutes, inventoryHandler)

	// Hospital request routes (admin + hospital)
	requestRoutes := apiV1.Group("/requests", auth, middleware.StaffOnly())
	setupRequestRoutes(requestRoutes, requestHandler)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users", auth, middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", middleware.StrictRateLimiter(), handler.ChangePassword)
}

// setupDonorRoutes configures donor routes
func setupDonorRoutes(router fiber.Router, handler *handlers.DonorHandler) {
	router.Get("/", handler.ListDonors)
	router.Post("/", handler.CreateDonor)
	router.Get("/:id", handler.GetDonor)
	router.Put("/:id", handler.UpdateDonor)
	router.Post("/:id/donations", handler.RecordDonation)
}

// setupInventoryRoutes configures inventory routes. Static paths come before /:id.
func setupInventoryRoutes(router fiber.Router, handler *handlers.InventoryHandler) {
	router.Get("/", handler.ListLots)
	router.Post("/", handler.Intake)
	router.Get("/stats", middleware.NoCacheHeaders(), handler.Stats)
	router.Get("/export", handler.Export)
	router.Post("/allocate", handler.Allocate)
	router.Get("/transactions", handler.ListTransactions)
	router.Post("/transactions", handler.RecordTransaction)
	router.Get("/types/:bloodType", handler.ListByBloodType)
	router.Get("/:id", handler.GetLot)
	router.Patch("/:id", handler.UpdateLot)
}

// setupRequestRoutes configures hospital request routes
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler) {
	router.Get("/", handler.ListRequests)
	router.Post("/", handler.CreateRequest)
	router.Get("/:id", handler.GetRequest)
	router.Post("/:id/approve", handler.Approve)
	router.Post("/:id/reject", handler.Reject)
	router.Post("/:id/complete", handler.Complete)
	router.Patch("/:id/status", handler.SetStatus)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
}
