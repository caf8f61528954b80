package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/studyiovibe/studyio-backend/internal/config"
	"github.com/studyiovibe/studyio-backend/internal/handlers"
	"github.com/studyiovibe/studyio-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	profileHandler *handlers.ProfileHandler,
	healthHandler *handlers.HealthHandler,
	cleanupHandler *handlers.CleanupHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public. Per-IP limit on top of the per-email fixed-window
	// limits enforced inside the OTP/reset services.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleSignIn)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/register/send-otp", authHandler.SendOTP)
	auth.Post("/register/verify-otp", authHandler.VerifyOTP)
	auth.Post("/forgot-password", passwordHandler.ForgotPassword)
	auth.Post("/reset-password", passwordHandler.ResetPassword)
	auth.Patch("/reset-password", passwordHandler.RequestChangeOTP)
	auth.Post("/reset-password/verify-otp", passwordHandler.VerifyChangeOTP)

	// Protected routes (JWT required) - apply middleware per route so the
	// public auth endpoints stay untouched.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)
	api.Patch("/user/profile", middleware.JWTProtected(cfg), profileHandler.Update)

	// Operational sweep, guarded by the shared admin token (cron caller).
	api.Get("/cleanup", middleware.AdminTokenRequired(cfg), cleanupHandler.Sweep)
}
