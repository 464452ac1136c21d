package routes

import (
	"net/http"

	"github.com/templui/goalcoach/internal/app"
	"github.com/templui/goalcoach/internal/handler"
	"github.com/templui/goalcoach/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	profile := handler.NewProfileHandler(app.ProfileService)
	goal := handler.NewGoalHandler(app.GoalService, app.ProfileService, app.MessageService, app.ExportService)
	chat := handler.NewChatHandler(app.ChatService, app.ConfirmService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireAPIAuth(profile.Get))
	mux.HandleFunc("PATCH /api/profile", middleware.RequireAPIAuth(profile.Update))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAPIAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAPIAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAPIAuth(goal.Get))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAPIAuth(goal.Delete))
	mux.HandleFunc("GET /api/goals/{id}/days", middleware.RequireAPIAuth(goal.Days))
	mux.HandleFunc("PATCH /api/goals/{id}/days/{date}", middleware.RequireAPIAuth(goal.UpdateDay))
	mux.HandleFunc("GET /api/goals/{id}/messages", middleware.RequireAPIAuth(goal.Messages))
	mux.HandleFunc("GET /api/goals/{id}/export", middleware.RequireAPIAuth(goal.Export))

	// Chat (rate limited per user)
	chatLimiter := middleware.RateLimitChat(app.Cfg.ChatRateLimit, app.Cfg.ChatRateWindow)
	mux.HandleFunc("POST /api/chat", middleware.RequireAPIAuth(chatLimiter(chat.Chat)))
	mux.HandleFunc("POST /api/confirm-intent", middleware.RequireAPIAuth(chat.Confirm))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by CSRF for the cookie Secure flag)
		middleware.AuthMiddleware(app.AuthService, app.ProfileService),
		middleware.RequestLogging,  // After auth so the user ID is logged
		middleware.CSRFProtection,  // After auth so bearer requests can be recognized
	)

	return handler
}
