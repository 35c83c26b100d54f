package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/middleware"
)

// Routes wires every endpoint under /api.
func (h *Handler) Routes(cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	auth := &middleware.Authenticator{JWT: h.JWT, Revoked: h.Revoked}
	limit := middleware.NewRateLimiter(cfg.AuthRPS, cfg.AuthBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("POST /api/auth/register", limit.Middleware(h.Register))
	mux.HandleFunc("POST /api/auth/login", limit.Middleware(h.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Middleware(h.Logout))

	mux.HandleFunc("GET /api/tasks", auth.Middleware(h.ListAllTask))
	mux.HandleFunc("POST /api/tasks", auth.Middleware(h.CreateTask))
	mux.HandleFunc("POST /api/tasks/generate", auth.Middleware(h.GenerateTasks))
	mux.HandleFunc("GET /api/tasks/{id}", auth.Middleware(h.GetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", auth.Middleware(h.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", auth.Middleware(h.DeleteTask))

	mux.HandleFunc("GET /api/analytics", auth.Middleware(h.Analytics))

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return middleware.Logging(logger, middleware.CORS(origin, mux))
}
