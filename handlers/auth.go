package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rajangupta9/taskflow/middleware"
	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/repository"
	"github.com/Rajangupta9/taskflow/utils"
)

const minPasswordLen = 4

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := decode(w, r, &req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < minPasswordLen {
		utils.ResponseWithError(w, http.StatusBadRequest, "username and password (>=4 chars) required")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    h.now(),
	}
	if err := h.Repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			utils.ResponseWithError(w, http.StatusConflict, "username already exists")
			return
		}
		storageError(w, err, "user")
		return
	}

	utils.ResponseWithJson(w, http.StatusCreated, map[string]string{
		"message":  "created",
		"username": user.Username,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := decode(w, r, &req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.Repo.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, repository.ErrNotFound) {
		utils.ResponseWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	} else if err != nil {
		storageError(w, err, "user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.ResponseWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, _, err := h.JWT.GenerateJwt(user.ID, user.Username)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.ResponseWithJson(w, http.StatusOK, LoginResponse{Token: token, Username: user.Username})
}

// Logout revokes the presented token for the rest of its lifetime.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid Token")
		return
	}
	if h.Revoked != nil && claims.ExpiresAt != nil {
		if err := h.Revoked.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token", "error", err)
			utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to end session")
			return
		}
	}
	utils.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "logged out"})
}
