package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"kedoo/core/auth"
	"kedoo/logger"
	"kedoo/model"
)

type contextKey string

const userContextKey contextKey = "user"

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] failed to parse request body", logger.ErrorField(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, ok := h.st.UserByEmail(req.Email)
	if !ok || !auth.VerifyPassword(req.Password, user.Password) {
		logger.Warn("[Login] invalid credentials", logger.String("email", req.Email))
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("[Login] login successful", logger.String("email", user.Email))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		http.Error(w, "Email, password and name are required", http.StatusBadRequest)
		return
	}

	user := model.NewUser(req.Email, req.Password, req.Name)
	if err := h.st.AddUser(r.Context(), *user); err != nil {
		logger.Warn("[Register] failed to create user",
			logger.String("email", req.Email),
			logger.ErrorField(err))
		writeEngineError(w, err)
		return
	}

	if h.notifier != nil {
		h.notifier.Notify(model.EventNewUser, map[string]interface{}{
			"userId": user.ID,
			"email":  user.Email,
			"name":   user.Name,
		})
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	logger.Info("[Register] user created", logger.String("email", user.Email))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// ProfileHandler returns the authenticated user's record.
func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	writeJSON(w, http.StatusOK, user.ToResponse())
}

// AuthMiddleware validates the bearer token and resolves the user record
// from the application state, so a deleted or unknown id cannot act.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(h.cfg.JWTSecret, parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, ok := h.st.UserByID(claims.UserID)
		if !ok {
			http.Error(w, "Unknown user", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// userFrom returns the authenticated user stashed by AuthMiddleware.
func userFrom(r *http.Request) model.User {
	return r.Context().Value(userContextKey).(model.User)
}
