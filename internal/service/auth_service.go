package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/wishlist/internal/auth"
	"github.com/mmynk/wishlist/internal/middleware"
	"github.com/mmynk/wishlist/internal/models"
	"github.com/mmynk/wishlist/internal/storage"
)

// AuthService serves signup, login and the current-user endpoint.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Signup creates a new user account.
// Duplicate emails are reported like any other store failure.
func (s *AuthService) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeText(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, auth.ErrEmailExists):
			s.logger.Warn("Signup rejected", "email", models.NormalizeEmail(req.Email), "error", err)
			writeText(w, http.StatusInternalServerError, "Error creating user")
		default:
			s.logger.Error("Signup failed", "email", models.NormalizeEmail(req.Email), "error", err)
			writeText(w, http.StatusInternalServerError, "Error creating user")
		}
		return
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	writeText(w, http.StatusCreated, "User created successfully")
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Warn("Login failed", "email", models.NormalizeEmail(req.Email))
		writeText(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		s.logger.Error("Login failed", "email", models.NormalizeEmail(req.Email), "error", err)
		writeText(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	token, err := s.jwtManager.Generate(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeText(w, http.StatusInternalServerError, "Error logging in")
		return
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeText(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	user, err := s.users.GetUserByID(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		// Signed by us, but the account is gone (e.g. database reset).
		writeText(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load current user", "user_id", userID, "error", err)
		writeText(w, http.StatusInternalServerError, "Error retrieving user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
