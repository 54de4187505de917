package transport

import (
	"errors"
	"net/http"

	"veggiemarket/internal/domain"
	"veggiemarket/internal/middleware"
	"veggiemarket/internal/service"
	"veggiemarket/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest represents the account creation payload
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/signup", h.SignUp)
	})
}

// Login authenticates a user and issues an access token. The dashboard role
// follows from the email domain alone; an unrecognized domain is rejected
// before any credential check.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, role, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDomain):
			middleware.RespondWithError(w, http.StatusForbidden, "email domain is not recognized")
		case errors.Is(err, service.ErrInvalidCredentials):
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	h.logger.Info("User logged in", zap.String("email", req.Email), zap.String("role", string(role)))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		Email:       req.Email,
		Role:        string(role),
	})
}

// SignUp creates a new account. The email suffix must agree with the
// requested role, and admin accounts cannot be self-provisioned.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("SignUp validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.FullName, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSuffixMismatch), errors.Is(err, service.ErrInvalidDomain):
			middleware.RespondWithError(w, http.StatusBadRequest, "email domain does not match the requested role")
		case errors.Is(err, service.ErrSignupUnavailable):
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "sign up is unavailable while the store is unreachable")
		case errors.Is(err, store.ErrUserAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
		default:
			h.logger.Error("SignUp failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to sign up")
		}
		return
	}

	h.logger.Info("User signed up", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	middleware.RespondWithJSON(w, http.StatusCreated, user)
}
