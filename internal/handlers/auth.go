package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/task-planner/internal/database"
	"github.com/benvon/task-planner/internal/models"
	"github.com/benvon/task-planner/internal/request"
	"github.com/benvon/task-planner/internal/services/credentials"
	"github.com/benvon/task-planner/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	userRepo database.UserRepositoryInterface
	hasher   *credentials.PasswordHasher
	tokens   *credentials.TokenService
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo database.UserRepositoryInterface, hasher *credentials.PasswordHasher, tokens *credentials.TokenService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{userRepo: userRepo, hasher: hasher, tokens: tokens, logger: logger}
}

// RegisterPublicRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers auth routes requiring a valid token
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// CredentialsRequest represents a register or login request
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// TokenResponse carries an issued bearer token and the account it belongs to
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Register creates a new account and issues a token for it
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Username = validation.SanitizeText(req.Username)
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.logger.Error("failed_to_hash_password", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Username already taken")
			return
		}
		h.logger.Error("failed_to_create_user", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, TokenResponse{
		Token: token,
		User:  UserResponse{ID: user.ID, Username: user.Username},
	})
}

// Login verifies credentials and issues a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	user, err := h.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			// Same response as a bad password so usernames can't be probed
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid username or password")
			return
		}
		h.logger.Error("failed_to_get_user", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid username or password")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		Token: token,
		User:  UserResponse{ID: user.ID, Username: user.Username},
	})
}

// GetMe returns the authenticated user's account
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{ID: user.ID, Username: user.Username})
}
