package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/task-planner/internal/database"
	"github.com/benvon/task-planner/internal/request"
	"github.com/benvon/task-planner/internal/services/credentials"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auth creates authentication middleware that validates bearer tokens and
// resolves them to a user, which is attached to the request context.
func Auth(users database.UserRepositoryInterface, tokens *credentials.TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Debug("token_verification_failed", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Sub)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid token subject")
				return
			}

			ctx := r.Context()
			user, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, database.ErrUserNotFound) {
					// Token is valid but the account is gone
					respondError(w, http.StatusUnauthorized, "Unknown user")
					return
				}
				logger.Error("failed_to_load_user", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		_ = err
	}
}
