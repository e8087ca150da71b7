package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/benvon/task-planner/internal/models"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrInvalidToken is returned when a token fails parsing or signature verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiration
	ErrExpiredToken = errors.New("token has expired")
)

const (
	// DefaultTokenTTL is how long issued tokens stay valid
	DefaultTokenTTL = 24 * time.Hour
)

// TokenService issues and verifies HS256 bearer tokens
type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		key:    []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue creates a signed token carrying the user's identity
func (s *TokenService) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(userID.String()).
		Claim("username", username).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify verifies a token string and extracts its claims
func (s *TokenService) Verify(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}

	if username, ok := token.Get("username"); ok {
		if usernameStr, ok := username.(string); ok {
			claims.Username = usernameStr
		}
	}

	return claims, nil
}
