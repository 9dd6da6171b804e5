package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/domain/user"
	"chat-rooms/internal/repository"
	chatroom_errors "chat-rooms/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService verifies tokens minted by the identity provider and mirrors the
// identity into the users table.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	issuer    string
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
	}
}

type AccessClaims struct {
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, chatroom_errors.ErrUnauthorized
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return AccessClaims{}, chatroom_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, chatroom_errors.ErrUnauthorized
	}
	return *claims, nil
}

// Authenticate verifies the token and upserts the user it names.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (user.User, error) {
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return user.User{}, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user.User{}, chatroom_errors.ErrUnauthorized
	}

	u := user.User{
		ID:          userID,
		Username:    claims.PreferredUsername,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	if u.Username == "" {
		u.Username = userID.String()
	}
	if err := s.userRepo.Upsert(ctx, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// IssueToken signs a token the way the identity provider does. Used by the
// dev CLI and tests.
func (s *AuthService) IssueToken(u user.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		PreferredUsername: u.Username,
		Email:             u.Email,
		Name:              u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, chatroom_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chatroom_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, chatroom_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatroom_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, chatroom_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode is the machine readable code sent with an error response.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, chatroom_errors.ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, chatroom_errors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, chatroom_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, chatroom_errors.ErrTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, chatroom_errors.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, chatroom_errors.ErrStorage):
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"

func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
