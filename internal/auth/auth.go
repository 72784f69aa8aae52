package auth

import (
	"time"

	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

// UserRepository is the credential lookup surface the auth service needs.
type UserRepository interface {
	GetByEmail(email string) (*usermodel.User, error)
	GetByID(id int64) (*usermodel.User, error)
}

// ServiceAPI performs authentication business logic.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUser(id int64) (*usermodel.User, error)
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Claims carries the authenticated identity. Role plus the optional provider
// and consumer ids are enough for every ownership check downstream.
type Claims struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProviderID *int64 `json:"provider_id,omitempty"`
	ConsumerID *int64 `json:"consumer_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(u *usermodel.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
	}
}
