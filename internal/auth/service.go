package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/feebook/feebook/internal"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
	}
}

// Authenticate validates credentials and returns a signed access token.
// Lookup and compare failures collapse into the same error so responses do
// not leak which emails exist.
func (s *Service) Authenticate(dto LoginDTO) (*AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(dto.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}

	ttl := int64(0)
	if gen, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		ttl = int64(gen.AccessTokenTTL.Seconds())
	}

	return &AuthTokens{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetUser(id int64) (*usermodel.User, error) {
	return s.userRepo.GetByID(id)
}

// HashPassword creates a bcrypt hash; used by the seeder and user creation.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(u *usermodel.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		ProviderID: u.ProviderID,
		ConsumerID: u.ConsumerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(u.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.ErrInvalidToken
}
