package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/pkg/clock"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor used by HashPassword
	BcryptCost = 10

	// DefaultAccessTokenExpiration applies when no expiry is configured
	DefaultAccessTokenExpiration = 60 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// OwnerService issues and checks owner session tokens for the catalog API
type OwnerService interface {
	Login(ctx context.Context, username, password string) (accessToken string, err error)
	ValidateToken(tokenString string) (*domain.OwnerClaims, error)
}

// Claims represents the JWT claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ownerService struct {
	username     string
	passwordHash string
	jwtSecret    string
	expiry       time.Duration
	clock        clock.Clock
}

// NewOwnerService creates an OwnerService for the single configured owner
func NewOwnerService(username, passwordHash, jwtSecret string, expiry time.Duration, clk clock.Clock) OwnerService {
	if expiry <= 0 {
		expiry = DefaultAccessTokenExpiration
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ownerService{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		expiry:       expiry,
		clock:        clk,
	}
}

// Login checks the owner credentials and returns a signed access token
func (s *ownerService) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) != s.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.generateAccessToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, nil
}

// ValidateToken validates a JWT token and returns the owner claims
func (s *ownerService) ValidateToken(tokenString string) (*domain.OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidToken, "failed to parse token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &domain.OwnerClaims{Subject: claims.Subject, Role: claims.Role}, nil
}

func (s *ownerService) generateAccessToken() (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		Role: domain.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.username,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// HashPassword produces a bcrypt hash suitable for OWNER_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
