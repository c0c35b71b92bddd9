package service

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/pkg/clock"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key"

func newTestOwnerService(t *testing.T, password string, clk clock.Clock) OwnerService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewOwnerService("FormalDev", string(hash), testSecret, 30*time.Minute, clk)
}

func TestOwnerService_Login(t *testing.T) {
	svc := newTestOwnerService(t, "correct horse", nil)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, "  FormalDev ", "correct horse")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "FormalDev", claims.Subject)
		assert.Equal(t, domain.RoleOwner, claims.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "Someone", "correct horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "FormalDev", "battery staple")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestOwnerService_TokenExpiry(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestOwnerService(t, "pw", clk)

	token, err := svc.Login(context.Background(), "FormalDev", "pw")
	require.NoError(t, err)

	clk.Add(29 * time.Minute)
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	clk.Add(2 * time.Minute)
	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "expected ErrInvalidToken, got %v", err)
}

func TestOwnerService_RejectsForeignTokens(t *testing.T) {
	svc := newTestOwnerService(t, "pw", nil)

	claims := &Claims{
		Role: domain.RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "FormalDev",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: domain.RoleOwner}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(noExpiry)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProperty_HashPasswordVerifies(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("hashed passwords are bcrypt and verify", prop.ForAll(
		func(password string) bool {
			hash, err := HashPassword(password)
			if err != nil {
				return false
			}
			if hash == password {
				return false
			}
			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil || cost != BcryptCost {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
		},
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
