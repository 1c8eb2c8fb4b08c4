package service

import (
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, 12*time.Hour, "wallet-ledger")

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			userID := uuid.New()
			token, expires, err := svc.Generate(userID, role)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(12*time.Hour), expires, time.Minute)

			claims, err := svc.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, role, claims.Role)
			assert.Equal(t, role == domain.RoleAdmin, claims.Caller().IsAdmin())
		})
	}
}

func TestJWTTokenService_TokensAreUnique(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, time.Hour, "wallet-ledger")
	userID := uuid.New()

	a, _, err := svc.Generate(userID, domain.RoleUser)
	require.NoError(t, err)
	b, _, err := svc.Generate(userID, domain.RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each token carries its own jti")
}

func TestJWTTokenService_Rejects(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, time.Hour, "wallet-ledger")
	now := time.Now()
	valid := func(role domain.Role, subject string) walletClaims {
		return walletClaims{
			Role: role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				Issuer:    "wallet-ledger",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	expired := valid(domain.RoleUser, uuid.NewString())
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	foreign := valid(domain.RoleUser, uuid.NewString())
	foreign.Issuer = "other-service"

	noExpiry := valid(domain.RoleUser, uuid.NewString())
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.valid.jwt"},
		{"empty", ""},
		{"expired", signRaw(t, jwt.SigningMethodHS256, expired, []byte(testJWTSecret))},
		{"other issuer", signRaw(t, jwt.SigningMethodHS256, foreign, []byte(testJWTSecret))},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, noExpiry, []byte(testJWTSecret))},
		{"other secret", signRaw(t, jwt.SigningMethodHS256, valid(domain.RoleUser, uuid.NewString()), []byte("another-secret"))},
		{"HS512", signRaw(t, jwt.SigningMethodHS512, valid(domain.RoleUser, uuid.NewString()), []byte(testJWTSecret))},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, valid("SUPERUSER", uuid.NewString()), []byte(testJWTSecret))},
		{"subject not a uuid", signRaw(t, jwt.SigningMethodHS256, valid(domain.RoleUser, "alice"), []byte(testJWTSecret))},
		{"no subject", signRaw(t, jwt.SigningMethodHS256, valid(domain.RoleAdmin, ""), []byte(testJWTSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Validate(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTTokenService_ToleratesClockSkew(t *testing.T) {
	issuer := NewJWTTokenService(testJWTSecret, time.Hour, "wallet-ledger")
	issuer.now = func() time.Time { return time.Now().Add(10 * time.Second) }

	token, _, err := issuer.Generate(uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = NewJWTTokenService(testJWTSecret, time.Hour, "wallet-ledger").Validate(token)
	assert.NoError(t, err, "an iat slightly in the future is within leeway")
}
