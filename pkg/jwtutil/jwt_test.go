package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop/internal/permission"
	"repairshop/pkg/config"
)

func initTestKeys(t *testing.T) {
	t.Helper()
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestTokenRoundTrip(t *testing.T) {
	initTestKeys(t)

	tenantID := uint(7)
	token, err := GenerateTokenWithTenant("joe@example.com", 42, &tenantID, "joes-garage", permission.RoleOwner)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "joe@example.com", claims.Email)
	assert.Equal(t, uint(42), claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenantID, *claims.TenantID)
	assert.Equal(t, "joes-garage", claims.TenantSlug)
	assert.Equal(t, permission.RoleOwner, claims.Role)
}

func TestTokenWithoutTenant(t *testing.T) {
	initTestKeys(t)

	token, err := GenerateToken("joe@example.com", 42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.TenantID)
	assert.Empty(t, claims.TenantSlug)
}

func TestValidateTokenRejectsWrongSigningMethod(t *testing.T) {
	initTestKeys(t)

	// An unsigned token with alg=none must never pass, regardless of
	// what its claims say.
	claims := UserClaims{
		Email:  "joe@example.com",
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(unsigned)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	initTestKeys(t)
	token, err := GenerateToken("joe@example.com", 42)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "another-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	initTestKeys(t)
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
