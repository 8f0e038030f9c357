package jwtutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"repairshop/internal/permission"
	"repairshop/pkg/config"
)

var (
	signingKey      []byte
	expirationHours = 24
)

// Initialize sets the signing key and token lifetime from config.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	if cfg.ExpirationHours > 0 {
		expirationHours = cfg.ExpirationHours
	}
}

// UserClaims represents the JWT claims for an authenticated user. The
// tenant fields are populated after the user selects or switches to a
// tenant; a token without them carries no tenant context.
type UserClaims struct {
	Email      string          `json:"email"`
	UserID     uint            `json:"user_id"`
	TenantID   *uint           `json:"tenant_id,omitempty"`
	TenantSlug string          `json:"tenant_slug,omitempty"`
	Role       permission.Role `json:"role,omitempty"` // user's role in the selected tenant
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token without tenant context.
func GenerateToken(email string, userID uint) (string, error) {
	return GenerateTokenWithTenant(email, userID, nil, "", "")
}

// GenerateTokenWithTenant creates a JWT token carrying the selected
// tenant and the user's role in it.
func GenerateTokenWithTenant(email string, userID uint, tenantID *uint, tenantSlug string, role permission.Role) (string, error) {
	claims := UserClaims{
		Email:      email,
		UserID:     userID,
		TenantID:   tenantID,
		TenantSlug: tenantSlug,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
