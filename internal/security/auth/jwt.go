package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// Claims carries the authenticated identity. Every protected operation is
// scoped by organization_id and authorized by role_level.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	RoleLevel      int    `json:"role_level"`
	jwt.RegisteredClaims
}

// Caller converts validated claims into the domain identity.
func (c *Claims) Caller() (domain.Caller, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("invalid user_id claim: %w", err)
	}
	orgID, err := uuid.Parse(c.OrganizationID)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("invalid organization_id claim: %w", err)
	}
	return domain.Caller{UserID: userID, OrganizationID: orgID, RoleLevel: c.RoleLevel}, nil
}

type TokenManager struct {
	secret string
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "taskmanager"
	}
	return &TokenManager{secret: secret, issuer: issuer}
}

func (tm *TokenManager) GenerateToken(user *domain.User, roleLevel int, expiresIn time.Duration) (string, error) {
	if user.ID == uuid.Nil || user.OrganizationID == uuid.Nil {
		return "", fmt.Errorf("user id and organization id required")
	}
	now := time.Now()
	claims := Claims{
		UserID:         user.ID.String(),
		OrganizationID: user.OrganizationID.String(),
		RoleLevel:      roleLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
