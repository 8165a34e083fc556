package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/cantina/internal/domain"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidRole  = errors.New("invalid role")
)

// Claims represents the JWT claims
type Claims struct {
	ActorID string      `json:"actor_id"`
	Name    string      `json:"name,omitempty"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims to the ledger's actor.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{
		ID:         c.ActorID,
		Name:       c.Name,
		Privileged: c.Role.IsPrivileged(),
	}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate signs a token for an actor with the given role.
func (m *JWTManager) Generate(actorID, name string, role domain.Role) (string, error) {
	if actorID == "" {
		return "", fmt.Errorf("%w: actor id is required", ErrInvalidToken)
	}
	if !role.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := m.now()
	claims := Claims{
		ActorID: actorID,
		Name:    name,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ActorID == "" || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
