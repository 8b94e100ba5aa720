// Package middleware provides HTTP middleware: authentication, request
// logging, rate limiting, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"travelbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token issuer and audience, checked on every request.
const (
	TokenIssuer   = "travelbuddy-api"
	TokenAudience = "travelbuddy-client"
)

const (
	localsIdentity = "identity"
	localsClaims   = "claims"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewClaims builds claims for identity that expire after ttl.
func NewClaims(identity models.Identity, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(identity.UserID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
}

// SignToken signs claims with HS256.
func SignToken(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates signature, expiry, issuer and audience.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Identity converts claims into the caller identity.
func (c *Claims) Identity() (models.Identity, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return models.Identity{UserID: uint(id), Email: c.Email, Role: c.Role}, nil
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthRequired validates the bearer token, rejects revoked tokens and stores
// the caller identity in Fiber locals and the request context.
func AuthRequired(secret string, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		identity, err := claims.Identity()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		if revocations != nil && claims.ID != "" {
			revoked, err := revocations.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				Logger.WarnContext(c.UserContext(), "revocation check failed", "error", err)
			} else if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", identity.UserID)
		c.Locals(localsIdentity, identity)
		c.Locals(localsClaims, claims)

		ctx := context.WithValue(c.UserContext(), UserIDKey, identity.UserID)
		ctx = context.WithValue(ctx, RoleKey, string(identity.Role))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(localsIdentity).(models.Identity)
	return identity, ok
}

// ClaimsFrom returns the token claims stored by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(localsClaims).(*Claims)
	return claims, ok
}

// RoleRequired allows the request only when the caller has one of roles.
// It must run after AuthRequired.
func RoleRequired(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not authorized to access this resource"))
	}
}
