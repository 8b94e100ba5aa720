package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r[jti], nil
}

func TestAuthRequired(t *testing.T) {
	identity := models.Identity{UserID: 42, Email: "ana@example.com", Role: models.RoleTraveler}

	valid := NewClaims(identity, time.Hour)
	validToken, err := SignToken(testSecret, valid)
	require.NoError(t, err)

	revoked := NewClaims(identity, time.Hour)
	revokedToken, err := SignToken(testSecret, revoked)
	require.NoError(t, err)

	expiredToken, err := SignToken(testSecret, NewClaims(identity, -time.Minute))
	require.NoError(t, err)

	wrongAud := NewClaims(identity, time.Hour)
	wrongAud.Audience = jwt.ClaimStrings{"someone-else"}
	wrongAudToken, err := SignToken(testSecret, wrongAud)
	require.NoError(t, err)

	otherSecretToken, err := SignToken("another-secret-another-secret-123", NewClaims(identity, time.Hour))
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", AuthRequired(testSecret, revokedSet{revoked.ID: true}), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(id)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"Valid token", "Bearer " + validToken, http.StatusOK},
		{"Missing header", "", http.StatusUnauthorized},
		{"Wrong scheme", "Basic " + validToken, http.StatusUnauthorized},
		{"Expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"Wrong audience", "Bearer " + wrongAudToken, http.StatusUnauthorized},
		{"Wrong secret", "Bearer " + otherSecretToken, http.StatusUnauthorized},
		{"Revoked token", "Bearer " + revokedToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var got models.Identity
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, identity, got)
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	adminToken, err := SignToken(testSecret, NewClaims(models.Identity{UserID: 1, Email: "admin@example.com", Role: models.RoleAdmin}, time.Hour))
	require.NoError(t, err)
	travelerToken, err := SignToken(testSecret, NewClaims(models.Identity{UserID: 2, Email: "t@example.com", Role: models.RoleTraveler}, time.Hour))
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/admin", AuthRequired(testSecret, nil), RoleRequired(models.RoleAdmin, models.RoleSuperAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for token, status := range map[string]int{adminToken: http.StatusOK, travelerToken: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode)
		_ = resp.Body.Close()
	}
}
