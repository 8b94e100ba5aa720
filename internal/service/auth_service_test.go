package service

import (
	"context"
	"testing"
	"time"

	"travelbuddy/internal/middleware"
	"travelbuddy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-key-with-enough-length"
	testPassword = "Sup3r-Secret!pass"
)

func TestRegisterAndLogin(t *testing.T) {
	db, store := newTestStore(t)
	svc := NewAuthService(store, nil, testSecret, time.Hour)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: " Alice ", Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	require.NotNil(t, session.Traveler)
	assert.Equal(t, "Alice", session.Traveler.Name)
	assert.Equal(t, models.RoleTraveler, session.User.Role)
	assert.NotEqual(t, testPassword, session.User.Password)

	claims, err := middleware.ParseToken(testSecret, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: testPassword})
	requireCode(t, err, models.CodeConflict)

	var travelers int64
	require.NoError(t, db.Model(&models.Traveler{}).Count(&travelers).Error)
	assert.Equal(t, int64(1), travelers)

	login, err := svc.Login(ctx, "alice@example.com", testPassword)
	require.NoError(t, err)
	require.NotNil(t, login.Traveler)
	assert.Equal(t, session.Traveler.ID, login.Traveler.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	requireCode(t, err, models.CodeUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", testPassword)
	requireCode(t, err, models.CodeUnauthorized)
}

func TestRegister_Validation(t *testing.T) {
	_, store := newTestStore(t)
	svc := NewAuthService(store, nil, testSecret, time.Hour)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: testPassword}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: testPassword}},
		{"weak password", RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			requireCode(t, err, models.CodeValidation)
		})
	}
}

func TestLogin_BlockedAccount(t *testing.T) {
	db, store := newTestStore(t)
	svc := NewAuthService(store, nil, testSecret, time.Hour)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: testPassword})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", session.User.ID).Update("status", models.UserStatusBlocked).Error)

	_, err = svc.Login(ctx, "bob@example.com", testPassword)
	requireCode(t, err, models.CodeForbidden)
	assert.Contains(t, err.Error(), "blocked")
}

func TestLogout_RevokesToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	_, store := newTestStore(t)
	svc := NewAuthService(store, client, testSecret, time.Hour)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: testPassword})
	require.NoError(t, err)
	claims, err := middleware.ParseToken(testSecret, session.Token)
	require.NoError(t, err)

	revoked, err := svc.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, claims))
	revoked, err = svc.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL("blacklist:" + claims.ID)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	// entries expire with the token
	mr.FastForward(time.Hour + time.Second)
	revoked, err = svc.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestChangePassword(t *testing.T) {
	_, store := newTestStore(t)
	svc := NewAuthService(store, nil, testSecret, time.Hour)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Dave", Email: "dave@example.com", Password: testPassword})
	require.NoError(t, err)
	identity := models.Identity{UserID: session.User.ID, Email: session.User.Email, Role: session.User.Role}

	err = svc.ChangePassword(ctx, identity, "wrong", "N3w-Password!ok")
	requireCode(t, err, models.CodeUnauthorized)
	err = svc.ChangePassword(ctx, identity, testPassword, "weak")
	requireCode(t, err, models.CodeValidation)

	require.NoError(t, svc.ChangePassword(ctx, identity, testPassword, "N3w-Password!ok"))
	_, err = svc.Login(ctx, "dave@example.com", "N3w-Password!ok")
	require.NoError(t, err)
}
