package service

import (
	"context"
	"testing"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	_, store := newTestStore(t)
	svc := NewAccountService(store)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", testPassword, models.RoleSuperAdmin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@example.com", testPassword, models.RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.EnsureAdmin(ctx, "someone@example.com", testPassword, models.RoleTraveler)
	requireCode(t, err, models.CodeValidation)

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, models.RoleSuperAdmin, admins[0].Role)

	login, err := NewAuthService(store, nil, testSecret, 0).Login(ctx, "root@example.com", testPassword)
	require.NoError(t, err)
	assert.Nil(t, login.Traveler)
}

func TestSetRoleAndStatus(t *testing.T) {
	db, store := newTestStore(t)
	traveler := testutil.CreateTraveler(t, db, "alice", false)
	svc := NewAccountService(store)
	ctx := context.Background()

	user, err := svc.SetRole(ctx, "alice@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = svc.SetRole(ctx, "ghost@example.com", models.RoleAdmin)
	requireCode(t, err, models.CodeNotFound)
	_, err = svc.SetRole(ctx, "alice@example.com", models.UserRole("ROOT"))
	requireCode(t, err, models.CodeValidation)

	user, err = svc.SetStatus(ctx, traveler.UserID, models.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBlocked, user.Status)

	_, err = svc.SetStatus(ctx, traveler.UserID, models.UserStatusDeleted)
	requireCode(t, err, models.CodeValidation)

	require.NoError(t, NewTravelerService(store).SoftDelete(ctx, traveler.ID))
	_, err = svc.SetStatus(ctx, traveler.UserID, models.UserStatusActive)
	requireCode(t, err, models.CodeConflict)
}
