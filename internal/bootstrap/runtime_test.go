package bootstrap

import (
	"context"
	"testing"

	"travelbuddy/internal/config"
	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_DevRootAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		Env:              "development",
		DevBootstrapRoot: true,
		DevRootEmail:     "Root@Example.com",
		DevRootPassword:  "Sup3r-secret!",
	}

	require.NoError(t, Provision(context.Background(), cfg, db, Options{}))
	require.NoError(t, Provision(context.Background(), cfg, db, Options{}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root@example.com", users[0].Email)
	assert.Equal(t, models.RoleSuperAdmin, users[0].Role)
}

func TestProvision_RootRequiresPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{Env: "development", DevBootstrapRoot: true}

	err := Provision(context.Background(), cfg, db, Options{})
	assert.ErrorContains(t, err, "DEV_ROOT_PASSWORD")
}

func TestProvision_SkipsRootOutsideDevelopment(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{Env: "production", DevBootstrapRoot: true, DevRootPassword: "Sup3r-secret!"}

	require.NoError(t, Provision(context.Background(), cfg, db, Options{}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProvision_SeedsCatalogAndDemoData(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{Env: "test", SeedDemoData: true}

	require.NoError(t, Provision(context.Background(), cfg, db, Options{SeedCatalog: true}))

	var plans, travelers int64
	require.NoError(t, db.Model(&models.SubscriptionPlan{}).Count(&plans).Error)
	require.NoError(t, db.Model(&models.Traveler{}).Count(&travelers).Error)
	assert.Equal(t, int64(3), plans)
	assert.Equal(t, int64(12), travelers)
}
