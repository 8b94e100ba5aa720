package seed

import (
	"os"
	"path/filepath"
	"testing"

	"travelbuddy/internal/models"
	"travelbuddy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanCatalog_Default(t *testing.T) {
	entries, err := LoadPlanCatalog("")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	recommended := 0
	for _, e := range entries {
		assert.Positive(t, e.Price)
		assert.Positive(t, e.DurationInDays)
		if e.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestParsePlanCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "plans: []\n"},
		{"missing name", "plans:\n- price: 10\n  duration_in_days: 30\n"},
		{"zero price", "plans:\n- name: Free\n  price: 0\n  duration_in_days: 30\n"},
		{"zero duration", "plans:\n- name: Monthly\n  price: 10\n  duration_in_days: 0\n"},
		{"duplicate", "plans:\n- name: Monthly\n  price: 10\n  duration_in_days: 30\n- name: monthly\n  price: 12\n  duration_in_days: 30\n"},
		{"not yaml", "{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlanCatalog([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadPlanCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	raw := "plans:\n- name: Weekend\n  price: 2.5\n  duration_in_days: 3\n  features: [\"Send buddy requests\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	entries, err := LoadPlanCatalog(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Weekend", entries[0].Name)
	assert.Equal(t, []string{"Send buddy requests"}, entries[0].Features)

	_, err = LoadPlanCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubscriptionPlans_UpsertIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	entries, err := LoadPlanCatalog("")
	require.NoError(t, err)

	require.NoError(t, SubscriptionPlans(db, entries))
	entries[0].Price = 11.99
	require.NoError(t, SubscriptionPlans(db, entries))

	var plans []models.SubscriptionPlan
	require.NoError(t, db.Order("id").Find(&plans).Error)
	require.Len(t, plans, len(entries))
	assert.Equal(t, entries[0].Name, plans[0].Name)
	assert.InDelta(t, 11.99, plans[0].Price, 0.001)
}

func TestEnsureSubscriptionPlans_SkipsWhenPresent(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.SubscriptionPlan{Name: "Custom", Price: 5, DurationInDays: 10}).Error)

	n, err := EnsureSubscriptionPlans(db, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, db.Model(&models.SubscriptionPlan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureSubscriptionPlans_SeedsEmptyTable(t *testing.T) {
	db := testutil.NewTestDB(t)

	n, err := EnsureSubscriptionPlans(db, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
