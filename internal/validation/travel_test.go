package validation

import (
	"testing"
	"time"

	"travelbuddy/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateTravelPlan(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	valid := TravelPlanInput{
		Destination: "Lisbon",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
		BudgetMin:   500,
		BudgetMax:   900,
		TravelType:  models.TravelTypeFriends,
	}

	tests := []struct {
		name    string
		mutate  func(in *TravelPlanInput)
		wantErr bool
	}{
		{"Valid", func(*TravelPlanInput) {}, false},
		{"Same Day Trip", func(in *TravelPlanInput) { in.EndDate = in.StartDate }, false},
		{"Blank Destination", func(in *TravelPlanInput) { in.Destination = "  " }, true},
		{"End Before Start", func(in *TravelPlanInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) }, true},
		{"Missing Dates", func(in *TravelPlanInput) { in.StartDate = time.Time{} }, true},
		{"Negative Budget", func(in *TravelPlanInput) { in.BudgetMin = -1 }, true},
		{"Inverted Budget", func(in *TravelPlanInput) { in.BudgetMax = 100 }, true},
		{"Unknown Travel Type", func(in *TravelPlanInput) { in.TravelType = "BUSINESS" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := ValidateTravelPlan(in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	t.Parallel()
	for rating, wantErr := range map[int]bool{0: true, 1: false, 3: false, 5: false, 6: true, -2: true} {
		err := ValidateRating(rating)
		if wantErr {
			assert.EqualError(t, err, "Rating must be between 1 and 5")
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestValidatePhotoURL(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePhotoURL(""))
	assert.NoError(t, ValidatePhotoURL("https://cdn.example.com/me.jpg"))
	assert.Error(t, ValidatePhotoURL("ftp://example.com/me.jpg"))
	assert.Error(t, ValidatePhotoURL("not a url"))
}
