package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"travelbuddy/internal/models"
)

const (
	maxDestinationLength = 200
	maxDescriptionLength = 5000
	maxMessageLength     = 1000
	maxCommentLength     = 2000
)

// TravelPlanInput is the writable part of a travel plan.
type TravelPlanInput struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	BudgetMin   float64
	BudgetMax   float64
	TravelType  models.TravelType
	Description string
}

// ValidateTravelPlan checks destination, date range, budget range and travel type.
func ValidateTravelPlan(in TravelPlanInput) error {
	dest := strings.TrimSpace(in.Destination)
	if dest == "" {
		return errors.New("destination is required")
	}
	if utf8.RuneCountInString(dest) > maxDestinationLength {
		return fmt.Errorf("destination must be at most %d characters", maxDestinationLength)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if in.BudgetMin < 0 || in.BudgetMax < 0 {
		return errors.New("budget cannot be negative")
	}
	if in.BudgetMax < in.BudgetMin {
		return errors.New("maximum budget must not be less than minimum budget")
	}
	if !in.TravelType.Valid() {
		return fmt.Errorf("travel type must be one of %s, %s or %s",
			models.TravelTypeSolo, models.TravelTypeFamily, models.TravelTypeFriends)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

// ValidateRating checks the review rating bounds.
func ValidateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("Rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}

// ValidateComment bounds the review comment.
func ValidateComment(comment string) error {
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return fmt.Errorf("comment must be at most %d characters", maxCommentLength)
	}
	return nil
}

// ValidateRequestMessage bounds the note attached to a buddy request.
func ValidateRequestMessage(message string) error {
	if utf8.RuneCountInString(message) > maxMessageLength {
		return fmt.Errorf("message must be at most %d characters", maxMessageLength)
	}
	return nil
}

// ValidatePhotoURL accepts an empty value or an absolute http(s) URL.
func ValidatePhotoURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("profile photo must be an http(s) URL")
	}
	return nil
}

// ValidateSubscriptionPlan checks the priced fields of a plan.
func ValidateSubscriptionPlan(name string, price float64, durationInDays int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("plan name is required")
	}
	if price < 0 {
		return errors.New("price cannot be negative")
	}
	if durationInDays <= 0 {
		return errors.New("duration must be at least one day")
	}
	return nil
}
