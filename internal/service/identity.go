// Package service contains the business logic behind the HTTP handlers.
package service

import (
	"context"

	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
)

// travelerFor resolves the traveler profile behind an authenticated identity.
// Deleted travelers are treated as missing.
func travelerFor(ctx context.Context, travelers repository.TravelerRepository, identity models.Identity) (*models.Traveler, error) {
	traveler, err := travelers.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if traveler == nil || traveler.IsDeleted {
		return nil, models.NewNotFoundMessage("Traveler profile not found")
	}
	return traveler, nil
}

// subscribedTraveler resolves the identity and applies the subscription gate.
func subscribedTraveler(ctx context.Context, travelers repository.TravelerRepository, identity models.Identity) (*models.Traveler, error) {
	traveler, err := travelers.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if traveler == nil || !traveler.CanParticipate() {
		return nil, models.NewUnauthorizedError("You are not subscribed user")
	}
	return traveler, nil
}
