package service

import (
	"context"
	"strings"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"

	"gorm.io/datatypes"
)

// ProfileUpdate holds the profile fields a traveler may change. Nil fields are left alone.
type ProfileUpdate struct {
	Name             *string
	Bio              *string
	ProfilePhoto     *string
	ContactNumber    *string
	CurrentLocation  *string
	Interests        *[]string
	VisitedCountries *[]string
}

// TravelerService provides traveler profile operations.
type TravelerService struct {
	store repository.Store
	log   *observability.DomainLogger
}

// NewTravelerService returns a new TravelerService.
func NewTravelerService(store repository.Store) *TravelerService {
	return &TravelerService{
		store: store,
		log:   observability.NewDomainLogger("traveler"),
	}
}

// GetProfile returns a non-deleted traveler by id.
func (s *TravelerService) GetProfile(ctx context.Context, id uint) (*models.Traveler, error) {
	traveler, err := s.store.Travelers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if traveler.IsDeleted {
		return nil, models.NewNotFoundError("Traveler", id)
	}
	return traveler, nil
}

// GetMe returns the caller's own profile.
func (s *TravelerService) GetMe(ctx context.Context, identity models.Identity) (*models.Traveler, error) {
	return travelerFor(ctx, s.store.Travelers(), identity)
}

// UpdateMyProfile applies patch to the caller's profile.
func (s *TravelerService) UpdateMyProfile(ctx context.Context, identity models.Identity, patch ProfileUpdate) (*models.Traveler, error) {
	traveler, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["name"] = name
	}
	if patch.Bio != nil {
		fields["bio"] = strings.TrimSpace(*patch.Bio)
	}
	if patch.ProfilePhoto != nil {
		photo := strings.TrimSpace(*patch.ProfilePhoto)
		if err := validation.ValidatePhotoURL(photo); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["profile_photo"] = photo
	}
	if patch.ContactNumber != nil {
		fields["contact_number"] = strings.TrimSpace(*patch.ContactNumber)
	}
	if patch.CurrentLocation != nil {
		fields["current_location"] = strings.TrimSpace(*patch.CurrentLocation)
	}
	if patch.Interests != nil {
		fields["interests"] = datatypes.JSONSlice[string](cleanList(*patch.Interests))
	}
	if patch.VisitedCountries != nil {
		fields["visited_countries"] = datatypes.JSONSlice[string](cleanList(*patch.VisitedCountries))
	}

	if err := s.store.Travelers().UpdateProfile(ctx, traveler.ID, fields); err != nil {
		return nil, err
	}
	return s.store.Travelers().GetByID(ctx, traveler.ID)
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// List returns non-deleted travelers.
func (s *TravelerService) List(ctx context.Context, filter models.TravelerFilter, opts models.ListOptions) ([]models.Traveler, int64, error) {
	return s.store.Travelers().List(ctx, filter, opts)
}

// SoftDelete hides a traveler and closes their account.
func (s *TravelerService) SoftDelete(ctx context.Context, id uint) error {
	traveler, err := s.store.Travelers().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if traveler.IsDeleted {
		return models.NewConflictError("Traveler is already deleted")
	}

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Travelers().SoftDelete(ctx, id); err != nil {
			return err
		}
		return tx.Users().UpdateStatus(ctx, traveler.UserID, models.UserStatusDeleted)
	})
	if err != nil {
		return err
	}

	s.log.LogTransition(ctx, "traveler", id, "ACTIVE", "DELETED", nil)
	return nil
}
