package service

import (
	"context"
	"strings"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"
)

// AccountService manages accounts on behalf of administrators.
type AccountService struct {
	store repository.Store
	log   *observability.DomainLogger
}

// NewAccountService returns a new AccountService.
func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{
		store: store,
		log:   observability.NewDomainLogger("account"),
	}
}

// EnsureAdmin creates an admin account for email unless one already exists.
// It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string, role models.UserRole) (bool, error) {
	if !role.IsAdmin() {
		return false, models.NewValidationError("Role must be ADMIN or SUPER_ADMIN")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return false, models.NewValidationError(err.Error())
	}
	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := validation.ValidatePassword(password); err != nil {
		return false, models.NewValidationError(err.Error())
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	user := &models.User{Email: email, Password: hashed, Role: role, Status: models.UserStatusActive}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return false, err
	}
	s.log.LogEvent(ctx, "admin account created", map[string]any{"user_id": user.ID, "role": role})
	return true, nil
}

// SetRole changes the role of the account registered under email.
func (s *AccountService) SetRole(ctx context.Context, email string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Unknown role " + string(role))
	}
	user, err := s.store.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("No account is registered with this email")
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.store.Users().UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	s.log.LogTransition(ctx, "user", user.ID, string(user.Role), string(role), nil)
	user.Role = role
	return user, nil
}

// SetStatus blocks or reactivates an account. Deleted accounts stay deleted.
func (s *AccountService) SetStatus(ctx context.Context, userID uint, status models.UserStatus) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusBlocked {
		return nil, models.NewValidationError("Status must be ACTIVE or BLOCKED")
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusDeleted {
		return nil, models.NewConflictError("Deleted accounts cannot be changed")
	}
	if user.Status == status {
		return user, nil
	}
	if err := s.store.Users().UpdateStatus(ctx, user.ID, status); err != nil {
		return nil, err
	}
	s.log.LogTransition(ctx, "user", user.ID, string(user.Status), string(status), nil)
	user.Status = status
	return user, nil
}

// ListAdmins returns ADMIN and SUPER_ADMIN accounts.
func (s *AccountService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.store.Users().ListByRole(ctx, models.RoleAdmin, models.RoleSuperAdmin)
}
