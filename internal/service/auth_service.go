package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelbuddy/internal/cache"
	"travelbuddy/internal/middleware"
	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is an issued access token and the account it belongs to.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *models.User     `json:"user"`
	Traveler  *models.Traveler `json:"traveler,omitempty"`
}

// AuthService registers accounts and issues and revokes tokens.
type AuthService struct {
	store    repository.Store
	redis    *redis.Client
	secret   string
	tokenTTL time.Duration
	log      *observability.DomainLogger
}

// NewAuthService returns a new AuthService. A nil redis client disables revocation.
func NewAuthService(store repository.Store, redisClient *redis.Client, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		redis:    redisClient,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      observability.NewDomainLogger("auth"),
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// Register creates a TRAVELER account and its profile in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    in.Email,
		Password: hashed,
		Role:     models.RoleTraveler,
		Status:   models.UserStatusActive,
	}
	var traveler *models.Traveler
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		traveler = &models.Traveler{UserID: user.ID, Name: in.Name, Email: user.Email}
		return tx.Travelers().Create(ctx, traveler)
	})
	if err != nil {
		return nil, err
	}

	s.log.LogEvent(ctx, "traveler registered", map[string]any{"user_id": user.ID, "traveler_id": traveler.ID})
	return s.issue(user, traveler)
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := models.NewUnauthorizedError("Invalid credentials")

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	if !user.CanLogin() {
		return nil, models.NewForbiddenError("This account is " + strings.ToLower(string(user.Status)))
	}

	var traveler *models.Traveler
	if user.Role == models.RoleTraveler {
		if traveler, err = s.store.Travelers().GetByEmail(ctx, user.Email); err != nil {
			return nil, err
		}
	}
	return s.issue(user, traveler)
}

func (s *AuthService) issue(user *models.User, traveler *models.Traveler) (*Session, error) {
	claims := middleware.NewClaims(models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, s.tokenTTL)
	token, err := middleware.SignToken(s.secret, claims)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
		Traveler:  traveler,
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.Claims) error {
	if s.redis == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, cache.RevokedTokenKey(claims.ID), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsRevoked implements middleware.RevocationChecker.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, identity models.Identity, current, next string) error {
	user, err := s.store.Users().GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.Users().UpdatePassword(ctx, user.ID, hashed)
}
