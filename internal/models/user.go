package models

import "time"

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	// UserStatusActive accounts can log in.
	UserStatusActive UserStatus = "ACTIVE"
	// UserStatusBlocked accounts were suspended by an admin.
	UserStatusBlocked UserStatus = "BLOCKED"
	// UserStatusDeleted accounts belong to soft-deleted travelers.
	UserStatusDeleted UserStatus = "DELETED"
)

// User is a login account. Travelers and admins both own one.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      UserRole   `gorm:"type:varchar(20);not null;default:'TRAVELER';index" json:"role"`
	Status    UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CanLogin reports whether the account is allowed to authenticate.
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}
