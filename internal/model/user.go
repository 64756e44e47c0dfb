// Package model defines the data structures used throughout the application.
// These are plain records — no ORM metadata, no behaviour beyond small
// display helpers. Persistence lives in internal/repository.
package model

import "time"

// Role controls what a user may do. There are exactly two capability
// levels: regular users see only their own data, admins see everything
// plus user-lifecycle actions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
//
// VerificationToken doubles as the password-reset token: requesting a
// reset rotates it, and both verify-email and reset-confirm consume it by
// rotating it again. One column, one lookup path.
type User struct {
	ID                string    `json:"id"              db:"id"`
	Email             string    `json:"email"           db:"email"`
	PasswordHash      string    `json:"-"               db:"password_hash"`
	FirstName         string    `json:"firstName"       db:"first_name"`
	LastName          string    `json:"lastName"        db:"last_name"`
	Role              Role      `json:"role"            db:"role"`
	IsEmailVerified   bool      `json:"isEmailVerified" db:"is_email_verified"`
	IsActive          bool      `json:"isActive"        db:"is_active"`
	VerificationToken string    `json:"-"               db:"verification_token"`
	CreatedAt         time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt"       db:"updated_at"`
}

// FullName joins first and last name for email salutations and admin views.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin capability.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
