// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// AssignableRole reports whether r may be chosen at registration time.
// Admin is granted out-of-band (seeding or an existing admin), never self-assigned.
func AssignableRole(r Role) bool {
	return r == RoleUser || r == RolePublisher
}

// User represents a registered account in the CampDir application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(16);not null;default:user" json:"role"`

	// Reset token is stored only as a SHA-256 hex of the issued value.
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
