package models

import (
	"time"
)

// Role is the authorization role carried by every user
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Roles lists every assignable role, in display order
var Roles = []Role{RoleAdmin, RoleUser}

// ParseRole matches a role name exactly. ok is false for anything unknown.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// User is a registered account
type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	DisplayName      string    `gorm:"size:256;not null"`
	Email            string    `gorm:"size:256;not null;uniqueIndex"`
	PasswordHash     string    `gorm:"size:256;not null" json:"-"`
	Role             Role      `gorm:"size:32;not null;default:User"`
	RegistrationDate time.Time `gorm:"not null;autoCreateTime"`
	Videos           []Video   `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the Admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
