package user

import (
	"gorm.io/gorm"
)

// Role represents the set of possible user roles.
// @Description user role type: "user", "staff" or "admin"
type Role string

const (
	// RoleAdmin has full access
	RoleAdmin Role = "admin"
	// RoleStaff manages users and categories
	RoleStaff Role = "staff"
	// RoleUser has limited access
	RoleUser Role = "user"
)

// User represents a library member.
// swagger:model UserResponse
type User struct {
	gorm.Model
	// Username (unique)
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	// Password hash (hidden from JSON)
	Password string `json:"-"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Address  string `json:"address"`
	City     string `json:"city"`
	// Role of the user
	Role Role `json:"role" gorm:"type:text;default:'user'"`
}

// NewUser initializes a User with the default member role. The password is
// expected to be hashed already.
func NewUser(username, hashedPassword string) *User {
	return &User{
		Username: username,
		Password: hashedPassword,
		Role:     RoleUser,
	}
}
