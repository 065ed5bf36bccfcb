package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system. The password is stored and
// compared verbatim; credential hardening is out of scope for this service.
// The json shape is the storage shape; API responses use UserResponse so
// the password never leaves the process.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserResponse is the API-facing view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser creates a regular (non-admin) user account.
func NewUser(email, password, name string) *User {
	return &User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		Name:      name,
		IsAdmin:   false,
		CreatedAt: time.Now(),
	}
}

// ToResponse strips the credential from the user record.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
