package models

import "time"

// Role determines what a user is allowed to see. Only admins reach the back office.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeeker Role = "seeker" // Looking for a room
	RoleHost   Role = "host"   // Offering a room
)

// Valid returns true if r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeeker, RoleHost:
		return true
	}
	return false
}

// IsAdmin returns true if r is the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the account record returned by the backend.
// It is replaced wholesale whenever the server sends a new copy, never patched locally.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Phone    string `json:"phone"`

	Bio          string  `json:"bio,omitempty"`
	Habits       string  `json:"habits,omitempty"`
	ProfilePhoto *string `json:"profilePhoto,omitempty"`

	Role            Role `json:"role"`
	IsEmailVerified bool `json:"isEmailVerified"`

	// Server authoritative
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns the display name of the user.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// Clone returns a copy that shares no pointers with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ProfilePhoto != nil {
		photo := *u.ProfilePhoto
		c.ProfilePhoto = &photo
	}
	return &c
}
